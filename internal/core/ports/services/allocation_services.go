package services

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/dto"
)

// AllocationSvcFacade is the allocation engine boundary. It is the only
// component that creates or deletes allocation rows.
type AllocationSvcFacade interface {
	// Allocate distributes a payment across the member's open claims. With
	// explicit allocations the given amounts are applied verbatim, subject to
	// per-claim and per-payment ceilings; without, open claims are served
	// oldest due date first and any leftover becomes a credit balance.
	// A payment that already has allocations is left untouched.
	Allocate(ctx context.Context, payment domain.Payment, explicit []dto.ExplicitAllocation, userID string) ([]domain.Allocation, error)

	// ReverseAllocations deletes a payment's allocation rows and reopens the
	// affected claims, so the payment can be re-allocated.
	ReverseAllocations(ctx context.Context, paymentID string, userID string) error

	// GetMemberFinanceSummary derives a member's financial overview from
	// claims, payments, allocations and credit balances.
	GetMemberFinanceSummary(ctx context.Context, vereinID string, memberID string) (*dto.MemberFinanceSummaryResponse, error)
}
