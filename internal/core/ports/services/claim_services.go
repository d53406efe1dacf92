package services

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/dto"
)

// ClaimSvcFacade manages claims (amounts owed by members).
type ClaimSvcFacade interface {
	// CreateClaim records a new claim against a member.
	CreateClaim(ctx context.Context, vereinID string, req dto.CreateClaimRequest, userID string) (*dto.ClaimResponse, error)

	// GetClaim retrieves one claim with its derived remaining amount.
	GetClaim(ctx context.Context, claimID string) (*dto.ClaimResponse, error)

	// ListByMember retrieves a member's claims, any status.
	ListByMember(ctx context.Context, vereinID string, memberID string) ([]dto.ClaimResponse, error)

	// ListOpenByVerein retrieves an association's open claims.
	ListOpenByVerein(ctx context.Context, vereinID string) ([]dto.ClaimResponse, error)

	// ListOverdue retrieves open claims past their due date.
	ListOverdue(ctx context.Context, vereinID string) ([]dto.ClaimResponse, error)
}

// PaymentSvcFacade manages payments and hands them to the allocation engine.
type PaymentSvcFacade interface {
	// CreatePayment records a manually entered payment and allocates it.
	CreatePayment(ctx context.Context, vereinID string, req dto.CreatePaymentRequest, userID string) (*dto.PaymentResponse, error)

	// CancelPayment reverses a payment: allocations are removed, closed
	// claims reopen, the payment is flagged as reversed. Refused when the
	// payment is already reversed.
	CancelPayment(ctx context.Context, paymentID string, userID string) error

	// GetPayment retrieves one payment with its allocation rows.
	GetPayment(ctx context.Context, paymentID string) (*dto.PaymentResponse, error)

	// ListByMember retrieves a member's payments, newest first.
	ListByMember(ctx context.Context, vereinID string, memberID string) ([]dto.PaymentResponse, error)
}
