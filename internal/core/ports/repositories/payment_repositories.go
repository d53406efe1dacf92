package repositories

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a specific payment by its unique identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentByBankTransactionID retrieves the payment linked to a bank
	// transaction, if any.
	FindPaymentByBankTransactionID(ctx context.Context, bankTransactionID string) (*domain.Payment, error)

	// FindPaymentsByMember retrieves all payments of a member, newest first.
	FindPaymentsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Payment, error)

	// SumPaymentsByMember returns the total paid by a member.
	SumPaymentsByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error)
}

// PaymentWriter defines write operations for payment data
type PaymentWriter interface {
	// SavePayment persists a new payment.
	SavePayment(ctx context.Context, payment domain.Payment) error

	// UpdatePaymentStatus changes a payment's lifecycle status.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, userID string, now time.Time) error
}

// AllocationReader defines read operations for claim/payment allocations
type AllocationReader interface {
	// FindAllocationsByPaymentID retrieves the allocation rows of one payment.
	FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.Allocation, error)

	// FindAllocationsByClaimID retrieves the allocation rows against one claim.
	FindAllocationsByClaimID(ctx context.Context, claimID string) ([]domain.Allocation, error)

	// SumAllocatedByClaimIDs returns the allocated sum per claim ID.
	// Claims without allocations are absent from the map.
	SumAllocatedByClaimIDs(ctx context.Context, claimIDs []string) (map[string]decimal.Decimal, error)
}

// AllocationWriter defines the allocation engine's write unit of work.
type AllocationWriter interface {
	// SaveAllocations persists allocation rows, marks fully covered claims as
	// paid and records an optional credit balance, all within one database
	// transaction. Either everything is applied or nothing is.
	SaveAllocations(ctx context.Context, allocations []domain.Allocation, closures []domain.ClaimClosure, credit *domain.CreditBalance) error

	// DeleteAllocationsByPaymentID removes all allocation rows of a payment and
	// reopens the given claims within one database transaction.
	DeleteAllocationsByPaymentID(ctx context.Context, paymentID string, reopenClaimIDs []string, userID string, now time.Time) error
}

// CreditBalanceReader defines read operations for member credit balances
type CreditBalanceReader interface {
	// SumCreditByMember returns a member's accumulated credit balance.
	SumCreditByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error)
}

// PaymentRepositoryFacade combines payment, allocation and credit operations.
// The allocation engine is its sole writer.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
	AllocationReader
	AllocationWriter
	CreditBalanceReader
	TransactionManager
}
