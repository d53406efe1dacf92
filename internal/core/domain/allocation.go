package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation joins exactly one claim and one payment with the amount applied.
// Allocations are created only by the allocation engine and are immutable;
// correcting one means reversing all allocations of the payment and re-allocating.
type Allocation struct {
	AllocationID string          `json:"allocationID"`
	ClaimID      string          `json:"claimID"`
	PaymentID    string          `json:"paymentID"`
	Amount       decimal.Decimal `json:"amount"`
	AuditFields
}

// ClaimClosure marks a claim as fully paid as part of an allocation unit of work.
// PaidAt is the payment date, not the allocation date: payments can be retro-dated.
type ClaimClosure struct {
	ClaimID string
	PaidAt  time.Time
}
