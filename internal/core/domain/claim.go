package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus indicates whether a claim is still owed.
type ClaimStatus string

const (
	ClaimOpen ClaimStatus = "OFFEN"
	ClaimPaid ClaimStatus = "BEZAHLT"
)

// Claim represents an amount owed by a member (Forderung), e.g. a membership fee
// for a fiscal period. A claim belongs to exactly one member and one association.
type Claim struct {
	ClaimID      string          `json:"claimID"`
	VereinID     string          `json:"vereinID"`
	MemberID     string          `json:"memberID"`
	ClaimNumber  string          `json:"claimNumber"` // Forderungsnummer, referenced in bank transfers
	ClaimType    string          `json:"claimType"`   // e.g. MITGLIEDSBEITRAG, SPENDE
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
	DueDate      time.Time       `json:"dueDate"`
	Year         int             `json:"year"`
	Quarter      *int            `json:"quarter,omitempty"`
	Month        *int            `json:"month,omitempty"`
	Status       ClaimStatus     `json:"status"`
	PaidAt       *time.Time      `json:"paidAt,omitempty"`
	AuditFields
}

// Remaining returns the amount still owed given the sum already allocated.
// Never negative: allocations may not exceed the claim amount.
func (c Claim) Remaining(allocated decimal.Decimal) decimal.Decimal {
	remaining := c.Amount.Sub(allocated)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
