package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus is the persisted lifecycle state of a claim.
type ClaimStatus string

const (
	ClaimOpen ClaimStatus = "OFFEN"
	ClaimPaid ClaimStatus = "BEZAHLT"
)

// Claim is a receivable against a member for one billing period.
type Claim struct {
	ClaimID      string          `db:"claim_id"`
	VereinID     string          `db:"verein_id"`
	MemberID     string          `db:"member_id"`
	ClaimNumber  string          `db:"claim_number"`
	ClaimType    string          `db:"claim_type"`
	Amount       decimal.Decimal `db:"amount"`
	CurrencyCode string          `db:"currency_code"`
	DueDate      time.Time       `db:"due_date"`
	Year         int             `db:"year"`
	Quarter      *int            `db:"quarter"`
	Month        *int            `db:"month"`
	Status       ClaimStatus     `db:"status"`
	PaidAt       *time.Time      `db:"paid_at"`
	AuditFields
}
