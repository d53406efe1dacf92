package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the persisted payment channel.
type PaymentMethod string

// PaymentStatus is the persisted payment lifecycle state.
type PaymentStatus string

// Payment is a received amount from a member.
type Payment struct {
	PaymentID         string          `db:"payment_id"`
	VereinID          string          `db:"verein_id"`
	MemberID          string          `db:"member_id"`
	Amount            decimal.Decimal `db:"amount"`
	CurrencyCode      string          `db:"currency_code"`
	PaymentDate       time.Time       `db:"payment_date"`
	Method            PaymentMethod   `db:"method"`
	BankAccountID     *string         `db:"bank_account_id"`
	BankTransactionID *string         `db:"bank_transaction_id"`
	ClaimID           *string         `db:"claim_id"`
	Reference         string          `db:"reference"`
	Note              string          `db:"note"`
	Status            PaymentStatus   `db:"status"`
	AuditFields
}

// Allocation links part of a payment to a claim.
type Allocation struct {
	AllocationID string          `db:"allocation_id"`
	ClaimID      string          `db:"claim_id"`
	PaymentID    string          `db:"payment_id"`
	Amount       decimal.Decimal `db:"amount"`
	AuditFields
}

// CreditBalance is an overpayment remainder kept for future claims.
type CreditBalance struct {
	CreditBalanceID string          `db:"credit_balance_id"`
	VereinID        string          `db:"verein_id"`
	MemberID        string          `db:"member_id"`
	PaymentID       string          `db:"payment_id"`
	Amount          decimal.Decimal `db:"amount"`
	Note            string          `db:"note"`
	AuditFields
}
