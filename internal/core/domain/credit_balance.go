package domain

import "github.com/shopspring/decimal"

// CreditBalance records payment surplus (Vorauszahlung) held for a member's
// future claims. Created by the allocation engine when a payment exceeds the
// member's open claims; never discarded silently.
type CreditBalance struct {
	CreditBalanceID string          `json:"creditBalanceID"`
	VereinID        string          `json:"vereinID"`
	MemberID        string          `json:"memberID"`
	PaymentID       string          `json:"paymentID"` // the payment the surplus came from
	Amount          decimal.Decimal `json:"amount"`
	Note            string          `json:"note,omitempty"`
	AuditFields
}
