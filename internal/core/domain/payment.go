package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the way a payment reached the association.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "BAR"
	MethodTransfer PaymentMethod = "UEBERWEISUNG"
	MethodDebit    PaymentMethod = "LASTSCHRIFT"
	MethodCard     PaymentMethod = "EC_KARTE"
)

// PaymentStatus indicates the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentActive   PaymentStatus = "AKTIV"
	PaymentReversed PaymentStatus = "STORNIERT"
)

// Payment represents money received from a member (Zahlung), to be distributed
// across that member's open claims by the allocation engine.
type Payment struct {
	PaymentID         string          `json:"paymentID"`
	VereinID          string          `json:"vereinID"`
	MemberID          string          `json:"memberID"`
	Amount            decimal.Decimal `json:"amount"`
	CurrencyCode      string          `json:"currencyCode"`
	PaymentDate       time.Time       `json:"paymentDate"`
	Method            PaymentMethod   `json:"method"`
	BankAccountID     *string         `json:"bankAccountID,omitempty"`
	BankTransactionID *string         `json:"bankTransactionID,omitempty"` // set when created from statement ingestion
	ClaimID           *string         `json:"claimID,omitempty"`           // optional direct claim reference
	Reference         string          `json:"reference,omitempty"`
	Note              string          `json:"note,omitempty"`
	Status            PaymentStatus   `json:"status"`
	AuditFields
}
