package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransactionStatus is the matching state of an ingested statement row.
type BankTransactionStatus string

const (
	TransactionUnmatched BankTransactionStatus = "UNMATCHED"
	TransactionMatched   BankTransactionStatus = "MATCHED"
)

// BankTransaction is one raw row from a bank or payment-provider statement
// (BankBuchung). Created by statement ingestion; either auto-matched to a
// payment or left unmatched until manual resolution.
type BankTransaction struct {
	BankTransactionID string                `json:"bankTransactionID"`
	VereinID          string                `json:"vereinID"`
	BankAccountID     string                `json:"bankAccountID"`
	BookingDate       time.Time             `json:"bookingDate"`
	Amount            decimal.Decimal       `json:"amount"`
	CurrencyCode      string                `json:"currencyCode"`
	Counterparty      string                `json:"counterparty,omitempty"` // Empfaenger
	Purpose           string                `json:"purpose,omitempty"`      // Verwendungszweck free text
	Reference         string                `json:"reference,omitempty"`
	IBAN              string                `json:"iban,omitempty"` // counterparty IBAN when the statement carries one
	BatchID           *string               `json:"batchID,omitempty"`
	Status            BankTransactionStatus `json:"status"`
	AuditFields
}

// StatementRow is a normalized transaction row handed in by an external
// statement parser. Format parsing (Excel, CSV, bank API) is out of scope.
type StatementRow struct {
	RowNumber    int             `json:"rowNumber"`
	BookingDate  time.Time       `json:"bookingDate"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	Purpose      string          `json:"purpose,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	IBAN         string          `json:"iban,omitempty"`
}
