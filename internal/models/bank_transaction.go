package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransactionStatus is the persisted matching state.
type BankTransactionStatus string

// BankTransaction is one ingested statement row.
type BankTransaction struct {
	BankTransactionID string                `db:"bank_transaction_id"`
	VereinID          string                `db:"verein_id"`
	BankAccountID     string                `db:"bank_account_id"`
	BookingDate       time.Time             `db:"booking_date"`
	Amount            decimal.Decimal       `db:"amount"`
	CurrencyCode      string                `db:"currency_code"`
	Counterparty      string                `db:"counterparty"`
	Purpose           string                `db:"purpose"`
	Reference         string                `db:"reference"`
	IBAN              string                `db:"iban"`
	BatchID           *string               `db:"batch_id"`
	Status            BankTransactionStatus `db:"status"`
	AuditFields
}
