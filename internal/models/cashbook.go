package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBookEntry is one posting in the cash/bank ledger. Deleted entries are
// kept with deleted=TRUE; every query filters them explicitly.
type CashBookEntry struct {
	EntryID           string           `db:"entry_id"`
	VereinID          string           `db:"verein_id"`
	ReceiptNo         int              `db:"receipt_no"`
	EntryDate         time.Time        `db:"entry_date"`
	AccountNo         string           `db:"account_no"`
	Purpose           string           `db:"purpose"`
	CashIncome        *decimal.Decimal `db:"cash_income"`
	CashExpense       *decimal.Decimal `db:"cash_expense"`
	BankIncome        *decimal.Decimal `db:"bank_income"`
	BankExpense       *decimal.Decimal `db:"bank_expense"`
	Year              int              `db:"year"`
	MemberID          *string          `db:"member_id"`
	PaymentID         *string          `db:"payment_id"`
	BankTransactionID *string          `db:"bank_transaction_id"`
	PaymentMethod     string           `db:"payment_method"`
	Note              string           `db:"note"`
	Deleted           bool             `db:"deleted"`
	AuditFields
}

// ChartAccount is one chart-of-accounts row.
type ChartAccount struct {
	AccountNo   string `db:"account_no"`
	Description string `db:"description"`
	Transit     bool   `db:"transit"`
}
