package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashBookColumn identifies which of the four money columns an entry uses.
type CashBookColumn string

const (
	ColumnCashIncome  CashBookColumn = "EINNAHME_KASSE"
	ColumnCashExpense CashBookColumn = "AUSGABE_KASSE"
	ColumnBankIncome  CashBookColumn = "EINNAHME_BANK"
	ColumnBankExpense CashBookColumn = "AUSGABE_BANK"
)

// CashBookEntry is one posting in the chronological cash/bank ledger
// (Kassenbuch). Exactly one of the four money columns is set per entry.
// ReceiptNo is gap-free and strictly increasing within (verein, year).
type CashBookEntry struct {
	EntryID           string           `json:"entryID"`
	VereinID          string           `json:"vereinID"`
	ReceiptNo         int              `json:"receiptNo"` // BelegNr, assigned by the ledger on post
	EntryDate         time.Time        `json:"entryDate"` // BelegDatum
	AccountNo         string           `json:"accountNo"` // chart-of-accounts number (FiBuNummer)
	Purpose           string           `json:"purpose,omitempty"`
	CashIncome        *decimal.Decimal `json:"cashIncome,omitempty"`
	CashExpense       *decimal.Decimal `json:"cashExpense,omitempty"`
	BankIncome        *decimal.Decimal `json:"bankIncome,omitempty"`
	BankExpense       *decimal.Decimal `json:"bankExpense,omitempty"`
	Year              int              `json:"year"` // fiscal year, derived from EntryDate unless overridden
	MemberID          *string          `json:"memberID,omitempty"`
	PaymentID         *string          `json:"paymentID,omitempty"`
	BankTransactionID *string          `json:"bankTransactionID,omitempty"`
	PaymentMethod     string           `json:"paymentMethod,omitempty"` // Zahlungsweg
	Note              string           `json:"note,omitempty"`
	AuditFields
}

// Column returns the single populated money column and its amount.
// ok is false when zero or more than one column is set.
func (e CashBookEntry) Column() (CashBookColumn, decimal.Decimal, bool) {
	var col CashBookColumn
	var amount decimal.Decimal
	count := 0
	for _, c := range []struct {
		col CashBookColumn
		val *decimal.Decimal
	}{
		{ColumnCashIncome, e.CashIncome},
		{ColumnCashExpense, e.CashExpense},
		{ColumnBankIncome, e.BankIncome},
		{ColumnBankExpense, e.BankExpense},
	} {
		if c.val != nil {
			col = c.col
			amount = *c.val
			count++
		}
	}
	if count != 1 {
		return "", decimal.Zero, false
	}
	return col, amount, true
}

// FiscalYearOf returns the UTC calendar year a posting date falls into.
func FiscalYearOf(date time.Time) int {
	return date.UTC().Year()
}

// CashBookTotals aggregates the four columns for an association and year.
// Balances are always derived from postings on read, never stored.
type CashBookTotals struct {
	CashIncome  decimal.Decimal `json:"cashIncome"`
	CashExpense decimal.Decimal `json:"cashExpense"`
	BankIncome  decimal.Decimal `json:"bankIncome"`
	BankExpense decimal.Decimal `json:"bankExpense"`
}

// TotalIncome returns cash plus bank income.
func (t CashBookTotals) TotalIncome() decimal.Decimal {
	return t.CashIncome.Add(t.BankIncome)
}

// TotalExpense returns cash plus bank expense.
func (t CashBookTotals) TotalExpense() decimal.Decimal {
	return t.CashExpense.Add(t.BankExpense)
}

// CashSaldo returns cash income minus cash expense.
func (t CashBookTotals) CashSaldo() decimal.Decimal {
	return t.CashIncome.Sub(t.CashExpense)
}

// BankSaldo returns bank income minus bank expense.
func (t CashBookTotals) BankSaldo() decimal.Decimal {
	return t.BankIncome.Sub(t.BankExpense)
}

// AccountSummary groups cash-book postings by chart-of-accounts number.
type AccountSummary struct {
	AccountNo   string          `json:"accountNo"`
	Description string          `json:"description"` // looked up from the chart of accounts
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Saldo       decimal.Decimal `json:"saldo"`
	EntryCount  int             `json:"entryCount"`
}

// ChartAccount is a chart-of-accounts entry (FiBuKonto), a read-only
// collaborator the cash-book read model uses for descriptions.
type ChartAccount struct {
	AccountNo   string `json:"accountNo"`
	Description string `json:"description"`
	Transit     bool   `json:"transit"` // account range reserved for pass-through items
}
