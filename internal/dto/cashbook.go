package dto

import (
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCashBookEntryRequest posts one entry to the cash-book ledger.
// Exactly one of the four money columns must be set and positive.
type CreateCashBookEntryRequest struct {
	EntryDate         time.Time        `json:"entryDate" binding:"required"`
	AccountNo         string           `json:"accountNo" binding:"required"`
	Purpose           string           `json:"purpose"`
	CashIncome        *decimal.Decimal `json:"cashIncome,omitempty"`
	CashExpense       *decimal.Decimal `json:"cashExpense,omitempty"`
	BankIncome        *decimal.Decimal `json:"bankIncome,omitempty"`
	BankExpense       *decimal.Decimal `json:"bankExpense,omitempty"`
	YearOverride      *int             `json:"yearOverride,omitempty"` // fiscal year, derived from EntryDate when absent
	MemberID          *string          `json:"memberID,omitempty"`
	PaymentID         *string          `json:"paymentID,omitempty"`
	BankTransactionID *string          `json:"bankTransactionID,omitempty"`
	PaymentMethod     string           `json:"paymentMethod,omitempty"`
	Note              string           `json:"note,omitempty"`
}

// CashBookEntryResponse defines the data returned for a cash-book entry,
// including the chart-of-accounts description and the derived running
// balances after this entry.
type CashBookEntryResponse struct {
	EntryID            string           `json:"entryID"`
	VereinID           string           `json:"vereinID"`
	ReceiptNo          int              `json:"receiptNo"`
	EntryDate          string           `json:"entryDate"`
	AccountNo          string           `json:"accountNo"`
	AccountDescription string           `json:"accountDescription,omitempty"`
	Purpose            string           `json:"purpose,omitempty"`
	CashIncome         *decimal.Decimal `json:"cashIncome,omitempty"`
	CashExpense        *decimal.Decimal `json:"cashExpense,omitempty"`
	BankIncome         *decimal.Decimal `json:"bankIncome,omitempty"`
	BankExpense        *decimal.Decimal `json:"bankExpense,omitempty"`
	Year               int              `json:"year"`
	PaymentMethod      string           `json:"paymentMethod,omitempty"`
	Note               string           `json:"note,omitempty"`
	RunningCashSaldo   *decimal.Decimal `json:"runningCashSaldo,omitempty"`
	RunningBankSaldo   *decimal.Decimal `json:"runningBankSaldo,omitempty"`
}

// CashBookTotalsResponse carries the derived aggregates for a listing.
type CashBookTotalsResponse struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	CashSaldo    decimal.Decimal `json:"cashSaldo"`
	BankSaldo    decimal.Decimal `json:"bankSaldo"`
}

// CashBookListResponse combines entries with their derived totals.
type CashBookListResponse struct {
	Entries []CashBookEntryResponse `json:"entries"`
	Totals  CashBookTotalsResponse  `json:"totals"`
}

// AccountSummaryResponse is the per-account aggregate of a fiscal year.
type AccountSummaryResponse struct {
	AccountNo   string          `json:"accountNo"`
	Description string          `json:"description,omitempty"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Saldo       decimal.Decimal `json:"saldo"`
	EntryCount  int             `json:"entryCount"`
}

// ToCashBookEntryResponse converts a domain entry to its DTO.
func ToCashBookEntryResponse(e *domain.CashBookEntry) CashBookEntryResponse {
	return CashBookEntryResponse{
		EntryID:       e.EntryID,
		VereinID:      e.VereinID,
		ReceiptNo:     e.ReceiptNo,
		EntryDate:     e.EntryDate.Format("2006-01-02"),
		AccountNo:     e.AccountNo,
		Purpose:       e.Purpose,
		CashIncome:    e.CashIncome,
		CashExpense:   e.CashExpense,
		BankIncome:    e.BankIncome,
		BankExpense:   e.BankExpense,
		Year:          e.Year,
		PaymentMethod: e.PaymentMethod,
		Note:          e.Note,
	}
}

// ToCashBookTotalsResponse converts derived column totals to their DTO.
func ToCashBookTotalsResponse(t domain.CashBookTotals) CashBookTotalsResponse {
	return CashBookTotalsResponse{
		TotalIncome:  t.TotalIncome(),
		TotalExpense: t.TotalExpense(),
		CashSaldo:    t.CashSaldo(),
		BankSaldo:    t.BankSaldo(),
	}
}
