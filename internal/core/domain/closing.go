package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// YearEndClosing is the audited snapshot of opening and closing balances for
// one fiscal year (Kassenbuch-Jahresabschluss). One per (verein, year);
// closings must be created sequentially. Once audited, the year is locked
// against further cash-book postings.
type YearEndClosing struct {
	ClosingID      string           `json:"closingID"`
	VereinID       string           `json:"vereinID"`
	Year           int              `json:"year"`
	CashOpening    decimal.Decimal  `json:"cashOpening"`
	CashClosing    decimal.Decimal  `json:"cashClosing"`
	BankOpening    decimal.Decimal  `json:"bankOpening"`
	BankClosing    decimal.Decimal  `json:"bankClosing"`
	SavingsClosing *decimal.Decimal `json:"savingsClosing,omitempty"` // Sparbuch, optional
	ClosingDate    time.Time        `json:"closingDate"`
	Audited        bool             `json:"audited"` // geprueft
	AuditedBy      string           `json:"auditedBy,omitempty"`
	AuditedAt      *time.Time       `json:"auditedAt,omitempty"`
	Note           string           `json:"note,omitempty"`
	AuditFields
}

// TotalAssets returns cash + bank + savings at year end. Derived on read,
// never persisted redundantly.
func (c YearEndClosing) TotalAssets() decimal.Decimal {
	total := c.CashClosing.Add(c.BankClosing)
	if c.SavingsClosing != nil {
		total = total.Add(*c.SavingsClosing)
	}
	return total
}
