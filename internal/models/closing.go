package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// YearEndClosing is the persisted snapshot of one fiscal year's balances.
type YearEndClosing struct {
	ClosingID      string           `db:"closing_id"`
	VereinID       string           `db:"verein_id"`
	Year           int              `db:"year"`
	CashOpening    decimal.Decimal  `db:"cash_opening"`
	CashClosing    decimal.Decimal  `db:"cash_closing"`
	BankOpening    decimal.Decimal  `db:"bank_opening"`
	BankClosing    decimal.Decimal  `db:"bank_closing"`
	SavingsClosing *decimal.Decimal `db:"savings_closing"`
	ClosingDate    time.Time        `db:"closing_date"`
	Audited        bool             `db:"audited"`
	AuditedBy      string           `db:"audited_by"`
	AuditedAt      *time.Time       `db:"audited_at"`
	Note           string           `db:"note"`
	AuditFields
}
