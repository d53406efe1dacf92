package models

import "github.com/shopspring/decimal"

// Member is the finance engine's read model of the member registry.
type Member struct {
	MemberID     string          `db:"member_id"`
	VereinID     string          `db:"verein_id"`
	MemberNumber string          `db:"member_number"`
	FirstName    string          `db:"first_name"`
	LastName     string          `db:"last_name"`
	IBAN         string          `db:"iban"`
	MonthlyFee   decimal.Decimal `db:"monthly_fee"`
	Active       bool            `db:"active"`
}
