package domain

import "github.com/shopspring/decimal"

// Member is the read-only view of an association member the finance engine
// needs for statement matching. Member CRUD lives outside this module.
type Member struct {
	MemberID     string          `json:"memberID"`
	VereinID     string          `json:"vereinID"`
	MemberNumber string          `json:"memberNumber"` // Mitgliedsnummer, may appear in transfer references
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	IBAN         string          `json:"iban,omitempty"` // last known counterparty IBAN, if any
	MonthlyFee   decimal.Decimal `json:"monthlyFee"`     // currently due membership fee
	Active       bool            `json:"active"`
}

// FullName returns "First Last" for display and matching.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}
