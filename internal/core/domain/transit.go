package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransitStatus is the settlement state of a pass-through item.
type TransitStatus string

const (
	TransitOpen    TransitStatus = "OFFEN"
	TransitPartial TransitStatus = "TEILWEISE"
	TransitClosed  TransitStatus = "ABGESCHLOSSEN" // terminal
)

// TransitStatusFor derives the settlement state from the two amounts.
// Status is a pure function of incoming and outgoing; it is never stored
// independently of them.
func TransitStatusFor(incoming decimal.Decimal, outgoing *decimal.Decimal) TransitStatus {
	if outgoing == nil || outgoing.IsZero() {
		return TransitOpen
	}
	if outgoing.GreaterThanOrEqual(incoming) {
		return TransitClosed
	}
	return TransitPartial
}

// TransitItem tracks money received on behalf of a third party
// (DurchlaufendePosten) that must later be forwarded. Outgoing postings
// accumulate until the incoming amount is fully settled.
type TransitItem struct {
	TransitItemID   string           `json:"transitItemID"`
	VereinID        string           `json:"vereinID"`
	AccountNo       string           `json:"accountNo"` // transit account range, e.g. 9091..9093
	Description     string           `json:"description"`
	IncomingDate    time.Time        `json:"incomingDate"`
	IncomingAmount  decimal.Decimal  `json:"incomingAmount"`
	OutgoingDate    *time.Time       `json:"outgoingDate,omitempty"`
	OutgoingAmount  *decimal.Decimal `json:"outgoingAmount,omitempty"`
	Recipient       string           `json:"recipient,omitempty"` // Empfaenger organization
	Reference       string           `json:"reference,omitempty"`
	Status          TransitStatus    `json:"status"`
	IncomingEntryID *string          `json:"incomingEntryID,omitempty"` // cash-book entry realizing the inflow
	OutgoingEntryID *string          `json:"outgoingEntryID,omitempty"` // cash-book entry realizing the outflow
	Note            string           `json:"note,omitempty"`
	AuditFields
}

// Outstanding returns the amount still to be forwarded.
func (t TransitItem) Outstanding() decimal.Decimal {
	if t.OutgoingAmount == nil {
		return t.IncomingAmount
	}
	return t.IncomingAmount.Sub(*t.OutgoingAmount)
}

// RecipientSummary aggregates transit items per recipient organization.
type RecipientSummary struct {
	Recipient     string          `json:"recipient"`
	TotalIncoming decimal.Decimal `json:"totalIncoming"`
	TotalOutgoing decimal.Decimal `json:"totalOutgoing"`
	OpenAmount    decimal.Decimal `json:"openAmount"`
	ItemCount     int             `json:"itemCount"`
}
