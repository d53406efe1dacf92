package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransitStatus is the persisted settlement state of a pass-through item.
type TransitStatus string

// TransitItem tracks third-party money awaiting forwarding.
type TransitItem struct {
	TransitItemID   string           `db:"transit_item_id"`
	VereinID        string           `db:"verein_id"`
	AccountNo       string           `db:"account_no"`
	Description     string           `db:"description"`
	IncomingDate    time.Time        `db:"incoming_date"`
	IncomingAmount  decimal.Decimal  `db:"incoming_amount"`
	OutgoingDate    *time.Time       `db:"outgoing_date"`
	OutgoingAmount  *decimal.Decimal `db:"outgoing_amount"`
	Recipient       string           `db:"recipient"`
	Reference       string           `db:"reference"`
	Status          TransitStatus    `db:"status"`
	IncomingEntryID *string          `db:"incoming_entry_id"`
	OutgoingEntryID *string          `db:"outgoing_entry_id"`
	Note            string           `db:"note"`
	AuditFields
}
