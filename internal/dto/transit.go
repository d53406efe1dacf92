package dto

import (
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransitItemRequest records money received on behalf of a third party.
type CreateTransitItemRequest struct {
	AccountNo       string          `json:"accountNo" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	IncomingDate    time.Time       `json:"incomingDate" binding:"required"`
	IncomingAmount  decimal.Decimal `json:"incomingAmount" binding:"required"`
	Recipient       string          `json:"recipient,omitempty"`
	IncomingEntryID *string         `json:"incomingEntryID,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// RecordOutgoingRequest links an outgoing posting to a transit item.
// The amount accumulates on top of previously recorded outgoing postings.
type RecordOutgoingRequest struct {
	OutgoingDate    time.Time       `json:"outgoingDate" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Reference       string          `json:"reference,omitempty"`
	OutgoingEntryID *string         `json:"outgoingEntryID,omitempty"`
}

// TransitItemResponse defines the data returned for a transit item.
type TransitItemResponse struct {
	TransitItemID  string           `json:"transitItemID"`
	VereinID       string           `json:"vereinID"`
	AccountNo      string           `json:"accountNo"`
	Description    string           `json:"description"`
	IncomingDate   string           `json:"incomingDate"`
	IncomingAmount decimal.Decimal  `json:"incomingAmount"`
	OutgoingDate   *string          `json:"outgoingDate,omitempty"`
	OutgoingAmount *decimal.Decimal `json:"outgoingAmount,omitempty"`
	Outstanding    decimal.Decimal  `json:"outstanding"`
	Recipient      string           `json:"recipient,omitempty"`
	Reference      string           `json:"reference,omitempty"`
	Status         string           `json:"status"`
	Note           string           `json:"note,omitempty"`
}

// RecipientSummaryResponse aggregates transit items per recipient.
type RecipientSummaryResponse struct {
	Recipient     string          `json:"recipient"`
	TotalIncoming decimal.Decimal `json:"totalIncoming"`
	TotalOutgoing decimal.Decimal `json:"totalOutgoing"`
	OpenAmount    decimal.Decimal `json:"openAmount"`
	ItemCount     int             `json:"itemCount"`
}

// ToTransitItemResponse converts a domain transit item to its DTO.
func ToTransitItemResponse(t *domain.TransitItem) TransitItemResponse {
	resp := TransitItemResponse{
		TransitItemID:  t.TransitItemID,
		VereinID:       t.VereinID,
		AccountNo:      t.AccountNo,
		Description:    t.Description,
		IncomingDate:   t.IncomingDate.Format("2006-01-02"),
		IncomingAmount: t.IncomingAmount,
		OutgoingAmount: t.OutgoingAmount,
		Outstanding:    t.Outstanding(),
		Recipient:      t.Recipient,
		Reference:      t.Reference,
		Status:         string(t.Status),
		Note:           t.Note,
	}
	if t.OutgoingDate != nil {
		formatted := t.OutgoingDate.Format("2006-01-02")
		resp.OutgoingDate = &formatted
	}
	return resp
}

// ToTransitItemResponses converts a slice of domain transit items.
func ToTransitItemResponses(items []domain.TransitItem) []TransitItemResponse {
	responses := make([]TransitItemResponse, len(items))
	for i := range items {
		responses[i] = ToTransitItemResponse(&items[i])
	}
	return responses
}
