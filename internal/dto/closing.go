package dto

import (
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateClosingRequest closes a fiscal year with explicit balances. Opening
// balances are copied from the prior closing; for an association's first
// closing they must be supplied here.
type CreateClosingRequest struct {
	Year           int              `json:"year" binding:"required"`
	CashClosing    decimal.Decimal  `json:"cashClosing"`
	BankClosing    decimal.Decimal  `json:"bankClosing"`
	SavingsClosing *decimal.Decimal `json:"savingsClosing,omitempty"`
	CashOpening    *decimal.Decimal `json:"cashOpening,omitempty"` // first year only
	BankOpening    *decimal.Decimal `json:"bankOpening,omitempty"` // first year only
	Note           string           `json:"note,omitempty"`
}

// MarkAuditedRequest records audit sign-off for a closing.
type MarkAuditedRequest struct {
	AuditorName string     `json:"auditorName" binding:"required"`
	AuditedAt   *time.Time `json:"auditedAt,omitempty"` // defaults to now
}

// ClosingResponse defines the data returned for a year-end closing.
// TotalAssets is derived, never persisted.
type ClosingResponse struct {
	ClosingID      string           `json:"closingID"`
	VereinID       string           `json:"vereinID"`
	Year           int              `json:"year"`
	CashOpening    decimal.Decimal  `json:"cashOpening"`
	CashClosing    decimal.Decimal  `json:"cashClosing"`
	BankOpening    decimal.Decimal  `json:"bankOpening"`
	BankClosing    decimal.Decimal  `json:"bankClosing"`
	SavingsClosing *decimal.Decimal `json:"savingsClosing,omitempty"`
	TotalAssets    decimal.Decimal  `json:"totalAssets"`
	ClosingDate    string           `json:"closingDate"`
	Audited        bool             `json:"audited"`
	AuditedBy      string           `json:"auditedBy,omitempty"`
	AuditedAt      *string          `json:"auditedAt,omitempty"`
	Note           string           `json:"note,omitempty"`
}

// ToClosingResponse converts a domain closing to its DTO.
func ToClosingResponse(c *domain.YearEndClosing) ClosingResponse {
	resp := ClosingResponse{
		ClosingID:      c.ClosingID,
		VereinID:       c.VereinID,
		Year:           c.Year,
		CashOpening:    c.CashOpening,
		CashClosing:    c.CashClosing,
		BankOpening:    c.BankOpening,
		BankClosing:    c.BankClosing,
		SavingsClosing: c.SavingsClosing,
		TotalAssets:    c.TotalAssets(),
		ClosingDate:    c.ClosingDate.Format("2006-01-02"),
		Audited:        c.Audited,
		AuditedBy:      c.AuditedBy,
		Note:           c.Note,
	}
	if c.AuditedAt != nil {
		formatted := c.AuditedAt.Format("2006-01-02")
		resp.AuditedAt = &formatted
	}
	return resp
}

// ToClosingResponses converts a slice of domain closings.
func ToClosingResponses(closings []domain.YearEndClosing) []ClosingResponse {
	responses := make([]ClosingResponse, len(closings))
	for i := range closings {
		responses[i] = ToClosingResponse(&closings[i])
	}
	return responses
}
