package dto

import (
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateClaimRequest creates a claim against a member.
type CreateClaimRequest struct {
	MemberID     string          `json:"memberID" binding:"required"`
	ClaimNumber  string          `json:"claimNumber"`
	ClaimType    string          `json:"claimType" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	DueDate      time.Time       `json:"dueDate" binding:"required"`
	Year         int             `json:"year" binding:"required"`
	Quarter      *int            `json:"quarter,omitempty"`
	Month        *int            `json:"month,omitempty"`
}

// ClaimResponse defines the data returned for a claim. RemainingAmount is
// derived from the allocation rows on read.
type ClaimResponse struct {
	ClaimID         string          `json:"claimID"`
	VereinID        string          `json:"vereinID"`
	MemberID        string          `json:"memberID"`
	ClaimNumber     string          `json:"claimNumber,omitempty"`
	ClaimType       string          `json:"claimType"`
	Amount          decimal.Decimal `json:"amount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	CurrencyCode    string          `json:"currencyCode"`
	DueDate         string          `json:"dueDate"`
	Year            int             `json:"year"`
	Quarter         *int            `json:"quarter,omitempty"`
	Month           *int            `json:"month,omitempty"`
	Status          string          `json:"status"`
	PaidAt          *string         `json:"paidAt,omitempty"`
	// Allocations is only populated on the single-claim read.
	Allocations []AllocationResponse `json:"allocations,omitempty"`
}

// MemberFinanceSummaryResponse is the derived financial overview of a member.
type MemberFinanceSummaryResponse struct {
	MemberID       string          `json:"memberID"`
	TotalOwed      decimal.Decimal `json:"totalOwed"`      // open claim amounts minus partial allocations
	TotalOverdue   decimal.Decimal `json:"totalOverdue"`   // subset of TotalOwed past its due date
	TotalPaid      decimal.Decimal `json:"totalPaid"`      // sum of all payments
	CreditBalance  decimal.Decimal `json:"creditBalance"`  // accumulated Vorauszahlung
	OpenClaimCount int             `json:"openClaimCount"` //
	NextDueDate    *string         `json:"nextDueDate,omitempty"`
}

// ToClaimResponse converts a domain claim plus its allocated sum to a DTO.
func ToClaimResponse(c *domain.Claim, allocated decimal.Decimal) ClaimResponse {
	resp := ClaimResponse{
		ClaimID:         c.ClaimID,
		VereinID:        c.VereinID,
		MemberID:        c.MemberID,
		ClaimNumber:     c.ClaimNumber,
		ClaimType:       c.ClaimType,
		Amount:          c.Amount,
		RemainingAmount: c.Remaining(allocated),
		CurrencyCode:    c.CurrencyCode,
		DueDate:         c.DueDate.Format("2006-01-02"),
		Year:            c.Year,
		Quarter:         c.Quarter,
		Month:           c.Month,
		Status:          string(c.Status),
	}
	if c.PaidAt != nil {
		formatted := c.PaidAt.Format("2006-01-02")
		resp.PaidAt = &formatted
	}
	return resp
}
