package dto

import (
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExplicitAllocation pins an allocation amount to a specific claim.
type ExplicitAllocation struct {
	ClaimID string          `json:"claimID" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// CreatePaymentRequest records a manually entered payment. When ClaimIDs is
// given, allocation follows those claims; otherwise the engine auto-matches
// against the member's open claims, oldest due date first.
type CreatePaymentRequest struct {
	MemberID          string            `json:"memberID" binding:"required"`
	Amount            decimal.Decimal   `json:"amount" binding:"required"`
	CurrencyCode      string            `json:"currencyCode" binding:"required,len=3"`
	PaymentDate       time.Time         `json:"paymentDate" binding:"required"`
	Method            string            `json:"method" binding:"required"`
	BankAccountID     *string           `json:"bankAccountID,omitempty"`
	Reference         string            `json:"reference,omitempty"`
	Note              string            `json:"note,omitempty"`
	ClaimIDs          []string          `json:"claimIDs,omitempty"`
	AllocationAmounts []decimal.Decimal `json:"allocationAmounts,omitempty"`
}

// AllocationResponse defines the data returned for one allocation row.
type AllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	ClaimID      string          `json:"claimID"`
	PaymentID    string          `json:"paymentID"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentResponse defines the data returned for a payment, including its
// allocation rows when loaded.
type PaymentResponse struct {
	PaymentID         string               `json:"paymentID"`
	VereinID          string               `json:"vereinID"`
	MemberID          string               `json:"memberID"`
	Amount            decimal.Decimal      `json:"amount"`
	CurrencyCode      string               `json:"currencyCode"`
	PaymentDate       string               `json:"paymentDate"`
	Method            string               `json:"method"`
	BankTransactionID *string              `json:"bankTransactionID,omitempty"`
	Reference         string               `json:"reference,omitempty"`
	Note              string               `json:"note,omitempty"`
	Status            string               `json:"status"`
	Allocations       []AllocationResponse `json:"allocations,omitempty"`
}

// ToAllocationResponse converts a domain allocation to its DTO.
func ToAllocationResponse(a *domain.Allocation) AllocationResponse {
	return AllocationResponse{
		AllocationID: a.AllocationID,
		ClaimID:      a.ClaimID,
		PaymentID:    a.PaymentID,
		Amount:       a.Amount,
	}
}

// ToAllocationResponses converts a slice of domain allocations.
func ToAllocationResponses(allocations []domain.Allocation) []AllocationResponse {
	responses := make([]AllocationResponse, len(allocations))
	for i := range allocations {
		responses[i] = ToAllocationResponse(&allocations[i])
	}
	return responses
}

// ToPaymentResponse converts a domain payment to its DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.PaymentID,
		VereinID:          p.VereinID,
		MemberID:          p.MemberID,
		Amount:            p.Amount,
		CurrencyCode:      p.CurrencyCode,
		PaymentDate:       p.PaymentDate.Format("2006-01-02"),
		Method:            string(p.Method),
		BankTransactionID: p.BankTransactionID,
		Reference:         p.Reference,
		Note:              p.Note,
		Status:            string(p.Status),
	}
}
