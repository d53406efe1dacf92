package dto

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ManualMatchRequest resolves an unmatched bank transaction to a member.
// ClaimIDs and AllocationAmounts are optional; when AllocationAmounts is
// given it must be parallel to ClaimIDs.
type ManualMatchRequest struct {
	BankTransactionID string            `json:"bankTransactionID" binding:"required"`
	MemberID          string            `json:"memberID" binding:"required"`
	ClaimIDs          []string          `json:"claimIDs,omitempty"`
	AllocationAmounts []decimal.Decimal `json:"allocationAmounts,omitempty"`
}

// ManualMatchResponse reports the payment and allocations a manual match produced.
type ManualMatchResponse struct {
	Success           bool            `json:"success"`
	Message           string          `json:"message"`
	PaymentID         string          `json:"paymentID,omitempty"`
	MatchedClaimCount int             `json:"matchedClaimCount"`
	AllocatedAmount   decimal.Decimal `json:"allocatedAmount"`
	RemainingAmount   decimal.Decimal `json:"remainingAmount"`
	MatchedClaimIDs   []string        `json:"matchedClaimIDs"`
}

// ListUnmatchedParams holds pagination parameters for the unmatched listing.
type ListUnmatchedParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	BankTransactionID string          `json:"bankTransactionID"`
	VereinID          string          `json:"vereinID"`
	BankAccountID     string          `json:"bankAccountID"`
	BookingDate       string          `json:"bookingDate"`
	Amount            decimal.Decimal `json:"amount"`
	CurrencyCode      string          `json:"currencyCode"`
	Counterparty      string          `json:"counterparty,omitempty"`
	Purpose           string          `json:"purpose,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	Status            string          `json:"status"`
}

// ListUnmatchedResponse is a paginated page of unmatched transactions.
type ListUnmatchedResponse struct {
	Transactions []BankTransactionResponse `json:"transactions"`
	NextToken    *string                   `json:"nextToken,omitempty"`
}

// ToBankTransactionResponse converts a domain.BankTransaction to its DTO.
func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		BankTransactionID: t.BankTransactionID,
		VereinID:          t.VereinID,
		BankAccountID:     t.BankAccountID,
		BookingDate:       t.BookingDate.Format("2006-01-02"),
		Amount:            t.Amount,
		CurrencyCode:      t.CurrencyCode,
		Counterparty:      t.Counterparty,
		Purpose:           t.Purpose,
		Reference:         t.Reference,
		Status:            string(t.Status),
	}
}

// ToBankTransactionResponses converts a slice of domain transactions.
func ToBankTransactionResponses(txns []domain.BankTransaction) []BankTransactionResponse {
	responses := make([]BankTransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToBankTransactionResponse(&txns[i])
	}
	return responses
}
