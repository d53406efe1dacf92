package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row statuses reported per statement row in a batch result.
const (
	RowStatusSuccess   = "Success"
	RowStatusFailed    = "Failed"
	RowStatusSkipped   = "Skipped"
	RowStatusUnmatched = "Unmatched"
)

// StatementRowRequest is one normalized transaction row from the external
// statement parser.
type StatementRowRequest struct {
	RowNumber    int             `json:"rowNumber" binding:"required,min=1"`
	BookingDate  time.Time       `json:"bookingDate" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Counterparty string          `json:"counterparty"`
	Purpose      string          `json:"purpose"`
	Reference    string          `json:"reference"`
	IBAN         string          `json:"iban"`
}

// BankUploadRequest carries a parsed statement batch for one bank account.
type BankUploadRequest struct {
	BankAccountID string                `json:"bankAccountID" binding:"required"`
	Rows          []StatementRowRequest `json:"rows" binding:"required,min=1,dive"`
}

// UploadRowDetail reports the outcome for a single statement row.
type UploadRowDetail struct {
	RowNumber         int             `json:"rowNumber"`
	BookingDate       time.Time       `json:"bookingDate"`
	Amount            decimal.Decimal `json:"amount"`
	Counterparty      string          `json:"counterparty,omitempty"`
	Purpose           string          `json:"purpose,omitempty"`
	Reference         string          `json:"reference,omitempty"`
	MatchedMemberID   *string         `json:"matchedMemberID,omitempty"`
	MatchedMemberName string          `json:"matchedMemberName,omitempty"`
	Status            string          `json:"status"`
	Message           string          `json:"message,omitempty"`
	BankTransactionID *string         `json:"bankTransactionID,omitempty"`
	PaymentID         *string         `json:"paymentID,omitempty"`
}

// BankUploadResponse is the structured batch result. Batch endpoints always
// return it with HTTP 200; row-level problems live in the per-row details.
type BankUploadResponse struct {
	Success               bool              `json:"success"`
	Message               string            `json:"message"`
	TotalRows             int               `json:"totalRows"`
	SuccessCount          int               `json:"successCount"`
	FailedCount           int               `json:"failedCount"`
	SkippedCount          int               `json:"skippedCount"`
	UnmatchedCount        int               `json:"unmatchedCount"`
	Details               []UploadRowDetail `json:"details"`
	UnmatchedTransactions []UploadRowDetail `json:"unmatchedTransactions"`
	Errors                []string          `json:"errors,omitempty"`
}
