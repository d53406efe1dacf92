package repositories

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankTransactionReader defines read operations for ingested statement rows
type BankTransactionReader interface {
	// FindBankTransactionByID retrieves a specific bank transaction.
	FindBankTransactionByID(ctx context.Context, bankTransactionID string) (*domain.BankTransaction, error)

	// ExistsDuplicate reports whether a transaction with the same
	// (date, amount, reference) already exists for the account. This is the
	// duplicate-upload guard that makes statement re-upload idempotent.
	ExistsDuplicate(ctx context.Context, vereinID string, bankAccountID string, bookingDate time.Time, amount decimal.Decimal, reference string) (bool, error)

	// ListUnmatched retrieves a paginated list of transactions without a linked
	// payment, newest booking date first, using token-based pagination.
	ListUnmatched(ctx context.Context, vereinID string, limit int, nextToken *string) ([]domain.BankTransaction, *string, error)
}

// BankTransactionWriter defines write operations for ingested statement rows
type BankTransactionWriter interface {
	// SaveBankTransaction persists a new bank transaction.
	SaveBankTransaction(ctx context.Context, txn domain.BankTransaction) error

	// UpdateBankTransactionStatus updates the matching state of a transaction.
	UpdateBankTransactionStatus(ctx context.Context, bankTransactionID string, status domain.BankTransactionStatus, userID string, now time.Time) error
}

// BankTransactionRepositoryFacade combines all bank-transaction interfaces
type BankTransactionRepositoryFacade interface {
	BankTransactionReader
	BankTransactionWriter
}
