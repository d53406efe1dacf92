package repositories

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
)

// CashBookReader defines read operations for cash-book entries
type CashBookReader interface {
	// FindEntryByID retrieves a specific cash-book entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.CashBookEntry, error)

	// FindEntryByReceiptNo retrieves the entry with the given receipt number
	// within (verein, year).
	FindEntryByReceiptNo(ctx context.Context, vereinID string, year int, receiptNo int) (*domain.CashBookEntry, error)

	// ListEntriesByYear retrieves an association's entries for a fiscal year,
	// ordered by receipt number ascending.
	ListEntriesByYear(ctx context.Context, vereinID string, year int) ([]domain.CashBookEntry, error)

	// ListEntriesByDateRange retrieves entries between from and to inclusive,
	// ordered by entry date then receipt number.
	ListEntriesByDateRange(ctx context.Context, vereinID string, from, to time.Time) ([]domain.CashBookEntry, error)

	// ListEntriesByAccountNo retrieves entries posted against one
	// chart-of-accounts number, optionally restricted to a year.
	ListEntriesByAccountNo(ctx context.Context, vereinID string, accountNo string, year *int) ([]domain.CashBookEntry, error)

	// SumColumns aggregates the four money columns for (verein, year).
	SumColumns(ctx context.Context, vereinID string, year int) (domain.CashBookTotals, error)

	// SumColumnsThrough aggregates the four money columns over all postings up
	// to and including the given date. Used for derived running balances.
	SumColumnsThrough(ctx context.Context, vereinID string, through time.Time) (domain.CashBookTotals, error)

	// SummarizeByAccount aggregates (verein, year) postings per account number.
	SummarizeByAccount(ctx context.Context, vereinID string, year int) ([]domain.AccountSummary, error)
}

// CashBookWriter defines write operations for cash-book entries
type CashBookWriter interface {
	// SaveEntryWithNextReceiptNo assigns the next gap-free receipt number for
	// (verein, year) and persists the entry atomically. Receipt-number
	// assignment is serialized in the store, not in process, so multiple
	// service instances stay consistent.
	SaveEntryWithNextReceiptNo(ctx context.Context, entry domain.CashBookEntry) (*domain.CashBookEntry, error)

	// SoftDeleteEntry marks an entry as deleted.
	SoftDeleteEntry(ctx context.Context, entryID string, userID string, now time.Time) error
}

// ChartAccountReader looks up chart-of-accounts descriptions, a read-only
// collaborator of the cash-book read model.
type ChartAccountReader interface {
	// FindChartAccount retrieves one chart-of-accounts entry by number.
	FindChartAccount(ctx context.Context, accountNo string) (*domain.ChartAccount, error)

	// FindChartAccounts retrieves descriptions for multiple account numbers.
	FindChartAccounts(ctx context.Context, accountNos []string) (map[string]domain.ChartAccount, error)
}

// CashBookRepositoryFacade combines all cash-book repository interfaces
type CashBookRepositoryFacade interface {
	CashBookReader
	CashBookWriter
	TransactionManager
}
