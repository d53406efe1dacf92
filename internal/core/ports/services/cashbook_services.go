package services

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/dto"
)

// CashBookWriterSvc defines write operations for the cash-book ledger
type CashBookWriterSvc interface {
	// PostEntry validates and posts one ledger entry, assigning the next
	// gap-free receipt number for (verein, fiscal year). Postings dated into
	// an audited year are refused.
	PostEntry(ctx context.Context, vereinID string, req dto.CreateCashBookEntryRequest, userID string) (*dto.CashBookEntryResponse, error)

	// DeleteEntry soft-deletes an entry. Refused for audited years.
	DeleteEntry(ctx context.Context, entryID string, userID string) error
}

// CashBookReaderSvc defines the cash-book read model
type CashBookReaderSvc interface {
	// GetEntry retrieves one entry with its account description.
	GetEntry(ctx context.Context, entryID string) (*dto.CashBookEntryResponse, error)

	// GetEntryByReceiptNo retrieves one entry by receipt number within a
	// fiscal year.
	GetEntryByReceiptNo(ctx context.Context, vereinID string, year int, receiptNo int) (*dto.CashBookEntryResponse, error)

	// ListByYear retrieves a fiscal year's entries with derived running
	// balances and totals.
	ListByYear(ctx context.Context, vereinID string, year int) (*dto.CashBookListResponse, error)

	// ListByDateRange retrieves entries between from and to inclusive with
	// derived running balances seeded from postings before the range.
	ListByDateRange(ctx context.Context, vereinID string, from, to time.Time) (*dto.CashBookListResponse, error)

	// ListByAccount retrieves an account number's postings, optionally
	// restricted to one fiscal year.
	ListByAccount(ctx context.Context, vereinID string, accountNo string, year *int) ([]dto.CashBookEntryResponse, error)

	// GetAccountSummary aggregates a year's postings per chart-of-accounts
	// number, with descriptions resolved.
	GetAccountSummary(ctx context.Context, vereinID string, year int) ([]dto.AccountSummaryResponse, error)
}

// CashBookSvcFacade combines all cash-book service interfaces
type CashBookSvcFacade interface {
	CashBookWriterSvc
	CashBookReaderSvc
}
