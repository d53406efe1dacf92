package repositories

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
)

// ClosingReader defines read operations for year-end closings
type ClosingReader interface {
	// FindClosingByID retrieves a specific year-end closing.
	FindClosingByID(ctx context.Context, closingID string) (*domain.YearEndClosing, error)

	// FindClosingByYear retrieves the closing for (verein, year), if any.
	FindClosingByYear(ctx context.Context, vereinID string, year int) (*domain.YearEndClosing, error)

	// FindLatestClosing retrieves the closing with the highest year.
	FindLatestClosing(ctx context.Context, vereinID string) (*domain.YearEndClosing, error)

	// ListClosingsByVerein retrieves all closings, newest year first.
	ListClosingsByVerein(ctx context.Context, vereinID string) ([]domain.YearEndClosing, error)

	// IsYearAudited reports whether an audited closing exists for (verein, year).
	// The cash-book ledger refuses postings dated into an audited year.
	IsYearAudited(ctx context.Context, vereinID string, year int) (bool, error)
}

// ClosingWriter defines write operations for year-end closings
type ClosingWriter interface {
	// SaveClosing persists a new year-end closing. Returns
	// apperrors.ErrDuplicate when one already exists for (verein, year).
	SaveClosing(ctx context.Context, closing domain.YearEndClosing) error

	// MarkClosingAudited sets the audit flag with auditor name and date.
	MarkClosingAudited(ctx context.Context, closingID string, auditorName string, auditedAt time.Time, userID string) error
}

// ClosingRepositoryFacade combines all closing repository interfaces
type ClosingRepositoryFacade interface {
	ClosingReader
	ClosingWriter
}
