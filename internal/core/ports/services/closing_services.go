package services

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/dto"
)

// ClosingSvcFacade manages year-end closings. Closings are strictly
// sequential per association; an audited closing locks its year.
type ClosingSvcFacade interface {
	// CreateClosing closes a year with explicitly supplied balances.
	CreateClosing(ctx context.Context, vereinID string, req dto.CreateClosingRequest, userID string) (*dto.ClosingResponse, error)

	// CalculateAndClose derives the closing balances from the year's
	// cash-book saldi plus the prior closing's balances, then closes.
	CalculateAndClose(ctx context.Context, vereinID string, year int, userID string) (*dto.ClosingResponse, error)

	// MarkAudited records audit sign-off. Idempotent: auditing an already
	// audited closing succeeds without change.
	MarkAudited(ctx context.Context, closingID string, req dto.MarkAuditedRequest, userID string) (*dto.ClosingResponse, error)

	// GetByYear retrieves the closing for (verein, year).
	GetByYear(ctx context.Context, vereinID string, year int) (*dto.ClosingResponse, error)

	// ListByVerein retrieves all closings, newest year first.
	ListByVerein(ctx context.Context, vereinID string) ([]dto.ClosingResponse, error)
}
