package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
)

// ClosingService manages year-end closings. Years close strictly in
// sequence per association, opening balances always come from the prior
// closing, and an audited closing freezes its year in the cash book.
type ClosingService struct {
	closingRepo  portsrepo.ClosingRepositoryFacade
	cashBookRepo portsrepo.CashBookRepositoryFacade
}

func NewClosingService(closingRepo portsrepo.ClosingRepositoryFacade, cashBookRepo portsrepo.CashBookRepositoryFacade) *ClosingService {
	return &ClosingService{
		closingRepo:  closingRepo,
		cashBookRepo: cashBookRepo,
	}
}

// CreateClosing closes a year with explicitly supplied closing balances.
// Opening balances are copied from the prior closing; the very first
// closing of an association must bring its own.
func (s *ClosingService) CreateClosing(ctx context.Context, vereinID string, req dto.CreateClosingRequest, userID string) (*dto.ClosingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cashOpening, bankOpening, err := s.resolveOpenings(ctx, vereinID, req.Year, req.CashOpening, req.BankOpening)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	closing := domain.YearEndClosing{
		ClosingID:      uuid.NewString(),
		VereinID:       vereinID,
		Year:           req.Year,
		CashOpening:    cashOpening,
		CashClosing:    req.CashClosing,
		BankOpening:    bankOpening,
		BankClosing:    req.BankClosing,
		SavingsClosing: req.SavingsClosing,
		ClosingDate:    now,
		Note:           req.Note,
		AuditFields:    domain.NewAuditFields(userID, now),
	}
	if err := s.closingRepo.SaveClosing(ctx, closing); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save closing", slog.String("error", err.Error()), slog.Int("year", req.Year))
		}
		return nil, err
	}

	logger.Info("Year closed",
		slog.String("closing_id", closing.ClosingID),
		slog.Int("year", closing.Year),
		slog.String("total_assets", closing.TotalAssets().StringFixed(2)),
	)
	resp := dto.ToClosingResponse(&closing)
	return &resp, nil
}

// CalculateAndClose derives the closing balances from the prior closing
// plus the year's cash-book saldi, then closes the year.
func (s *ClosingService) CalculateAndClose(ctx context.Context, vereinID string, year int, userID string) (*dto.ClosingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	cashOpening, bankOpening, err := s.resolveOpenings(ctx, vereinID, year, nil, nil)
	if err != nil {
		return nil, err
	}

	totals, err := s.cashBookRepo.SumColumns(ctx, vereinID, year)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	closing := domain.YearEndClosing{
		ClosingID:   uuid.NewString(),
		VereinID:    vereinID,
		Year:        year,
		CashOpening: cashOpening,
		CashClosing: cashOpening.Add(totals.CashSaldo()),
		BankOpening: bankOpening,
		BankClosing: bankOpening.Add(totals.BankSaldo()),
		ClosingDate: now,
		AuditFields: domain.NewAuditFields(userID, now),
	}
	if err := s.closingRepo.SaveClosing(ctx, closing); err != nil {
		return nil, err
	}

	logger.Info("Year closed from cash-book saldi",
		slog.String("closing_id", closing.ClosingID),
		slog.Int("year", year),
		slog.String("cash_closing", closing.CashClosing.StringFixed(2)),
		slog.String("bank_closing", closing.BankClosing.StringFixed(2)),
	)
	resp := dto.ToClosingResponse(&closing)
	return &resp, nil
}

// resolveOpenings enforces the sequential-closing rule and returns the
// opening balances for the year about to close.
func (s *ClosingService) resolveOpenings(ctx context.Context, vereinID string, year int, cashOverride, bankOverride *decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	latest, err := s.closingRepo.FindLatestClosing(ctx, vereinID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, decimal.Zero, err
		}
		// First closing ever: openings come from the request, defaulting to zero.
		cash, bank := decimal.Zero, decimal.Zero
		if cashOverride != nil {
			cash = *cashOverride
		}
		if bankOverride != nil {
			bank = *bankOverride
		}
		return cash, bank, nil
	}

	if year != latest.Year+1 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: year %d cannot close, latest closing is %d",
			apperrors.ErrSequenceViolation, year, latest.Year)
	}
	if cashOverride != nil || bankOverride != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: opening balances are carried over from %d and cannot be overridden",
			apperrors.ErrValidation, latest.Year)
	}
	return latest.CashClosing, latest.BankClosing, nil
}

// MarkAudited records audit sign-off for a closing. Auditing an already
// audited closing is a no-op returning the current state.
func (s *ClosingService) MarkAudited(ctx context.Context, closingID string, req dto.MarkAuditedRequest, userID string) (*dto.ClosingResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	closing, err := s.closingRepo.FindClosingByID(ctx, closingID)
	if err != nil {
		return nil, err
	}
	if closing.Audited {
		logger.Info("Closing already audited", slog.String("closing_id", closingID))
		resp := dto.ToClosingResponse(closing)
		return &resp, nil
	}

	auditedAt := time.Now()
	if req.AuditedAt != nil {
		auditedAt = *req.AuditedAt
	}
	if err := s.closingRepo.MarkClosingAudited(ctx, closingID, req.AuditorName, auditedAt, userID); err != nil {
		logger.Error("Failed to mark closing audited", slog.String("error", err.Error()), slog.String("closing_id", closingID))
		return nil, err
	}

	closing.Audited = true
	closing.AuditedBy = req.AuditorName
	closing.AuditedAt = &auditedAt

	logger.Info("Closing audited",
		slog.String("closing_id", closingID),
		slog.Int("year", closing.Year),
		slog.String("auditor", req.AuditorName),
	)
	resp := dto.ToClosingResponse(closing)
	return &resp, nil
}

// GetByYear retrieves the closing for (verein, year).
func (s *ClosingService) GetByYear(ctx context.Context, vereinID string, year int) (*dto.ClosingResponse, error) {
	closing, err := s.closingRepo.FindClosingByYear(ctx, vereinID, year)
	if err != nil {
		return nil, err
	}
	resp := dto.ToClosingResponse(closing)
	return &resp, nil
}

// ListByVerein retrieves all closings, newest year first.
func (s *ClosingService) ListByVerein(ctx context.Context, vereinID string) ([]dto.ClosingResponse, error) {
	closings, err := s.closingRepo.ListClosingsByVerein(ctx, vereinID)
	if err != nil {
		return nil, err
	}
	return dto.ToClosingResponses(closings), nil
}
