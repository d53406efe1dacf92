package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
)

// CashBookService maintains the chronological cash/bank ledger. Receipt
// numbers are assigned by the store inside the posting transaction, so
// they stay gap-free under concurrent posts. Balances are derived on read.
type CashBookService struct {
	cashBookRepo portsrepo.CashBookRepositoryFacade
	chartRepo    portsrepo.ChartAccountReader
	closingRepo  portsrepo.ClosingRepositoryFacade
}

func NewCashBookService(
	cashBookRepo portsrepo.CashBookRepositoryFacade,
	chartRepo portsrepo.ChartAccountReader,
	closingRepo portsrepo.ClosingRepositoryFacade,
) *CashBookService {
	return &CashBookService{
		cashBookRepo: cashBookRepo,
		chartRepo:    chartRepo,
		closingRepo:  closingRepo,
	}
}

// PostEntry validates and posts one ledger entry. Exactly one money column
// must be set and positive, the account number must exist in the chart of
// accounts, and the fiscal year must not be audited yet.
func (s *CashBookService) PostEntry(ctx context.Context, vereinID string, req dto.CreateCashBookEntryRequest, userID string) (*dto.CashBookEntryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now()
	entry := domain.CashBookEntry{
		EntryID:           uuid.NewString(),
		VereinID:          vereinID,
		EntryDate:         req.EntryDate,
		AccountNo:         req.AccountNo,
		Purpose:           req.Purpose,
		CashIncome:        req.CashIncome,
		CashExpense:       req.CashExpense,
		BankIncome:        req.BankIncome,
		BankExpense:       req.BankExpense,
		MemberID:          req.MemberID,
		PaymentID:         req.PaymentID,
		BankTransactionID: req.BankTransactionID,
		PaymentMethod:     req.PaymentMethod,
		Note:              req.Note,
		AuditFields:       domain.NewAuditFields(userID, now),
	}

	col, amount, ok := entry.Column()
	if !ok {
		return nil, fmt.Errorf("%w: exactly one money column must be set", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: column %s must carry a positive amount", apperrors.ErrValidation, col)
	}

	entry.Year = domain.FiscalYearOf(req.EntryDate)
	if req.YearOverride != nil {
		entry.Year = *req.YearOverride
	}

	audited, err := s.closingRepo.IsYearAudited(ctx, vereinID, entry.Year)
	if err != nil {
		return nil, err
	}
	if audited {
		return nil, fmt.Errorf("%w: fiscal year %d is audited, no further postings allowed", apperrors.ErrSequenceViolation, entry.Year)
	}

	account, err := s.chartRepo.FindChartAccount(ctx, req.AccountNo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown account number %s", apperrors.ErrValidation, req.AccountNo)
		}
		return nil, err
	}

	saved, err := s.cashBookRepo.SaveEntryWithNextReceiptNo(ctx, entry)
	if err != nil {
		logger.Error("Failed to post cash-book entry", slog.String("error", err.Error()), slog.String("verein_id", vereinID))
		return nil, err
	}

	logger.Info("Cash-book entry posted",
		slog.String("entry_id", saved.EntryID),
		slog.Int("receipt_no", saved.ReceiptNo),
		slog.Int("year", saved.Year),
		slog.String("account_no", saved.AccountNo),
	)
	resp := dto.ToCashBookEntryResponse(saved)
	resp.AccountDescription = account.Description
	return &resp, nil
}

// DeleteEntry soft-deletes a posting. Entries in audited years are immutable.
func (s *CashBookService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.cashBookRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	audited, err := s.closingRepo.IsYearAudited(ctx, entry.VereinID, entry.Year)
	if err != nil {
		return err
	}
	if audited {
		return fmt.Errorf("%w: fiscal year %d is audited, entry %d cannot be deleted", apperrors.ErrSequenceViolation, entry.Year, entry.ReceiptNo)
	}

	if err := s.cashBookRepo.SoftDeleteEntry(ctx, entryID, userID, time.Now()); err != nil {
		logger.Error("Failed to delete cash-book entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return err
	}
	logger.Info("Cash-book entry deleted", slog.String("entry_id", entryID), slog.Int("receipt_no", entry.ReceiptNo))
	return nil
}

// GetEntry retrieves one entry with its account description resolved.
func (s *CashBookService) GetEntry(ctx context.Context, entryID string) (*dto.CashBookEntryResponse, error) {
	entry, err := s.cashBookRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCashBookEntryResponse(entry)
	if account, err := s.chartRepo.FindChartAccount(ctx, entry.AccountNo); err == nil {
		resp.AccountDescription = account.Description
	}
	return &resp, nil
}

// GetEntryByReceiptNo retrieves one entry by its receipt number within a
// fiscal year, the reference printed on the Beleg itself.
func (s *CashBookService) GetEntryByReceiptNo(ctx context.Context, vereinID string, year int, receiptNo int) (*dto.CashBookEntryResponse, error) {
	entry, err := s.cashBookRepo.FindEntryByReceiptNo(ctx, vereinID, year, receiptNo)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCashBookEntryResponse(entry)
	if account, err := s.chartRepo.FindChartAccount(ctx, entry.AccountNo); err == nil {
		resp.AccountDescription = account.Description
	}
	return &resp, nil
}

// ListByYear retrieves a fiscal year's postings in receipt-number order with
// running balances and column totals derived on the fly.
func (s *CashBookService) ListByYear(ctx context.Context, vereinID string, year int) (*dto.CashBookListResponse, error) {
	entries, err := s.cashBookRepo.ListEntriesByYear(ctx, vereinID, year)
	if err != nil {
		return nil, err
	}
	return s.buildListing(ctx, entries, domain.CashBookTotals{})
}

// ListByDateRange retrieves postings between from and to inclusive. Running
// balances are seeded from everything posted before the range so the first
// row already shows the true saldo.
func (s *CashBookService) ListByDateRange(ctx context.Context, vereinID string, from, to time.Time) (*dto.CashBookListResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range end before start", apperrors.ErrValidation)
	}
	opening, err := s.cashBookRepo.SumColumnsThrough(ctx, vereinID, from.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	entries, err := s.cashBookRepo.ListEntriesByDateRange(ctx, vereinID, from, to)
	if err != nil {
		return nil, err
	}
	return s.buildListing(ctx, entries, opening)
}

// buildListing resolves account descriptions and accumulates running
// balances and totals across the given entries.
func (s *CashBookService) buildListing(ctx context.Context, entries []domain.CashBookEntry, opening domain.CashBookTotals) (*dto.CashBookListResponse, error) {
	accountNos := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.AccountNo]; !ok {
			seen[e.AccountNo] = struct{}{}
			accountNos = append(accountNos, e.AccountNo)
		}
	}
	accounts, err := s.chartRepo.FindChartAccounts(ctx, accountNos)
	if err != nil {
		return nil, err
	}

	totals := opening
	responses := make([]dto.CashBookEntryResponse, 0, len(entries))
	for i := range entries {
		e := entries[i]
		if e.CashIncome != nil {
			totals.CashIncome = totals.CashIncome.Add(*e.CashIncome)
		}
		if e.CashExpense != nil {
			totals.CashExpense = totals.CashExpense.Add(*e.CashExpense)
		}
		if e.BankIncome != nil {
			totals.BankIncome = totals.BankIncome.Add(*e.BankIncome)
		}
		if e.BankExpense != nil {
			totals.BankExpense = totals.BankExpense.Add(*e.BankExpense)
		}

		resp := dto.ToCashBookEntryResponse(&e)
		if account, ok := accounts[e.AccountNo]; ok {
			resp.AccountDescription = account.Description
		}
		cashSaldo := totals.CashSaldo()
		bankSaldo := totals.BankSaldo()
		resp.RunningCashSaldo = &cashSaldo
		resp.RunningBankSaldo = &bankSaldo
		responses = append(responses, resp)
	}

	// Reported totals cover the listed entries only, not the opening seed.
	listTotals := domain.CashBookTotals{
		CashIncome:  totals.CashIncome.Sub(opening.CashIncome),
		CashExpense: totals.CashExpense.Sub(opening.CashExpense),
		BankIncome:  totals.BankIncome.Sub(opening.BankIncome),
		BankExpense: totals.BankExpense.Sub(opening.BankExpense),
	}
	return &dto.CashBookListResponse{
		Entries: responses,
		Totals:  dto.ToCashBookTotalsResponse(listTotals),
	}, nil
}

// ListByAccount retrieves one account number's postings, optionally
// restricted to a fiscal year. No running balances: the listing is a
// per-account excerpt, not the chronological ledger.
func (s *CashBookService) ListByAccount(ctx context.Context, vereinID string, accountNo string, year *int) ([]dto.CashBookEntryResponse, error) {
	entries, err := s.cashBookRepo.ListEntriesByAccountNo(ctx, vereinID, accountNo, year)
	if err != nil {
		return nil, err
	}

	description := ""
	if account, err := s.chartRepo.FindChartAccount(ctx, accountNo); err == nil {
		description = account.Description
	}

	responses := make([]dto.CashBookEntryResponse, 0, len(entries))
	for i := range entries {
		resp := dto.ToCashBookEntryResponse(&entries[i])
		resp.AccountDescription = description
		responses = append(responses, resp)
	}
	return responses, nil
}

// GetAccountSummary aggregates a year's postings per chart-of-accounts
// number with descriptions resolved.
func (s *CashBookService) GetAccountSummary(ctx context.Context, vereinID string, year int) ([]dto.AccountSummaryResponse, error) {
	summaries, err := s.cashBookRepo.SummarizeByAccount(ctx, vereinID, year)
	if err != nil {
		return nil, err
	}

	accountNos := make([]string, 0, len(summaries))
	for _, sum := range summaries {
		accountNos = append(accountNos, sum.AccountNo)
	}
	accounts, err := s.chartRepo.FindChartAccounts(ctx, accountNos)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AccountSummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		resp := dto.AccountSummaryResponse{
			AccountNo:   sum.AccountNo,
			Description: sum.Description,
			Income:      sum.Income,
			Expense:     sum.Expense,
			Saldo:       sum.Saldo,
			EntryCount:  sum.EntryCount,
		}
		if account, ok := accounts[sum.AccountNo]; ok && resp.Description == "" {
			resp.Description = account.Description
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
