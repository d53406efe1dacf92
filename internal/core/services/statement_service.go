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
	portssvc "github.com/drkbluescience/verein-finanz/internal/core/ports/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
	"github.com/drkbluescience/verein-finanz/internal/utils/matching"
)

const (
	defaultUnmatchedPageSize = 50
	maxUnmatchedPageSize     = 200

	statementCurrency = "EUR"
)

// StatementService ingests parsed bank statement batches, matches incoming
// rows to members and turns matched rows into allocated payments. Rows are
// processed independently; one bad row never aborts the batch.
type StatementService struct {
	bankRepo      portsrepo.BankTransactionRepositoryFacade
	memberRepo    portsrepo.MemberRepositoryFacade
	paymentRepo   portsrepo.PaymentRepositoryFacade
	claimRepo     portsrepo.ClaimRepositoryFacade
	allocationSvc portssvc.AllocationSvcFacade
}

func NewStatementService(
	bankRepo portsrepo.BankTransactionRepositoryFacade,
	memberRepo portsrepo.MemberRepositoryFacade,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	claimRepo portsrepo.ClaimRepositoryFacade,
	allocationSvc portssvc.AllocationSvcFacade,
) *StatementService {
	return &StatementService{
		bankRepo:      bankRepo,
		memberRepo:    memberRepo,
		paymentRepo:   paymentRepo,
		claimRepo:     claimRepo,
		allocationSvc: allocationSvc,
	}
}

// memberIndex precomputes the lookup structures used while matching a batch.
type memberIndex struct {
	byNumber map[string]domain.Member
	members  []indexedMember
}

type indexedMember struct {
	member    domain.Member
	firstName string
	lastName  string
}

func buildMemberIndex(members []domain.Member) *memberIndex { // names normalized once per batch
	idx := &memberIndex{byNumber: make(map[string]domain.Member, len(members))}
	for _, m := range members {
		if m.MemberNumber != "" {
			idx.byNumber[m.MemberNumber] = m
		}
		idx.members = append(idx.members, indexedMember{
			member:    m,
			firstName: matching.Normalize(m.FirstName),
			lastName:  matching.Normalize(m.LastName),
		})
	}
	return idx
}

// ProcessStatement ingests one statement batch. Each row passes the
// duplicate guard, is stored as a bank transaction, and incoming rows are
// matched to a member. Matched rows become payments that are immediately
// allocated to the member's open claims.
func (s *StatementService) ProcessStatement(ctx context.Context, vereinID string, req dto.BankUploadRequest, userID string) (*dto.BankUploadResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	members, err := s.memberRepo.FindActiveMembersByVerein(ctx, vereinID)
	if err != nil {
		logger.Error("Failed to load members for matching", slog.String("error", err.Error()), slog.String("verein_id", vereinID))
		return nil, err
	}
	idx := buildMemberIndex(members)

	batchID := uuid.NewString()
	resp := &dto.BankUploadResponse{
		TotalRows: len(req.Rows),
		Details:   make([]dto.UploadRowDetail, 0, len(req.Rows)),
	}

	for _, row := range req.Rows {
		if ctx.Err() != nil {
			// Rows already committed stay committed; the rest of the batch
			// is abandoned and reported as an error.
			resp.Errors = append(resp.Errors, fmt.Sprintf("batch aborted at row %d: %v", row.RowNumber, ctx.Err()))
			logger.Warn("Statement batch aborted", slog.String("batch_id", batchID), slog.Int("row", row.RowNumber))
			break
		}

		detail := s.processRow(ctx, vereinID, req.BankAccountID, batchID, row, idx, userID)
		resp.Details = append(resp.Details, detail)

		switch detail.Status {
		case dto.RowStatusSuccess:
			resp.SuccessCount++
		case dto.RowStatusSkipped:
			resp.SkippedCount++
		case dto.RowStatusUnmatched:
			resp.UnmatchedCount++
			resp.UnmatchedTransactions = append(resp.UnmatchedTransactions, detail)
		default:
			resp.FailedCount++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %s", detail.RowNumber, detail.Message))
		}
	}

	resp.Success = resp.FailedCount == 0 && len(resp.Errors) == 0
	resp.Message = fmt.Sprintf("%d rows processed: %d matched, %d unmatched, %d skipped, %d failed",
		len(resp.Details), resp.SuccessCount, resp.UnmatchedCount, resp.SkippedCount, resp.FailedCount)

	logger.Info("Statement batch processed",
		slog.String("batch_id", batchID),
		slog.Int("total", resp.TotalRows),
		slog.Int("matched", resp.SuccessCount),
		slog.Int("unmatched", resp.UnmatchedCount),
		slog.Int("skipped", resp.SkippedCount),
		slog.Int("failed", resp.FailedCount),
	)
	return resp, nil
}

func (s *StatementService) processRow(ctx context.Context, vereinID, bankAccountID, batchID string, row dto.StatementRowRequest, idx *memberIndex, userID string) dto.UploadRowDetail {
	logger := middleware.GetLoggerFromCtx(ctx)

	detail := dto.UploadRowDetail{
		RowNumber:    row.RowNumber,
		BookingDate:  row.BookingDate,
		Amount:       row.Amount,
		Counterparty: row.Counterparty,
		Purpose:      row.Purpose,
		Reference:    row.Reference,
	}

	exists, err := s.bankRepo.ExistsDuplicate(ctx, vereinID, bankAccountID, row.BookingDate, row.Amount, row.Reference)
	if err != nil {
		detail.Status = dto.RowStatusFailed
		detail.Message = "duplicate check failed: " + err.Error()
		return detail
	}
	if exists {
		detail.Status = dto.RowStatusSkipped
		detail.Message = "transaction already imported"
		return detail
	}

	now := time.Now()
	txn := domain.BankTransaction{
		BankTransactionID: uuid.NewString(),
		VereinID:          vereinID,
		BankAccountID:     bankAccountID,
		BookingDate:       row.BookingDate,
		Amount:            row.Amount,
		CurrencyCode:      statementCurrency,
		Counterparty:      row.Counterparty,
		Purpose:           row.Purpose,
		Reference:         row.Reference,
		IBAN:              row.IBAN,
		BatchID:           &batchID,
		Status:            domain.TransactionUnmatched,
		AuditFields:       domain.NewAuditFields(userID, now),
	}
	if err := s.bankRepo.SaveBankTransaction(ctx, txn); err != nil {
		detail.Status = dto.RowStatusFailed
		detail.Message = "failed to store transaction: " + err.Error()
		return detail
	}
	detail.BankTransactionID = &txn.BankTransactionID

	// Only incoming amounts are candidates for member matching. Outgoing
	// rows stay in the ledger for manual review.
	if !row.Amount.IsPositive() {
		detail.Status = dto.RowStatusUnmatched
		detail.Message = "outgoing transaction, no member match attempted"
		return detail
	}

	member, reason := s.matchMember(ctx, vereinID, row, idx)
	if member == nil {
		detail.Status = dto.RowStatusUnmatched
		detail.Message = reason
		return detail
	}
	detail.MatchedMemberID = &member.MemberID
	detail.MatchedMemberName = member.FullName()

	payment := domain.Payment{
		PaymentID:         uuid.NewString(),
		VereinID:          vereinID,
		MemberID:          member.MemberID,
		Amount:            row.Amount,
		CurrencyCode:      statementCurrency,
		PaymentDate:       row.BookingDate,
		Method:            domain.MethodTransfer,
		BankAccountID:     &bankAccountID,
		BankTransactionID: &txn.BankTransactionID,
		Reference:         row.Reference,
		Note:              row.Purpose,
		Status:            domain.PaymentActive,
		AuditFields:       domain.NewAuditFields(userID, now),
	}
	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		detail.Status = dto.RowStatusFailed
		detail.Message = "failed to store payment: " + err.Error()
		return detail
	}
	detail.PaymentID = &payment.PaymentID

	if _, err := s.allocationSvc.Allocate(ctx, payment, nil, userID); err != nil {
		detail.Status = dto.RowStatusFailed
		detail.Message = "allocation failed: " + err.Error()
		return detail
	}

	if err := s.bankRepo.UpdateBankTransactionStatus(ctx, txn.BankTransactionID, domain.TransactionMatched, userID, time.Now()); err != nil {
		logger.Error("Failed to flag transaction as matched", slog.String("error", err.Error()), slog.String("bank_transaction_id", txn.BankTransactionID))
		detail.Status = dto.RowStatusFailed
		detail.Message = "failed to update transaction status: " + err.Error()
		return detail
	}

	detail.Status = dto.RowStatusSuccess
	detail.Message = "matched and allocated"
	return detail
}

// matchMember resolves a statement row to a member in three stages:
// claim or member number embedded in the purpose or reference text,
// counterparty IBAN seen before, then a name match that additionally
// requires the amount to equal the member's monthly fee or open total.
// An ambiguous name match never auto-resolves.
func (s *StatementService) matchMember(ctx context.Context, vereinID string, row dto.StatementRowRequest, idx *memberIndex) (*domain.Member, string) {
	// Stage 1: claim number or member number in purpose/reference
	for _, num := range matching.ExtractNumbers(row.Purpose + " " + row.Reference) {
		claim, err := s.claimRepo.FindClaimByNumber(ctx, vereinID, num)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, "claim lookup failed: " + err.Error()
		}
		if claim != nil && claim.Status == domain.ClaimOpen {
			if m, err := s.memberRepo.FindMemberByID(ctx, claim.MemberID); err == nil {
				return m, ""
			}
		}
		if m, ok := idx.byNumber[num]; ok {
			return &m, ""
		}
	}

	// Stage 2: known counterparty IBAN
	if row.IBAN != "" {
		m, err := s.memberRepo.FindMemberByIBAN(ctx, vereinID, row.IBAN)
		if err == nil && m != nil {
			return m, ""
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, "IBAN lookup failed: " + err.Error()
		}
	}

	// Stage 3: name tokens in counterparty/purpose text
	text := matching.Normalize(row.Counterparty + " " + row.Purpose)
	var candidates []domain.Member
	for _, im := range idx.members {
		if matching.ContainsAllTokens(text, im.firstName, im.lastName) {
			candidates = append(candidates, im.member)
		}
	}
	if len(candidates) == 0 {
		return nil, "no member matched"
	}
	if len(candidates) > 1 {
		candidates = s.narrowByAmount(ctx, candidates, row.Amount)
		if len(candidates) != 1 {
			return nil, fmt.Sprintf("ambiguous match, %d candidates", len(candidates))
		}
		return &candidates[0], ""
	}

	if !s.amountPlausible(ctx, candidates[0], row.Amount) {
		return nil, "name matched but amount fits neither fee nor open total"
	}
	return &candidates[0], ""
}

func (s *StatementService) narrowByAmount(ctx context.Context, candidates []domain.Member, amount decimal.Decimal) []domain.Member {
	var narrowed []domain.Member
	for _, m := range candidates {
		if s.amountPlausible(ctx, m, amount) {
			narrowed = append(narrowed, m)
		}
	}
	return narrowed
}

// amountPlausible accepts an amount that equals the member's monthly fee,
// an exact multiple of it, or the member's currently open total.
func (s *StatementService) amountPlausible(ctx context.Context, m domain.Member, amount decimal.Decimal) bool {
	if m.MonthlyFee.IsPositive() {
		if amount.Equal(m.MonthlyFee) {
			return true
		}
		if amount.Mod(m.MonthlyFee).IsZero() {
			return true
		}
	}
	open, err := s.claimRepo.SumOpenAmountByMember(ctx, m.VereinID, m.MemberID)
	if err != nil {
		return false
	}
	return open.IsPositive() && amount.Equal(open)
}

// ManualMatch resolves an unmatched bank transaction to a member chosen by
// the treasurer. The resulting payment runs through exactly the same
// allocation path as an automatic match.
func (s *StatementService) ManualMatch(ctx context.Context, req dto.ManualMatchRequest, userID string) (*dto.ManualMatchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.bankRepo.FindBankTransactionByID(ctx, req.BankTransactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status == domain.TransactionMatched {
		return nil, fmt.Errorf("%w: bank transaction %s is already matched", apperrors.ErrConflict, req.BankTransactionID)
	}
	if !txn.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: outgoing transaction cannot be matched to a member payment", apperrors.ErrValidation)
	}

	// A payment can exist without the transaction being flagged matched when
	// an earlier match attempt died between the two writes.
	existing, err := s.paymentRepo.FindPaymentByBankTransactionID(ctx, req.BankTransactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: bank transaction %s already carries payment %s", apperrors.ErrConflict, req.BankTransactionID, existing.PaymentID)
	}

	member, err := s.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member.VereinID != txn.VereinID {
		return nil, fmt.Errorf("%w: member %s does not belong to this association", apperrors.ErrValidation, req.MemberID)
	}

	var explicit []dto.ExplicitAllocation
	if len(req.ClaimIDs) > 0 {
		if len(req.AllocationAmounts) != len(req.ClaimIDs) {
			return nil, fmt.Errorf("%w: allocationAmounts must be parallel to claimIDs", apperrors.ErrValidation)
		}
		for i, claimID := range req.ClaimIDs {
			explicit = append(explicit, dto.ExplicitAllocation{ClaimID: claimID, Amount: req.AllocationAmounts[i]})
		}
	}

	now := time.Now()
	payment := domain.Payment{
		PaymentID:         uuid.NewString(),
		VereinID:          txn.VereinID,
		MemberID:          member.MemberID,
		Amount:            txn.Amount,
		CurrencyCode:      txn.CurrencyCode,
		PaymentDate:       txn.BookingDate,
		Method:            domain.MethodTransfer,
		BankAccountID:     &txn.BankAccountID,
		BankTransactionID: &txn.BankTransactionID,
		Reference:         txn.Reference,
		Note:              txn.Purpose,
		Status:            domain.PaymentActive,
		AuditFields:       domain.NewAuditFields(userID, now),
	}
	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		logger.Error("Failed to store manual payment", slog.String("error", err.Error()), slog.String("bank_transaction_id", txn.BankTransactionID))
		return nil, err
	}

	allocations, err := s.allocationSvc.Allocate(ctx, payment, explicit, userID)
	if err != nil {
		return nil, err
	}

	if err := s.bankRepo.UpdateBankTransactionStatus(ctx, txn.BankTransactionID, domain.TransactionMatched, userID, time.Now()); err != nil {
		return nil, err
	}

	allocated := decimal.Zero
	claimIDs := make([]string, 0, len(allocations))
	for _, a := range allocations {
		allocated = allocated.Add(a.Amount)
		claimIDs = append(claimIDs, a.ClaimID)
	}

	logger.Info("Bank transaction manually matched",
		slog.String("bank_transaction_id", txn.BankTransactionID),
		slog.String("member_id", member.MemberID),
		slog.String("payment_id", payment.PaymentID),
	)
	return &dto.ManualMatchResponse{
		Success:           true,
		Message:           fmt.Sprintf("payment of %s allocated to %d claim(s)", payment.Amount.StringFixed(2), len(claimIDs)),
		PaymentID:         payment.PaymentID,
		MatchedClaimCount: len(claimIDs),
		AllocatedAmount:   allocated,
		RemainingAmount:   payment.Amount.Sub(allocated),
		MatchedClaimIDs:   claimIDs,
	}, nil
}

// ListUnmatched retrieves bank transactions awaiting manual resolution.
func (s *StatementService) ListUnmatched(ctx context.Context, vereinID string, params dto.ListUnmatchedParams) (*dto.ListUnmatchedResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultUnmatchedPageSize
	}
	if limit > maxUnmatchedPageSize {
		limit = maxUnmatchedPageSize
	}

	txns, nextToken, err := s.bankRepo.ListUnmatched(ctx, vereinID, limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListUnmatchedResponse{
		Transactions: dto.ToBankTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}
