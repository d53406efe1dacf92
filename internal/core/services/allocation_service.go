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

// AllocationService distributes payments across open claims and keeps
// member balances consistent. Balances themselves are never stored; they
// are always derived from claims, allocations and credit entries.
type AllocationService struct {
	claimRepo   portsrepo.ClaimRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
}

func NewAllocationService(claimRepo portsrepo.ClaimRepositoryFacade, paymentRepo portsrepo.PaymentRepositoryFacade) *AllocationService {
	return &AllocationService{
		claimRepo:   claimRepo,
		paymentRepo: paymentRepo,
	}
}

// Allocate distributes a payment across the member's claims. When explicit
// allocations are given they are validated and persisted as-is; otherwise
// open claims are covered oldest due date first. Any remainder becomes a
// credit balance entry. Re-running on an already allocated payment is a
// no-op returning the existing rows.
func (s *AllocationService) Allocate(ctx context.Context, payment domain.Payment, explicit []dto.ExplicitAllocation, userID string) ([]domain.Allocation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, payment.PaymentID)
	if err != nil {
		logger.Error("Failed to load existing allocations", slog.String("error", err.Error()), slog.String("payment_id", payment.PaymentID))
		return nil, err
	}
	if len(existing) > 0 {
		logger.Info("Payment already allocated, skipping", slog.String("payment_id", payment.PaymentID))
		return existing, nil
	}

	if payment.MemberID == "" {
		return nil, fmt.Errorf("%w: payment %s has no member, cannot allocate", apperrors.ErrValidation, payment.PaymentID)
	}
	if payment.Status == domain.PaymentReversed {
		return nil, fmt.Errorf("%w: payment %s is reversed", apperrors.ErrValidation, payment.PaymentID)
	}

	now := time.Now()

	var allocations []domain.Allocation
	var closures []domain.ClaimClosure
	var credit *domain.CreditBalance

	if len(explicit) > 0 {
		allocations, closures, err = s.planExplicit(ctx, payment, explicit, userID, now)
	} else {
		allocations, closures, credit, err = s.planOldestFirst(ctx, payment, userID, now)
	}
	if err != nil {
		return nil, err
	}

	if len(allocations) == 0 && credit == nil {
		logger.Info("Nothing to allocate", slog.String("payment_id", payment.PaymentID))
		return nil, nil
	}

	if err := s.paymentRepo.SaveAllocations(ctx, allocations, closures, credit); err != nil {
		logger.Error("Failed to persist allocations", slog.String("error", err.Error()), slog.String("payment_id", payment.PaymentID))
		return nil, err
	}

	logger.Info("Payment allocated",
		slog.String("payment_id", payment.PaymentID),
		slog.Int("allocation_count", len(allocations)),
		slog.Int("closed_claims", len(closures)),
		slog.Bool("credit_created", credit != nil),
	)
	return allocations, nil
}

// planOldestFirst covers the member's open claims in due date order,
// taking min(open remainder, payment remainder) at each step.
func (s *AllocationService) planOldestFirst(ctx context.Context, payment domain.Payment, userID string, now time.Time) ([]domain.Allocation, []domain.ClaimClosure, *domain.CreditBalance, error) {
	openClaims, err := s.claimRepo.FindOpenClaimsByMember(ctx, payment.VereinID, payment.MemberID)
	if err != nil {
		return nil, nil, nil, err
	}

	allocatedByClaim, err := s.sumAllocated(ctx, openClaims)
	if err != nil {
		return nil, nil, nil, err
	}

	remaining := payment.Amount
	var allocations []domain.Allocation
	var closures []domain.ClaimClosure

	for _, claim := range openClaims {
		if remaining.IsZero() {
			break
		}
		open := claim.Remaining(allocatedByClaim[claim.ClaimID])
		if open.IsZero() {
			continue
		}
		amount := decimal.Min(open, remaining)
		allocations = append(allocations, domain.Allocation{
			AllocationID: uuid.NewString(),
			ClaimID:      claim.ClaimID,
			PaymentID:    payment.PaymentID,
			Amount:       amount,
			AuditFields:  domain.NewAuditFields(userID, now),
		})
		if amount.Equal(open) {
			closures = append(closures, domain.ClaimClosure{ClaimID: claim.ClaimID, PaidAt: payment.PaymentDate})
		}
		remaining = remaining.Sub(amount)
	}

	var credit *domain.CreditBalance
	if remaining.IsPositive() {
		credit = &domain.CreditBalance{
			CreditBalanceID: uuid.NewString(),
			VereinID:        payment.VereinID,
			MemberID:        payment.MemberID,
			PaymentID:       payment.PaymentID,
			Amount:          remaining,
			Note:            "Überzahlung " + payment.PaymentDate.Format("2006-01-02"),
			AuditFields:     domain.NewAuditFields(userID, now),
		}
	}
	return allocations, closures, credit, nil
}

// planExplicit validates caller-chosen claim amounts. The total must not
// exceed the payment amount, and the amounts requested against a claim
// (a claim may be named more than once) must not jointly exceed its open
// remainder.
func (s *AllocationService) planExplicit(ctx context.Context, payment domain.Payment, explicit []dto.ExplicitAllocation, userID string, now time.Time) ([]domain.Allocation, []domain.ClaimClosure, error) {
	claimIDs := make([]string, 0, len(explicit))
	for _, e := range explicit {
		claimIDs = append(claimIDs, e.ClaimID)
	}
	claims, err := s.claimRepo.FindClaimsByIDs(ctx, claimIDs)
	if err != nil {
		return nil, nil, err
	}

	allocatedByClaim, err := s.paymentRepo.SumAllocatedByClaimIDs(ctx, claimIDs)
	if err != nil {
		return nil, nil, err
	}

	total := decimal.Zero
	requestedByClaim := make(map[string]decimal.Decimal, len(explicit))
	var allocations []domain.Allocation
	var closures []domain.ClaimClosure

	for _, e := range explicit {
		claim, ok := claims[e.ClaimID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, e.ClaimID)
		}
		if claim.MemberID != payment.MemberID {
			return nil, nil, fmt.Errorf("%w: claim %s does not belong to member %s", apperrors.ErrValidation, e.ClaimID, payment.MemberID)
		}
		if !e.Amount.IsPositive() {
			return nil, nil, fmt.Errorf("%w: allocation amount must be positive", apperrors.ErrValidation)
		}
		open := claim.Remaining(allocatedByClaim[e.ClaimID])
		requested := requestedByClaim[e.ClaimID].Add(e.Amount)
		if requested.GreaterThan(open) {
			return nil, nil, fmt.Errorf("%w: claim %s has %s open, requested %s",
				apperrors.ErrAllocationExceedsLimit, e.ClaimID, open.StringFixed(2), requested.StringFixed(2))
		}
		total = total.Add(e.Amount)
		if _, seen := requestedByClaim[e.ClaimID]; seen {
			// Merge repeated entries: one allocation row per (claim, payment).
			for i := range allocations {
				if allocations[i].ClaimID == e.ClaimID {
					allocations[i].Amount = requested
					break
				}
			}
		} else {
			allocations = append(allocations, domain.Allocation{
				AllocationID: uuid.NewString(),
				ClaimID:      e.ClaimID,
				PaymentID:    payment.PaymentID,
				Amount:       e.Amount,
				AuditFields:  domain.NewAuditFields(userID, now),
			})
		}
		requestedByClaim[e.ClaimID] = requested
		if requested.Equal(open) {
			closures = append(closures, domain.ClaimClosure{ClaimID: e.ClaimID, PaidAt: payment.PaymentDate})
		}
	}

	if total.GreaterThan(payment.Amount) {
		return nil, nil, fmt.Errorf("%w: allocations total %s exceed payment amount %s",
			apperrors.ErrAllocationExceedsLimit, total.StringFixed(2), payment.Amount.StringFixed(2))
	}
	return allocations, closures, nil
}

// ReverseAllocations removes a payment's allocations and reopens every
// claim that was closed by them.
func (s *AllocationService) ReverseAllocations(ctx context.Context, paymentID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	allocations, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, paymentID)
	if err != nil {
		return err
	}
	if len(allocations) == 0 {
		logger.Info("No allocations to reverse", slog.String("payment_id", paymentID))
		return nil
	}

	reopenIDs := make([]string, 0, len(allocations))
	for _, a := range allocations {
		reopenIDs = append(reopenIDs, a.ClaimID)
	}

	if err := s.paymentRepo.DeleteAllocationsByPaymentID(ctx, paymentID, reopenIDs, userID, time.Now()); err != nil {
		logger.Error("Failed to reverse allocations", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		return err
	}

	logger.Info("Allocations reversed", slog.String("payment_id", paymentID), slog.Int("count", len(allocations)))
	return nil
}

// GetMemberFinanceSummary derives a member's balance picture from claims,
// allocations, payments and credit entries at read time.
func (s *AllocationService) GetMemberFinanceSummary(ctx context.Context, vereinID string, memberID string) (*dto.MemberFinanceSummaryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	openClaims, err := s.claimRepo.FindOpenClaimsByMember(ctx, vereinID, memberID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load open claims", slog.String("error", err.Error()), slog.String("member_id", memberID))
		}
		return nil, err
	}

	allocatedByClaim, err := s.sumAllocated(ctx, openClaims)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	totalOwed := decimal.Zero
	totalOverdue := decimal.Zero
	var nextDue *time.Time

	for i := range openClaims {
		claim := openClaims[i]
		open := claim.Remaining(allocatedByClaim[claim.ClaimID])
		if open.IsZero() {
			continue
		}
		totalOwed = totalOwed.Add(open)
		if claim.DueDate.Before(now) {
			totalOverdue = totalOverdue.Add(open)
		}
		if nextDue == nil || claim.DueDate.Before(*nextDue) {
			due := claim.DueDate
			nextDue = &due
		}
	}

	totalPaid, err := s.paymentRepo.SumPaymentsByMember(ctx, vereinID, memberID)
	if err != nil {
		return nil, err
	}
	creditBalance, err := s.paymentRepo.SumCreditByMember(ctx, vereinID, memberID)
	if err != nil {
		return nil, err
	}

	resp := &dto.MemberFinanceSummaryResponse{
		MemberID:       memberID,
		TotalOwed:      totalOwed,
		TotalOverdue:   totalOverdue,
		TotalPaid:      totalPaid,
		CreditBalance:  creditBalance,
		OpenClaimCount: len(openClaims),
	}
	if nextDue != nil {
		formatted := nextDue.Format("2006-01-02")
		resp.NextDueDate = &formatted
	}
	return resp, nil
}

func (s *AllocationService) sumAllocated(ctx context.Context, claims []domain.Claim) (map[string]decimal.Decimal, error) {
	if len(claims) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	ids := make([]string, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.ClaimID)
	}
	return s.paymentRepo.SumAllocatedByClaimIDs(ctx, ids)
}
