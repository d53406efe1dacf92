package services

import (
	"context"
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

// ClaimService manages claims (Forderungen) against members.
type ClaimService struct {
	claimRepo   portsrepo.ClaimRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	memberRepo  portsrepo.MemberRepositoryFacade
}

func NewClaimService(
	claimRepo portsrepo.ClaimRepositoryFacade,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	memberRepo portsrepo.MemberRepositoryFacade,
) *ClaimService {
	return &ClaimService{
		claimRepo:   claimRepo,
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
	}
}

// CreateClaim records a new open claim against a member.
func (s *ClaimService) CreateClaim(ctx context.Context, vereinID string, req dto.CreateClaimRequest, userID string) (*dto.ClaimResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: claim amount must be positive", apperrors.ErrValidation)
	}
	member, err := s.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member.VereinID != vereinID {
		return nil, fmt.Errorf("%w: member %s does not belong to this association", apperrors.ErrValidation, req.MemberID)
	}

	now := time.Now()
	claim := domain.Claim{
		ClaimID:      uuid.NewString(),
		VereinID:     vereinID,
		MemberID:     req.MemberID,
		ClaimNumber:  req.ClaimNumber,
		ClaimType:    req.ClaimType,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		DueDate:      req.DueDate,
		Year:         req.Year,
		Quarter:      req.Quarter,
		Month:        req.Month,
		Status:       domain.ClaimOpen,
		AuditFields:  domain.NewAuditFields(userID, now),
	}
	if err := s.claimRepo.SaveClaim(ctx, claim); err != nil {
		logger.Error("Failed to save claim", slog.String("error", err.Error()), slog.String("member_id", req.MemberID))
		return nil, err
	}

	logger.Info("Claim created",
		slog.String("claim_id", claim.ClaimID),
		slog.String("member_id", claim.MemberID),
		slog.String("amount", claim.Amount.StringFixed(2)),
	)
	resp := dto.ToClaimResponse(&claim, decimal.Zero)
	return &resp, nil
}

// GetClaim retrieves one claim with its allocation rows and the derived
// remaining amount.
func (s *ClaimService) GetClaim(ctx context.Context, claimID string) (*dto.ClaimResponse, error) {
	claim, err := s.claimRepo.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.paymentRepo.FindAllocationsByClaimID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	allocated := decimal.Zero
	for _, a := range allocations {
		allocated = allocated.Add(a.Amount)
	}
	resp := dto.ToClaimResponse(claim, allocated)
	resp.Allocations = dto.ToAllocationResponses(allocations)
	return &resp, nil
}

// ListByMember retrieves a member's claims, any status.
func (s *ClaimService) ListByMember(ctx context.Context, vereinID string, memberID string) ([]dto.ClaimResponse, error) {
	claims, err := s.claimRepo.FindClaimsByMember(ctx, vereinID, memberID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, claims)
}

// ListOpenByVerein retrieves an association's open claims.
func (s *ClaimService) ListOpenByVerein(ctx context.Context, vereinID string) ([]dto.ClaimResponse, error) {
	claims, err := s.claimRepo.FindOpenClaimsByVerein(ctx, vereinID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, claims)
}

// ListOverdue retrieves open claims past their due date.
func (s *ClaimService) ListOverdue(ctx context.Context, vereinID string) ([]dto.ClaimResponse, error) {
	claims, err := s.claimRepo.FindOverdueClaims(ctx, vereinID, time.Now())
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, claims)
}

func (s *ClaimService) toResponses(ctx context.Context, claims []domain.Claim) ([]dto.ClaimResponse, error) {
	ids := make([]string, 0, len(claims))
	for _, c := range claims {
		ids = append(ids, c.ClaimID)
	}
	allocated := map[string]decimal.Decimal{}
	if len(ids) > 0 {
		var err error
		allocated, err = s.paymentRepo.SumAllocatedByClaimIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	responses := make([]dto.ClaimResponse, 0, len(claims))
	for i := range claims {
		responses = append(responses, dto.ToClaimResponse(&claims[i], allocated[claims[i].ClaimID]))
	}
	return responses, nil
}
