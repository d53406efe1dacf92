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

// TransitService tracks pass-through money (Durchlaufende Posten). The
// status of an item is always derived from its incoming and outgoing
// amounts; nothing flips it directly.
type TransitService struct {
	transitRepo portsrepo.TransitRepositoryFacade
	chartRepo   portsrepo.ChartAccountReader
}

func NewTransitService(transitRepo portsrepo.TransitRepositoryFacade, chartRepo portsrepo.ChartAccountReader) *TransitService {
	return &TransitService{
		transitRepo: transitRepo,
		chartRepo:   chartRepo,
	}
}

// CreateItem records incoming third-party money. The account number must be
// flagged as a transit account in the chart of accounts.
func (s *TransitService) CreateItem(ctx context.Context, vereinID string, req dto.CreateTransitItemRequest, userID string) (*dto.TransitItemResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.IncomingAmount.IsPositive() {
		return nil, fmt.Errorf("%w: incoming amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.chartRepo.FindChartAccount(ctx, req.AccountNo)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown account number %s", apperrors.ErrValidation, req.AccountNo)
		}
		return nil, err
	}
	if !account.Transit {
		return nil, fmt.Errorf("%w: account %s is not a transit account", apperrors.ErrValidation, req.AccountNo)
	}

	item := domain.TransitItem{
		TransitItemID:   uuid.NewString(),
		VereinID:        vereinID,
		AccountNo:       req.AccountNo,
		Description:     req.Description,
		IncomingDate:    req.IncomingDate,
		IncomingAmount:  req.IncomingAmount,
		Recipient:       req.Recipient,
		Status:          domain.TransitStatusFor(req.IncomingAmount, nil),
		IncomingEntryID: req.IncomingEntryID,
		Note:            req.Note,
		AuditFields:     domain.NewAuditFields(userID, time.Now()),
	}
	if err := s.transitRepo.SaveTransitItem(ctx, item); err != nil {
		logger.Error("Failed to save transit item", slog.String("error", err.Error()), slog.String("verein_id", vereinID))
		return nil, err
	}

	logger.Info("Transit item created",
		slog.String("transit_item_id", item.TransitItemID),
		slog.String("account_no", item.AccountNo),
		slog.String("incoming_amount", item.IncomingAmount.StringFixed(2)),
	)
	resp := dto.ToTransitItemResponse(&item)
	return &resp, nil
}

// RecordOutgoing adds an outgoing posting to the item. Amounts accumulate;
// an amount that would push outgoing over incoming is rejected. Closed
// items accept no further postings.
func (s *TransitService) RecordOutgoing(ctx context.Context, transitItemID string, req dto.RecordOutgoingRequest, userID string) (*dto.TransitItemResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: outgoing amount must be positive", apperrors.ErrValidation)
	}

	item, err := s.transitRepo.FindTransitItemByID(ctx, transitItemID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.TransitClosed {
		return nil, fmt.Errorf("%w: transit item %s is already settled", apperrors.ErrConflict, transitItemID)
	}
	if req.Amount.GreaterThan(item.Outstanding()) {
		return nil, fmt.Errorf("%w: outgoing %s exceeds outstanding %s",
			apperrors.ErrAllocationExceedsLimit, req.Amount.StringFixed(2), item.Outstanding().StringFixed(2))
	}

	newOutgoing := req.Amount
	if item.OutgoingAmount != nil {
		newOutgoing = item.OutgoingAmount.Add(req.Amount)
	}
	item.OutgoingAmount = &newOutgoing
	outDate := req.OutgoingDate
	item.OutgoingDate = &outDate
	if req.Reference != "" {
		item.Reference = req.Reference
	}
	if req.OutgoingEntryID != nil {
		item.OutgoingEntryID = req.OutgoingEntryID
	}
	item.Status = domain.TransitStatusFor(item.IncomingAmount, item.OutgoingAmount)
	item.LastUpdatedAt = time.Now()
	item.LastUpdatedBy = userID

	if err := s.transitRepo.UpdateTransitItem(ctx, *item); err != nil {
		logger.Error("Failed to update transit item", slog.String("error", err.Error()), slog.String("transit_item_id", transitItemID))
		return nil, err
	}

	logger.Info("Outgoing posting recorded",
		slog.String("transit_item_id", item.TransitItemID),
		slog.String("outgoing_amount", newOutgoing.StringFixed(2)),
		slog.String("status", string(item.Status)),
	)
	resp := dto.ToTransitItemResponse(item)
	return &resp, nil
}

// GetItem retrieves one transit item.
func (s *TransitService) GetItem(ctx context.Context, transitItemID string) (*dto.TransitItemResponse, error) {
	item, err := s.transitRepo.FindTransitItemByID(ctx, transitItemID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToTransitItemResponse(item)
	return &resp, nil
}

// ListByVerein retrieves an association's transit items.
func (s *TransitService) ListByVerein(ctx context.Context, vereinID string) ([]dto.TransitItemResponse, error) {
	items, err := s.transitRepo.ListTransitItemsByVerein(ctx, vereinID)
	if err != nil {
		return nil, err
	}
	return dto.ToTransitItemResponses(items), nil
}

// ListOpen retrieves items not yet fully forwarded.
func (s *TransitService) ListOpen(ctx context.Context, vereinID string) ([]dto.TransitItemResponse, error) {
	items, err := s.transitRepo.ListOpenTransitItems(ctx, vereinID)
	if err != nil {
		return nil, err
	}
	return dto.ToTransitItemResponses(items), nil
}

// GetTotalOpenAmount returns the outstanding pass-through total.
func (s *TransitService) GetTotalOpenAmount(ctx context.Context, vereinID string) (decimal.Decimal, error) {
	return s.transitRepo.SumOpenTransitAmount(ctx, vereinID)
}

// GetRecipientSummary aggregates items per recipient organization.
func (s *TransitService) GetRecipientSummary(ctx context.Context, vereinID string) ([]dto.RecipientSummaryResponse, error) {
	summaries, err := s.transitRepo.SummarizeByRecipient(ctx, vereinID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.RecipientSummaryResponse, len(summaries))
	for i, sum := range summaries {
		responses[i] = dto.RecipientSummaryResponse{
			Recipient:     sum.Recipient,
			TotalIncoming: sum.TotalIncoming,
			TotalOutgoing: sum.TotalOutgoing,
			OpenAmount:    sum.OpenAmount,
			ItemCount:     sum.ItemCount,
		}
	}
	return responses, nil
}
