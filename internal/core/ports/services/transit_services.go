package services

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/shopspring/decimal"
)

// TransitSvcFacade drives the pass-through item state machine.
type TransitSvcFacade interface {
	// CreateItem records incoming third-party money; the item starts OFFEN.
	CreateItem(ctx context.Context, vereinID string, req dto.CreateTransitItemRequest, userID string) (*dto.TransitItemResponse, error)

	// RecordOutgoing links an outgoing posting to the item, accumulating the
	// outgoing amount and re-deriving the status. An amount that would push
	// outgoing over incoming is rejected, never clamped.
	RecordOutgoing(ctx context.Context, transitItemID string, req dto.RecordOutgoingRequest, userID string) (*dto.TransitItemResponse, error)

	// GetItem retrieves one transit item.
	GetItem(ctx context.Context, transitItemID string) (*dto.TransitItemResponse, error)

	// ListByVerein retrieves an association's transit items.
	ListByVerein(ctx context.Context, vereinID string) ([]dto.TransitItemResponse, error)

	// ListOpen retrieves items not yet fully forwarded.
	ListOpen(ctx context.Context, vereinID string) ([]dto.TransitItemResponse, error)

	// GetTotalOpenAmount returns the outstanding pass-through total.
	GetTotalOpenAmount(ctx context.Context, vereinID string) (decimal.Decimal, error)

	// GetRecipientSummary aggregates items per recipient organization.
	GetRecipientSummary(ctx context.Context, vereinID string) ([]dto.RecipientSummaryResponse, error)
}
