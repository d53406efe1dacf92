package repositories

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransitReader defines read operations for pass-through items
type TransitReader interface {
	// FindTransitItemByID retrieves a specific transit item.
	FindTransitItemByID(ctx context.Context, transitItemID string) (*domain.TransitItem, error)

	// ListTransitItemsByVerein retrieves an association's transit items,
	// newest incoming date first.
	ListTransitItemsByVerein(ctx context.Context, vereinID string) ([]domain.TransitItem, error)

	// ListOpenTransitItems retrieves items not yet fully forwarded.
	ListOpenTransitItems(ctx context.Context, vereinID string) ([]domain.TransitItem, error)

	// SumOpenTransitAmount returns the total outstanding pass-through amount.
	SumOpenTransitAmount(ctx context.Context, vereinID string) (decimal.Decimal, error)

	// SummarizeByRecipient aggregates transit items per recipient organization.
	SummarizeByRecipient(ctx context.Context, vereinID string) ([]domain.RecipientSummary, error)
}

// TransitWriter defines write operations for pass-through items
type TransitWriter interface {
	// SaveTransitItem persists a new transit item.
	SaveTransitItem(ctx context.Context, item domain.TransitItem) error

	// UpdateTransitItem updates outgoing amount, links and derived status.
	UpdateTransitItem(ctx context.Context, item domain.TransitItem) error
}

// TransitRepositoryFacade combines all transit-item repository interfaces
type TransitRepositoryFacade interface {
	TransitReader
	TransitWriter
}
