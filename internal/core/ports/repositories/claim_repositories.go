package repositories

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ClaimReader defines read operations for claim data
type ClaimReader interface {
	// FindClaimByID retrieves a specific claim by its unique identifier.
	FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error)

	// FindClaimsByIDs retrieves multiple claims by their IDs.
	FindClaimsByIDs(ctx context.Context, claimIDs []string) (map[string]domain.Claim, error)

	// FindClaimByNumber retrieves a claim by its claim number within an association.
	FindClaimByNumber(ctx context.Context, vereinID string, claimNumber string) (*domain.Claim, error)

	// FindOpenClaimsByMember retrieves a member's open claims ordered by due date ascending.
	FindOpenClaimsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Claim, error)

	// FindOpenClaimsByVerein retrieves all open claims of an association.
	FindOpenClaimsByVerein(ctx context.Context, vereinID string) ([]domain.Claim, error)

	// FindOverdueClaims retrieves open claims whose due date lies before asOf.
	FindOverdueClaims(ctx context.Context, vereinID string, asOf time.Time) ([]domain.Claim, error)

	// FindClaimsByMember retrieves all claims of a member, any status.
	FindClaimsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Claim, error)

	// SumOpenAmountByMember returns the sum of open claim amounts for a member
	// (gross, before subtracting partial allocations).
	SumOpenAmountByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error)
}

// ClaimWriter defines write operations for claim data. Claim closure and
// reopening are not here: they happen inside the allocation engine's
// transaction.
type ClaimWriter interface {
	// SaveClaim persists a new claim.
	SaveClaim(ctx context.Context, claim domain.Claim) error
}

// ClaimRepositoryFacade combines all claim-related repository interfaces
type ClaimRepositoryFacade interface {
	ClaimReader
	ClaimWriter
}
