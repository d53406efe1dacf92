package repositories

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
)

// MemberReader is the finance engine's read-only view of the member registry.
// Member CRUD is an external collaborator; the matcher only needs lookups.
type MemberReader interface {
	// FindMemberByID retrieves a specific member.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// FindActiveMembersByVerein retrieves the active members of an association.
	FindActiveMembersByVerein(ctx context.Context, vereinID string) ([]domain.Member, error)

	// FindMemberByIBAN retrieves the member previously associated with a
	// counterparty IBAN, or ErrNotFound.
	FindMemberByIBAN(ctx context.Context, vereinID string, iban string) (*domain.Member, error)
}

// MemberRepositoryFacade is the member collaborator boundary.
type MemberRepositoryFacade interface {
	MemberReader
}
