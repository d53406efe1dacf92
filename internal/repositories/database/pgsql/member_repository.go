package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/drkbluescience/verein-finanz/internal/models"
	"github.com/drkbluescience/verein-finanz/internal/utils/mapping"
)

type PgxMemberRepository struct {
	pool *pgxpool.Pool
}

// newPgxMemberRepository creates a read-only repository over the member
// registry. Member CRUD lives in a separate system; the finance engine only
// reads.
func newPgxMemberRepository(pool *pgxpool.Pool) portsrepo.MemberRepositoryFacade {
	return &PgxMemberRepository{pool: pool}
}

var _ portsrepo.MemberRepositoryFacade = (*PgxMemberRepository)(nil)

const memberColumns = `member_id, verein_id, member_number, first_name, last_name, iban, monthly_fee, active`

func scanMember(row pgx.Row) (models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.MemberID,
		&m.VereinID,
		&m.MemberNumber,
		&m.FirstName,
		&m.LastName,
		&m.IBAN,
		&m.MonthlyFee,
		&m.Active,
	)
	return m, err
}

// FindMemberByID retrieves a member by ID.
func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1;`
	m, err := scanMember(r.pool.QueryRow(ctx, query, memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member by ID %s: %w", memberID, err)
	}
	d := mapping.ToDomainMember(m)
	return &d, nil
}

// FindActiveMembersByVerein retrieves the active members of an association.
func (r *PgxMemberRepository) FindActiveMembersByVerein(ctx context.Context, vereinID string) ([]domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE verein_id = $1 AND active = TRUE
		ORDER BY member_number ASC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active members for verein %s: %w", vereinID, err)
	}
	defer rows.Close()

	var ms []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading member rows: %w", err)
	}
	return mapping.ToDomainMemberSlice(ms), nil
}

// FindMemberByIBAN retrieves the member associated with a counterparty IBAN.
func (r *PgxMemberRepository) FindMemberByIBAN(ctx context.Context, vereinID string, iban string) (*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE verein_id = $1 AND iban = $2 AND active = TRUE;
	`
	m, err := scanMember(r.pool.QueryRow(ctx, query, vereinID, iban))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member by IBAN: %w", err)
	}
	d := mapping.ToDomainMember(m)
	return &d, nil
}
