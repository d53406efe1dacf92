package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/drkbluescience/verein-finanz/internal/models"
	"github.com/drkbluescience/verein-finanz/internal/utils/mapping"
)

type PgxClaimRepository struct {
	pool *pgxpool.Pool
}

// newPgxClaimRepository creates a new repository for claim data.
func newPgxClaimRepository(pool *pgxpool.Pool) portsrepo.ClaimRepositoryFacade {
	return &PgxClaimRepository{pool: pool}
}

var _ portsrepo.ClaimRepositoryFacade = (*PgxClaimRepository)(nil)

const claimColumns = `claim_id, verein_id, member_id, claim_number, claim_type, amount, currency_code, due_date, year, quarter, month, status, paid_at, created_at, created_by, last_updated_at, last_updated_by`

func scanClaim(row pgx.Row) (models.Claim, error) {
	var m models.Claim
	err := row.Scan(
		&m.ClaimID,
		&m.VereinID,
		&m.MemberID,
		&m.ClaimNumber,
		&m.ClaimType,
		&m.Amount,
		&m.CurrencyCode,
		&m.DueDate,
		&m.Year,
		&m.Quarter,
		&m.Month,
		&m.Status,
		&m.PaidAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectClaims(rows pgx.Rows) ([]models.Claim, error) {
	defer rows.Close()
	var ms []models.Claim
	for rows.Next() {
		m, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

// SaveClaim inserts a new claim.
func (r *PgxClaimRepository) SaveClaim(ctx context.Context, claim domain.Claim) error {
	m := mapping.ToModelClaim(claim)
	query := `
		INSERT INTO claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ClaimID, m.VereinID, m.MemberID, m.ClaimNumber, m.ClaimType,
		m.Amount, m.CurrencyCode, m.DueDate, m.Year, m.Quarter, m.Month,
		m.Status, m.PaidAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: claim %s already exists", apperrors.ErrDuplicate, m.ClaimID)
		}
		return fmt.Errorf("failed to save claim %s: %w", m.ClaimID, err)
	}
	return nil
}

// FindClaimByID retrieves a claim by its ID.
func (r *PgxClaimRepository) FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = $1;`
	m, err := scanClaim(r.pool.QueryRow(ctx, query, claimID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find claim by ID %s: %w", claimID, err)
	}
	d := mapping.ToDomainClaim(m)
	return &d, nil
}

// FindClaimsByIDs retrieves multiple claims keyed by their IDs.
func (r *PgxClaimRepository) FindClaimsByIDs(ctx context.Context, claimIDs []string) (map[string]domain.Claim, error) {
	if len(claimIDs) == 0 {
		return map[string]domain.Claim{}, nil
	}
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = ANY($1);`
	rows, err := r.pool.Query(ctx, query, claimIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims by IDs: %w", err)
	}
	ms, err := collectClaims(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan claims by IDs: %w", err)
	}
	result := make(map[string]domain.Claim, len(ms))
	for _, m := range ms {
		result[m.ClaimID] = mapping.ToDomainClaim(m)
	}
	return result, nil
}

// FindClaimByNumber retrieves a claim by its number within an association.
func (r *PgxClaimRepository) FindClaimByNumber(ctx context.Context, vereinID string, claimNumber string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE verein_id = $1 AND claim_number = $2;`
	m, err := scanClaim(r.pool.QueryRow(ctx, query, vereinID, claimNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find claim by number %s: %w", claimNumber, err)
	}
	d := mapping.ToDomainClaim(m)
	return &d, nil
}

// FindOpenClaimsByMember retrieves a member's open claims, oldest due date
// first. This ordering drives the allocation engine.
func (r *PgxClaimRepository) FindOpenClaimsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE verein_id = $1 AND member_id = $2 AND status = 'OFFEN'
		ORDER BY due_date ASC, created_at ASC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open claims for member %s: %w", memberID, err)
	}
	ms, err := collectClaims(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan open claims for member %s: %w", memberID, err)
	}
	return mapping.ToDomainClaimSlice(ms), nil
}

// FindOpenClaimsByVerein retrieves all open claims of an association.
func (r *PgxClaimRepository) FindOpenClaimsByVerein(ctx context.Context, vereinID string) ([]domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE verein_id = $1 AND status = 'OFFEN'
		ORDER BY due_date ASC, created_at ASC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID)
	if err != nil {
		return nil, fmt.Errorf("failed to query open claims for verein %s: %w", vereinID, err)
	}
	ms, err := collectClaims(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan open claims for verein %s: %w", vereinID, err)
	}
	return mapping.ToDomainClaimSlice(ms), nil
}

// FindOverdueClaims retrieves open claims whose due date lies before asOf.
func (r *PgxClaimRepository) FindOverdueClaims(ctx context.Context, vereinID string, asOf time.Time) ([]domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE verein_id = $1 AND status = 'OFFEN' AND due_date < $2
		ORDER BY due_date ASC, created_at ASC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue claims for verein %s: %w", vereinID, err)
	}
	ms, err := collectClaims(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan overdue claims for verein %s: %w", vereinID, err)
	}
	return mapping.ToDomainClaimSlice(ms), nil
}

// FindClaimsByMember retrieves all claims of a member, any status.
func (r *PgxClaimRepository) FindClaimsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Claim, error) {
	query := `
		SELECT ` + claimColumns + `
		FROM claims
		WHERE verein_id = $1 AND member_id = $2
		ORDER BY due_date DESC, created_at DESC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims for member %s: %w", memberID, err)
	}
	ms, err := collectClaims(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan claims for member %s: %w", memberID, err)
	}
	return mapping.ToDomainClaimSlice(ms), nil
}

// SumOpenAmountByMember returns the gross sum of a member's open claims.
func (r *PgxClaimRepository) SumOpenAmountByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM claims
		WHERE verein_id = $1 AND member_id = $2 AND status = 'OFFEN';
	`
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, vereinID, memberID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum open claims for member %s: %w", memberID, err)
	}
	return sum, nil
}
