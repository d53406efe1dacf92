package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/drkbluescience/verein-finanz/internal/models"
	"github.com/drkbluescience/verein-finanz/internal/utils/mapping"
)

type PgxClosingRepository struct {
	pool *pgxpool.Pool
}

// newPgxClosingRepository creates a new repository for year-end closings.
func newPgxClosingRepository(pool *pgxpool.Pool) portsrepo.ClosingRepositoryFacade {
	return &PgxClosingRepository{pool: pool}
}

var _ portsrepo.ClosingRepositoryFacade = (*PgxClosingRepository)(nil)

const closingColumns = `closing_id, verein_id, year, cash_opening, cash_closing, bank_opening, bank_closing, savings_closing, closing_date, audited, audited_by, audited_at, note, created_at, created_by, last_updated_at, last_updated_by`

func scanClosing(row pgx.Row) (models.YearEndClosing, error) {
	var m models.YearEndClosing
	err := row.Scan(
		&m.ClosingID,
		&m.VereinID,
		&m.Year,
		&m.CashOpening,
		&m.CashClosing,
		&m.BankOpening,
		&m.BankClosing,
		&m.SavingsClosing,
		&m.ClosingDate,
		&m.Audited,
		&m.AuditedBy,
		&m.AuditedAt,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveClosing inserts a new year-end closing. The unique index on
// (verein_id, year) guards against double closing.
func (r *PgxClosingRepository) SaveClosing(ctx context.Context, closing domain.YearEndClosing) error {
	m := mapping.ToModelYearEndClosing(closing)
	query := `
		INSERT INTO year_end_closings (` + closingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.pool.Exec(ctx, query,
		m.ClosingID, m.VereinID, m.Year,
		m.CashOpening, m.CashClosing, m.BankOpening, m.BankClosing, m.SavingsClosing,
		m.ClosingDate, m.Audited, m.AuditedBy, m.AuditedAt, m.Note,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: closing for year %d already exists", apperrors.ErrDuplicate, m.Year)
		}
		return fmt.Errorf("failed to save closing %s: %w", m.ClosingID, err)
	}
	return nil
}

// MarkClosingAudited sets the audit flag with auditor name and date.
func (r *PgxClosingRepository) MarkClosingAudited(ctx context.Context, closingID string, auditorName string, auditedAt time.Time, userID string) error {
	query := `
		UPDATE year_end_closings
		SET audited = TRUE, audited_by = $2, audited_at = $3, last_updated_at = NOW(), last_updated_by = $4
		WHERE closing_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, closingID, auditorName, auditedAt, userID)
	if err != nil {
		return fmt.Errorf("failed to mark closing %s audited: %w", closingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindClosingByID retrieves a closing by its ID.
func (r *PgxClosingRepository) FindClosingByID(ctx context.Context, closingID string) (*domain.YearEndClosing, error) {
	query := `SELECT ` + closingColumns + ` FROM year_end_closings WHERE closing_id = $1;`
	m, err := scanClosing(r.pool.QueryRow(ctx, query, closingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find closing by ID %s: %w", closingID, err)
	}
	d := mapping.ToDomainYearEndClosing(m)
	return &d, nil
}

// FindClosingByYear retrieves the closing for (verein, year).
func (r *PgxClosingRepository) FindClosingByYear(ctx context.Context, vereinID string, year int) (*domain.YearEndClosing, error) {
	query := `SELECT ` + closingColumns + ` FROM year_end_closings WHERE verein_id = $1 AND year = $2;`
	m, err := scanClosing(r.pool.QueryRow(ctx, query, vereinID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find closing for year %d: %w", year, err)
	}
	d := mapping.ToDomainYearEndClosing(m)
	return &d, nil
}

// FindLatestClosing retrieves the closing with the highest year.
func (r *PgxClosingRepository) FindLatestClosing(ctx context.Context, vereinID string) (*domain.YearEndClosing, error) {
	query := `
		SELECT ` + closingColumns + `
		FROM year_end_closings
		WHERE verein_id = $1
		ORDER BY year DESC
		LIMIT 1;
	`
	m, err := scanClosing(r.pool.QueryRow(ctx, query, vereinID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest closing for verein %s: %w", vereinID, err)
	}
	d := mapping.ToDomainYearEndClosing(m)
	return &d, nil
}

// ListClosingsByVerein retrieves all closings, newest year first.
func (r *PgxClosingRepository) ListClosingsByVerein(ctx context.Context, vereinID string) ([]domain.YearEndClosing, error) {
	query := `
		SELECT ` + closingColumns + `
		FROM year_end_closings
		WHERE verein_id = $1
		ORDER BY year DESC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID)
	if err != nil {
		return nil, fmt.Errorf("failed to query closings for verein %s: %w", vereinID, err)
	}
	defer rows.Close()

	var ms []models.YearEndClosing
	for rows.Next() {
		m, err := scanClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closing row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading closing rows: %w", err)
	}
	return mapping.ToDomainYearEndClosingSlice(ms), nil
}

// IsYearAudited reports whether an audited closing exists for (verein, year).
func (r *PgxClosingRepository) IsYearAudited(ctx context.Context, vereinID string, year int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM year_end_closings
			WHERE verein_id = $1 AND year = $2 AND audited = TRUE
		);
	`
	var audited bool
	if err := r.pool.QueryRow(ctx, query, vereinID, year).Scan(&audited); err != nil {
		return false, fmt.Errorf("failed to check audited closing for year %d: %w", year, err)
	}
	return audited, nil
}
