package pgsql

import (
	"context"
	"errors"
	"fmt"

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

type PgxTransitRepository struct {
	pool *pgxpool.Pool
}

// newPgxTransitRepository creates a new repository for pass-through items.
func newPgxTransitRepository(pool *pgxpool.Pool) portsrepo.TransitRepositoryFacade {
	return &PgxTransitRepository{pool: pool}
}

var _ portsrepo.TransitRepositoryFacade = (*PgxTransitRepository)(nil)

const transitColumns = `transit_item_id, verein_id, account_no, description, incoming_date, incoming_amount, outgoing_date, outgoing_amount, recipient, reference, status, incoming_entry_id, outgoing_entry_id, note, created_at, created_by, last_updated_at, last_updated_by`

func scanTransitItem(row pgx.Row) (models.TransitItem, error) {
	var m models.TransitItem
	err := row.Scan(
		&m.TransitItemID,
		&m.VereinID,
		&m.AccountNo,
		&m.Description,
		&m.IncomingDate,
		&m.IncomingAmount,
		&m.OutgoingDate,
		&m.OutgoingAmount,
		&m.Recipient,
		&m.Reference,
		&m.Status,
		&m.IncomingEntryID,
		&m.OutgoingEntryID,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxTransitRepository) queryTransitItems(ctx context.Context, query string, args ...any) ([]domain.TransitItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transit items: %w", err)
	}
	defer rows.Close()

	var ms []models.TransitItem
	for rows.Next() {
		m, err := scanTransitItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transit item row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading transit item rows: %w", err)
	}
	return mapping.ToDomainTransitItemSlice(ms), nil
}

// SaveTransitItem inserts a new transit item.
func (r *PgxTransitRepository) SaveTransitItem(ctx context.Context, item domain.TransitItem) error {
	m := mapping.ToModelTransitItem(item)
	query := `
		INSERT INTO transit_items (` + transitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := r.pool.Exec(ctx, query,
		m.TransitItemID, m.VereinID, m.AccountNo, m.Description,
		m.IncomingDate, m.IncomingAmount, m.OutgoingDate, m.OutgoingAmount,
		m.Recipient, m.Reference, m.Status, m.IncomingEntryID, m.OutgoingEntryID, m.Note,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: transit item %s already exists", apperrors.ErrDuplicate, m.TransitItemID)
		}
		return fmt.Errorf("failed to save transit item %s: %w", m.TransitItemID, err)
	}
	return nil
}

// UpdateTransitItem updates outgoing amount, links and derived status.
func (r *PgxTransitRepository) UpdateTransitItem(ctx context.Context, item domain.TransitItem) error {
	m := mapping.ToModelTransitItem(item)
	query := `
		UPDATE transit_items
		SET outgoing_date = $2, outgoing_amount = $3, reference = $4, status = $5,
		    outgoing_entry_id = $6, note = $7, last_updated_at = $8, last_updated_by = $9
		WHERE transit_item_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query,
		m.TransitItemID, m.OutgoingDate, m.OutgoingAmount, m.Reference, m.Status,
		m.OutgoingEntryID, m.Note, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transit item %s: %w", m.TransitItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTransitItemByID retrieves a transit item by its ID.
func (r *PgxTransitRepository) FindTransitItemByID(ctx context.Context, transitItemID string) (*domain.TransitItem, error) {
	query := `SELECT ` + transitColumns + ` FROM transit_items WHERE transit_item_id = $1;`
	m, err := scanTransitItem(r.pool.QueryRow(ctx, query, transitItemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transit item by ID %s: %w", transitItemID, err)
	}
	d := mapping.ToDomainTransitItem(m)
	return &d, nil
}

// ListTransitItemsByVerein retrieves an association's transit items.
func (r *PgxTransitRepository) ListTransitItemsByVerein(ctx context.Context, vereinID string) ([]domain.TransitItem, error) {
	query := `
		SELECT ` + transitColumns + `
		FROM transit_items
		WHERE verein_id = $1
		ORDER BY incoming_date DESC, created_at DESC;
	`
	return r.queryTransitItems(ctx, query, vereinID)
}

// ListOpenTransitItems retrieves items not yet fully forwarded.
func (r *PgxTransitRepository) ListOpenTransitItems(ctx context.Context, vereinID string) ([]domain.TransitItem, error) {
	query := `
		SELECT ` + transitColumns + `
		FROM transit_items
		WHERE verein_id = $1 AND status IN ('OFFEN', 'TEILWEISE')
		ORDER BY incoming_date ASC, created_at ASC;
	`
	return r.queryTransitItems(ctx, query, vereinID)
}

// SumOpenTransitAmount returns the total outstanding pass-through amount.
func (r *PgxTransitRepository) SumOpenTransitAmount(ctx context.Context, vereinID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(incoming_amount - COALESCE(outgoing_amount, 0)), 0)
		FROM transit_items
		WHERE verein_id = $1 AND status IN ('OFFEN', 'TEILWEISE');
	`
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, vereinID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum open transit amount for verein %s: %w", vereinID, err)
	}
	return sum, nil
}

// SummarizeByRecipient aggregates transit items per recipient organization.
func (r *PgxTransitRepository) SummarizeByRecipient(ctx context.Context, vereinID string) ([]domain.RecipientSummary, error) {
	query := `
		SELECT recipient,
		       COALESCE(SUM(incoming_amount), 0),
		       COALESCE(SUM(COALESCE(outgoing_amount, 0)), 0),
		       COUNT(*)
		FROM transit_items
		WHERE verein_id = $1
		GROUP BY recipient
		ORDER BY recipient ASC;
	`
	rows, err := r.pool.Query(ctx, query, vereinID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize transit items by recipient: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RecipientSummary
	for rows.Next() {
		var s domain.RecipientSummary
		if err := rows.Scan(&s.Recipient, &s.TotalIncoming, &s.TotalOutgoing, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan recipient summary row: %w", err)
		}
		s.OpenAmount = s.TotalIncoming.Sub(s.TotalOutgoing)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading recipient summary rows: %w", err)
	}
	return summaries, nil
}
