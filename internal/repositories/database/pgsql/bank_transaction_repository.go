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
	"github.com/drkbluescience/verein-finanz/internal/utils/pagination"
)

type PgxBankTransactionRepository struct {
	pool *pgxpool.Pool
}

// newPgxBankTransactionRepository creates a new repository for ingested
// statement rows.
func newPgxBankTransactionRepository(pool *pgxpool.Pool) portsrepo.BankTransactionRepositoryFacade {
	return &PgxBankTransactionRepository{pool: pool}
}

var _ portsrepo.BankTransactionRepositoryFacade = (*PgxBankTransactionRepository)(nil)

const bankTransactionColumns = `bank_transaction_id, verein_id, bank_account_id, booking_date, amount, currency_code, counterparty, purpose, reference, iban, batch_id, status, created_at, created_by, last_updated_at, last_updated_by`

func scanBankTransaction(row pgx.Row) (models.BankTransaction, error) {
	var m models.BankTransaction
	err := row.Scan(
		&m.BankTransactionID,
		&m.VereinID,
		&m.BankAccountID,
		&m.BookingDate,
		&m.Amount,
		&m.CurrencyCode,
		&m.Counterparty,
		&m.Purpose,
		&m.Reference,
		&m.IBAN,
		&m.BatchID,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveBankTransaction inserts a new bank transaction.
func (r *PgxBankTransactionRepository) SaveBankTransaction(ctx context.Context, txn domain.BankTransaction) error {
	m := mapping.ToModelBankTransaction(txn)
	query := `
		INSERT INTO bank_transactions (` + bankTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.pool.Exec(ctx, query,
		m.BankTransactionID, m.VereinID, m.BankAccountID, m.BookingDate, m.Amount,
		m.CurrencyCode, m.Counterparty, m.Purpose, m.Reference, m.IBAN, m.BatchID, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: bank transaction %s already exists", apperrors.ErrDuplicate, m.BankTransactionID)
		}
		return fmt.Errorf("failed to save bank transaction %s: %w", m.BankTransactionID, err)
	}
	return nil
}

// FindBankTransactionByID retrieves a bank transaction by its ID.
func (r *PgxBankTransactionRepository) FindBankTransactionByID(ctx context.Context, bankTransactionID string) (*domain.BankTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions WHERE bank_transaction_id = $1;`
	m, err := scanBankTransaction(r.pool.QueryRow(ctx, query, bankTransactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bank transaction by ID %s: %w", bankTransactionID, err)
	}
	d := mapping.ToDomainBankTransaction(m)
	return &d, nil
}

// ExistsDuplicate reports whether a transaction with the same key fields was
// already imported for the account.
func (r *PgxBankTransactionRepository) ExistsDuplicate(ctx context.Context, vereinID string, bankAccountID string, bookingDate time.Time, amount decimal.Decimal, reference string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bank_transactions
			WHERE verein_id = $1 AND bank_account_id = $2
			  AND booking_date = $3 AND amount = $4 AND reference = $5
		);
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, vereinID, bankAccountID, bookingDate, amount, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check duplicate transaction: %w", err)
	}
	return exists, nil
}

// ListUnmatched retrieves a paginated list of unmatched transactions, newest
// booking date first, using token-based pagination.
func (r *PgxBankTransactionRepository) ListUnmatched(ctx context.Context, vereinID string, limit int, nextToken *string) ([]domain.BankTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to know whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE verein_id = $1 AND status = 'UNMATCHED'
	`
	orderByClause := `ORDER BY booking_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastBookingDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query := baseQuery + ` AND (booking_date, created_at) < ($2, $3) ` + orderByClause + ` LIMIT $4;`
		rows, err = r.pool.Query(ctx, query, vereinID, lastBookingDate, lastCreatedAt, fetchLimit)
	} else {
		query := baseQuery + ` ` + orderByClause + ` LIMIT $2;`
		rows, err = r.pool.Query(ctx, query, vereinID, fetchLimit)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query unmatched transactions for verein %s: %w", vereinID, err)
	}
	defer rows.Close()

	ms := make([]models.BankTransaction, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanBankTransaction(rows)
		if scanErr != nil {
			return nil, nil, fmt.Errorf("failed to scan bank transaction row: %w", scanErr)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed reading bank transaction rows: %w", err)
	}

	var nextTokenVal *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		token := pagination.EncodeToken(last.BookingDate, last.CreatedAt)
		nextTokenVal = &token
	}
	return mapping.ToDomainBankTransactionSlice(ms), nextTokenVal, nil
}

// UpdateBankTransactionStatus updates the matching state of a transaction.
func (r *PgxBankTransactionRepository) UpdateBankTransactionStatus(ctx context.Context, bankTransactionID string, status domain.BankTransactionStatus, userID string, now time.Time) error {
	query := `
		UPDATE bank_transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE bank_transaction_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, bankTransactionID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update bank transaction %s status: %w", bankTransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
