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

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment, allocation
// and credit balance data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, verein_id, member_id, amount, currency_code, payment_date, method, bank_account_id, bank_transaction_id, claim_id, reference, note, status, created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.VereinID,
		&m.MemberID,
		&m.Amount,
		&m.CurrencyCode,
		&m.PaymentDate,
		&m.Method,
		&m.BankAccountID,
		&m.BankTransactionID,
		&m.ClaimID,
		&m.Reference,
		&m.Note,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SavePayment inserts a new payment.
func (r *PgxPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	m := mapping.ToModelPayment(payment)
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.PaymentID, m.VereinID, m.MemberID, m.Amount, m.CurrencyCode,
		m.PaymentDate, m.Method, m.BankAccountID, m.BankTransactionID, m.ClaimID,
		m.Reference, m.Note, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: payment %s already exists", apperrors.ErrDuplicate, m.PaymentID)
		}
		return fmt.Errorf("failed to save payment %s: %w", m.PaymentID, err)
	}
	return nil
}

// UpdatePaymentStatus changes a payment's lifecycle status.
func (r *PgxPaymentRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, userID string, now time.Time) error {
	query := `
		UPDATE payments
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE payment_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, paymentID, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("failed to update payment %s status: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindPaymentByID retrieves a payment by its ID.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	m, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by ID %s: %w", paymentID, err)
	}
	d := mapping.ToDomainPayment(m)
	return &d, nil
}

// FindPaymentByBankTransactionID retrieves the payment created from a bank
// transaction, if any.
func (r *PgxPaymentRepository) FindPaymentByBankTransactionID(ctx context.Context, bankTransactionID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE bank_transaction_id = $1;`
	m, err := scanPayment(r.Pool.QueryRow(ctx, query, bankTransactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment by bank transaction %s: %w", bankTransactionID, err)
	}
	d := mapping.ToDomainPayment(m)
	return &d, nil
}

// FindPaymentsByMember retrieves all payments of a member, newest first.
func (r *PgxPaymentRepository) FindPaymentsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE verein_id = $1 AND member_id = $2
		ORDER BY payment_date DESC, created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, vereinID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for member %s: %w", memberID, err)
	}
	defer rows.Close()

	var ms []models.Payment
	for rows.Next() {
		m, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading payment rows: %w", err)
	}
	return mapping.ToDomainPaymentSlice(ms), nil
}

// SumPaymentsByMember returns the total of a member's active payments.
func (r *PgxPaymentRepository) SumPaymentsByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE verein_id = $1 AND member_id = $2 AND status = 'AKTIV';
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, vereinID, memberID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments for member %s: %w", memberID, err)
	}
	return sum, nil
}

const allocationColumns = `allocation_id, claim_id, payment_id, amount, created_at, created_by, last_updated_at, last_updated_by`

func scanAllocation(row pgx.Row) (models.Allocation, error) {
	var m models.Allocation
	err := row.Scan(
		&m.AllocationID,
		&m.ClaimID,
		&m.PaymentID,
		&m.Amount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxPaymentRepository) queryAllocations(ctx context.Context, query string, arg any) ([]domain.Allocation, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var ms []models.Allocation
	for rows.Next() {
		m, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading allocation rows: %w", err)
	}
	return mapping.ToDomainAllocationSlice(ms), nil
}

// FindAllocationsByPaymentID retrieves the allocation rows of one payment.
func (r *PgxPaymentRepository) FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE payment_id = $1 ORDER BY created_at ASC;`
	return r.queryAllocations(ctx, query, paymentID)
}

// FindAllocationsByClaimID retrieves the allocation rows against one claim.
func (r *PgxPaymentRepository) FindAllocationsByClaimID(ctx context.Context, claimID string) ([]domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE claim_id = $1 ORDER BY created_at ASC;`
	return r.queryAllocations(ctx, query, claimID)
}

// SumAllocatedByClaimIDs returns the allocated sum per claim ID.
func (r *PgxPaymentRepository) SumAllocatedByClaimIDs(ctx context.Context, claimIDs []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(claimIDs))
	if len(claimIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT claim_id, COALESCE(SUM(amount), 0)
		FROM allocations
		WHERE claim_id = ANY($1)
		GROUP BY claim_id;
	`
	rows, err := r.Pool.Query(ctx, query, claimIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations by claim: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var claimID string
		var sum decimal.Decimal
		if err := rows.Scan(&claimID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan allocation sum row: %w", err)
		}
		result[claimID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading allocation sum rows: %w", err)
	}
	return result, nil
}

// SaveAllocations persists allocation rows, closes fully covered claims and
// records an optional credit balance within one database transaction.
func (r *PgxPaymentRepository) SaveAllocations(ctx context.Context, allocations []domain.Allocation, closures []domain.ClaimClosure, credit *domain.CreditBalance) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	insertAllocation := `
		INSERT INTO allocations (` + allocationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, a := range allocations {
		m := mapping.ToModelAllocation(a)
		if _, err := tx.Exec(ctx, insertAllocation,
			m.AllocationID, m.ClaimID, m.PaymentID, m.Amount,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		); err != nil {
			return fmt.Errorf("failed to insert allocation %s: %w", m.AllocationID, err)
		}
	}

	closeClaim := `
		UPDATE claims
		SET status = 'BEZAHLT', paid_at = $2, last_updated_at = NOW()
		WHERE claim_id = $1 AND status = 'OFFEN';
	`
	for _, c := range closures {
		tag, err := tx.Exec(ctx, closeClaim, c.ClaimID, c.PaidAt)
		if err != nil {
			return fmt.Errorf("failed to close claim %s: %w", c.ClaimID, err)
		}
		if tag.RowsAffected() == 0 {
			// Someone closed it concurrently; the allocation would overpay.
			return fmt.Errorf("%w: claim %s no longer open", apperrors.ErrConflict, c.ClaimID)
		}
	}

	if credit != nil {
		m := mapping.ToModelCreditBalance(*credit)
		insertCredit := `
			INSERT INTO credit_balances (credit_balance_id, verein_id, member_id, payment_id, amount, note, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`
		if _, err := tx.Exec(ctx, insertCredit,
			m.CreditBalanceID, m.VereinID, m.MemberID, m.PaymentID, m.Amount, m.Note,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		); err != nil {
			return fmt.Errorf("failed to insert credit balance %s: %w", m.CreditBalanceID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteAllocationsByPaymentID removes a payment's allocations and reopens
// the given claims within one database transaction.
func (r *PgxPaymentRepository) DeleteAllocationsByPaymentID(ctx context.Context, paymentID string, reopenClaimIDs []string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM allocations WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete allocations for payment %s: %w", paymentID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM credit_balances WHERE payment_id = $1;`, paymentID); err != nil {
		return fmt.Errorf("failed to delete credit balances for payment %s: %w", paymentID, err)
	}

	if len(reopenClaimIDs) > 0 {
		reopen := `
			UPDATE claims
			SET status = 'OFFEN', paid_at = NULL, last_updated_at = $2, last_updated_by = $3
			WHERE claim_id = ANY($1) AND status = 'BEZAHLT';
		`
		if _, err := tx.Exec(ctx, reopen, reopenClaimIDs, now, userID); err != nil {
			return fmt.Errorf("failed to reopen claims for payment %s: %w", paymentID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// SumCreditByMember returns a member's accumulated credit balance.
func (r *PgxPaymentRepository) SumCreditByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_balances
		WHERE verein_id = $1 AND member_id = $2;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, vereinID, memberID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum credit for member %s: %w", memberID, err)
	}
	return sum, nil
}
