package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/drkbluescience/verein-finanz/internal/models"
	"github.com/drkbluescience/verein-finanz/internal/utils/mapping"
)

type PgxCashBookRepository struct {
	BaseRepository
}

// newPgxCashBookRepository creates a new repository for cash-book entries.
func newPgxCashBookRepository(pool *pgxpool.Pool) portsrepo.CashBookRepositoryFacade {
	return &PgxCashBookRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.CashBookRepositoryFacade = (*PgxCashBookRepository)(nil)

const cashBookColumns = `entry_id, verein_id, receipt_no, entry_date, account_no, purpose, cash_income, cash_expense, bank_income, bank_expense, year, member_id, payment_id, bank_transaction_id, payment_method, note, created_at, created_by, last_updated_at, last_updated_by`

func scanCashBookEntry(row pgx.Row) (models.CashBookEntry, error) {
	var m models.CashBookEntry
	err := row.Scan(
		&m.EntryID,
		&m.VereinID,
		&m.ReceiptNo,
		&m.EntryDate,
		&m.AccountNo,
		&m.Purpose,
		&m.CashIncome,
		&m.CashExpense,
		&m.BankIncome,
		&m.BankExpense,
		&m.Year,
		&m.MemberID,
		&m.PaymentID,
		&m.BankTransactionID,
		&m.PaymentMethod,
		&m.Note,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectCashBookEntries(rows pgx.Rows) ([]models.CashBookEntry, error) {
	defer rows.Close()
	var ms []models.CashBookEntry
	for rows.Next() {
		m, err := scanCashBookEntry(rows)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

// SaveEntryWithNextReceiptNo assigns the next receipt number for
// (verein, year) and inserts the entry in one transaction. An advisory
// transaction lock on the (verein, year) pair serializes concurrent posts
// across all service instances, which keeps the sequence gap-free.
func (r *PgxCashBookRepository) SaveEntryWithNextReceiptNo(ctx context.Context, entry domain.CashBookEntry) (*domain.CashBookEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	lockKey := fmt.Sprintf("cashbook:%s:%d", entry.VereinID, entry.Year)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, lockKey); err != nil {
		return nil, fmt.Errorf("failed to acquire receipt number lock: %w", err)
	}

	var nextReceiptNo int
	nextQuery := `
		SELECT COALESCE(MAX(receipt_no), 0) + 1
		FROM cash_book_entries
		WHERE verein_id = $1 AND year = $2;
	`
	if err := tx.QueryRow(ctx, nextQuery, entry.VereinID, entry.Year).Scan(&nextReceiptNo); err != nil {
		return nil, fmt.Errorf("failed to compute next receipt number: %w", err)
	}
	entry.ReceiptNo = nextReceiptNo

	m := mapping.ToModelCashBookEntry(entry)
	insert := `
		INSERT INTO cash_book_entries (` + cashBookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	if _, err := tx.Exec(ctx, insert,
		m.EntryID, m.VereinID, m.ReceiptNo, m.EntryDate, m.AccountNo, m.Purpose,
		m.CashIncome, m.CashExpense, m.BankIncome, m.BankExpense, m.Year,
		m.MemberID, m.PaymentID, m.BankTransactionID, m.PaymentMethod, m.Note,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	); err != nil {
		return nil, fmt.Errorf("failed to insert cash-book entry %s: %w", m.EntryID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SoftDeleteEntry marks an entry as deleted. The row keeps its receipt
// number so the per-year sequence stays traceable for auditors.
func (r *PgxCashBookRepository) SoftDeleteEntry(ctx context.Context, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE cash_book_entries
		SET deleted = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND deleted = FALSE;
	`
	tag, err := r.Pool.Exec(ctx, query, entryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cash-book entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindEntryByID retrieves an entry by its ID.
func (r *PgxCashBookRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.CashBookEntry, error) {
	query := `SELECT ` + cashBookColumns + ` FROM cash_book_entries WHERE entry_id = $1 AND deleted = FALSE;`
	m, err := scanCashBookEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cash-book entry by ID %s: %w", entryID, err)
	}
	d := mapping.ToDomainCashBookEntry(m)
	return &d, nil
}

// FindEntryByReceiptNo retrieves the entry with the given receipt number.
func (r *PgxCashBookRepository) FindEntryByReceiptNo(ctx context.Context, vereinID string, year int, receiptNo int) (*domain.CashBookEntry, error) {
	query := `
		SELECT ` + cashBookColumns + `
		FROM cash_book_entries
		WHERE verein_id = $1 AND year = $2 AND receipt_no = $3 AND deleted = FALSE;
	`
	m, err := scanCashBookEntry(r.Pool.QueryRow(ctx, query, vereinID, year, receiptNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cash-book entry %d/%d: %w", year, receiptNo, err)
	}
	d := mapping.ToDomainCashBookEntry(m)
	return &d, nil
}

// ListEntriesByYear retrieves a year's entries in receipt-number order.
func (r *PgxCashBookRepository) ListEntriesByYear(ctx context.Context, vereinID string, year int) ([]domain.CashBookEntry, error) {
	query := `
		SELECT ` + cashBookColumns + `
		FROM cash_book_entries
		WHERE verein_id = $1 AND year = $2 AND deleted = FALSE
		ORDER BY receipt_no ASC;
	`
	rows, err := r.Pool.Query(ctx, query, vereinID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash-book entries for year %d: %w", year, err)
	}
	ms, err := collectCashBookEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cash-book entries for year %d: %w", year, err)
	}
	return mapping.ToDomainCashBookEntrySlice(ms), nil
}

// ListEntriesByDateRange retrieves entries between from and to inclusive.
func (r *PgxCashBookRepository) ListEntriesByDateRange(ctx context.Context, vereinID string, from, to time.Time) ([]domain.CashBookEntry, error) {
	query := `
		SELECT ` + cashBookColumns + `
		FROM cash_book_entries
		WHERE verein_id = $1 AND entry_date >= $2 AND entry_date <= $3 AND deleted = FALSE
		ORDER BY entry_date ASC, receipt_no ASC;
	`
	rows, err := r.Pool.Query(ctx, query, vereinID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash-book entries by date range: %w", err)
	}
	ms, err := collectCashBookEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cash-book entries by date range: %w", err)
	}
	return mapping.ToDomainCashBookEntrySlice(ms), nil
}

// ListEntriesByAccountNo retrieves entries posted against one account
// number, optionally restricted to a year.
func (r *PgxCashBookRepository) ListEntriesByAccountNo(ctx context.Context, vereinID string, accountNo string, year *int) ([]domain.CashBookEntry, error) {
	query := `
		SELECT ` + cashBookColumns + `
		FROM cash_book_entries
		WHERE verein_id = $1 AND account_no = $2 AND deleted = FALSE
		  AND ($3::int IS NULL OR year = $3)
		ORDER BY entry_date ASC, receipt_no ASC;
	`
	rows, err := r.Pool.Query(ctx, query, vereinID, accountNo, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash-book entries for account %s: %w", accountNo, err)
	}
	ms, err := collectCashBookEntries(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cash-book entries for account %s: %w", accountNo, err)
	}
	return mapping.ToDomainCashBookEntrySlice(ms), nil
}

// SumColumns aggregates the four money columns for (verein, year).
func (r *PgxCashBookRepository) SumColumns(ctx context.Context, vereinID string, year int) (domain.CashBookTotals, error) {
	query := `
		SELECT COALESCE(SUM(cash_income), 0), COALESCE(SUM(cash_expense), 0),
		       COALESCE(SUM(bank_income), 0), COALESCE(SUM(bank_expense), 0)
		FROM cash_book_entries
		WHERE verein_id = $1 AND year = $2 AND deleted = FALSE;
	`
	var t domain.CashBookTotals
	if err := r.Pool.QueryRow(ctx, query, vereinID, year).Scan(&t.CashIncome, &t.CashExpense, &t.BankIncome, &t.BankExpense); err != nil {
		return domain.CashBookTotals{}, fmt.Errorf("failed to sum cash-book columns for year %d: %w", year, err)
	}
	return t, nil
}

// SumColumnsThrough aggregates the four money columns over all postings up
// to and including the given date.
func (r *PgxCashBookRepository) SumColumnsThrough(ctx context.Context, vereinID string, through time.Time) (domain.CashBookTotals, error) {
	query := `
		SELECT COALESCE(SUM(cash_income), 0), COALESCE(SUM(cash_expense), 0),
		       COALESCE(SUM(bank_income), 0), COALESCE(SUM(bank_expense), 0)
		FROM cash_book_entries
		WHERE verein_id = $1 AND entry_date <= $2 AND deleted = FALSE;
	`
	var t domain.CashBookTotals
	if err := r.Pool.QueryRow(ctx, query, vereinID, through).Scan(&t.CashIncome, &t.CashExpense, &t.BankIncome, &t.BankExpense); err != nil {
		return domain.CashBookTotals{}, fmt.Errorf("failed to sum cash-book columns through %s: %w", through.Format("2006-01-02"), err)
	}
	return t, nil
}

// SummarizeByAccount aggregates (verein, year) postings per account number,
// joining the chart of accounts for descriptions.
func (r *PgxCashBookRepository) SummarizeByAccount(ctx context.Context, vereinID string, year int) ([]domain.AccountSummary, error) {
	query := `
		SELECT e.account_no,
		       COALESCE(MAX(c.description), ''),
		       COALESCE(SUM(e.cash_income), 0) + COALESCE(SUM(e.bank_income), 0),
		       COALESCE(SUM(e.cash_expense), 0) + COALESCE(SUM(e.bank_expense), 0),
		       COUNT(*)
		FROM cash_book_entries e
		LEFT JOIN chart_accounts c ON c.account_no = e.account_no
		WHERE e.verein_id = $1 AND e.year = $2 AND e.deleted = FALSE
		GROUP BY e.account_no
		ORDER BY e.account_no ASC;
	`
	rows, err := r.Pool.Query(ctx, query, vereinID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize cash-book by account for year %d: %w", year, err)
	}
	defer rows.Close()

	var summaries []domain.AccountSummary
	for rows.Next() {
		var s domain.AccountSummary
		if err := rows.Scan(&s.AccountNo, &s.Description, &s.Income, &s.Expense, &s.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan account summary row: %w", err)
		}
		s.Saldo = s.Income.Sub(s.Expense)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading account summary rows: %w", err)
	}
	return summaries, nil
}
