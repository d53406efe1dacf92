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

type PgxChartAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxChartAccountRepository creates a read-only repository for the chart
// of accounts.
func newPgxChartAccountRepository(pool *pgxpool.Pool) portsrepo.ChartAccountReader {
	return &PgxChartAccountRepository{pool: pool}
}

var _ portsrepo.ChartAccountReader = (*PgxChartAccountRepository)(nil)

// FindChartAccount retrieves one chart-of-accounts entry by number.
func (r *PgxChartAccountRepository) FindChartAccount(ctx context.Context, accountNo string) (*domain.ChartAccount, error) {
	query := `SELECT account_no, description, transit FROM chart_accounts WHERE account_no = $1;`
	var m models.ChartAccount
	err := r.pool.QueryRow(ctx, query, accountNo).Scan(&m.AccountNo, &m.Description, &m.Transit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find chart account %s: %w", accountNo, err)
	}
	d := mapping.ToDomainChartAccount(m)
	return &d, nil
}

// FindChartAccounts retrieves multiple chart entries keyed by account number.
func (r *PgxChartAccountRepository) FindChartAccounts(ctx context.Context, accountNos []string) (map[string]domain.ChartAccount, error) {
	result := make(map[string]domain.ChartAccount, len(accountNos))
	if len(accountNos) == 0 {
		return result, nil
	}
	query := `SELECT account_no, description, transit FROM chart_accounts WHERE account_no = ANY($1);`
	rows, err := r.pool.Query(ctx, query, accountNos)
	if err != nil {
		return nil, fmt.Errorf("failed to query chart accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.ChartAccount
		if err := rows.Scan(&m.AccountNo, &m.Description, &m.Transit); err != nil {
			return nil, fmt.Errorf("failed to scan chart account row: %w", err)
		}
		result[m.AccountNo] = mapping.ToDomainChartAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading chart account rows: %w", err)
	}
	return result, nil
}
