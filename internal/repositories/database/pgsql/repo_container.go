package pgsql

import (
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	claimRepo := newPgxClaimRepository(dbPool)
	paymentRepo := newPgxPaymentRepository(dbPool)
	bankTransactionRepo := newPgxBankTransactionRepository(dbPool)
	cashBookRepo := newPgxCashBookRepository(dbPool)
	chartAccountRepo := newPgxChartAccountRepository(dbPool)
	transitRepo := newPgxTransitRepository(dbPool)
	closingRepo := newPgxClosingRepository(dbPool)
	memberRepo := newPgxMemberRepository(dbPool)

	return portsrepo.RepositoryProvider{
		ClaimRepo:           claimRepo,
		PaymentRepo:         paymentRepo,
		BankTransactionRepo: bankTransactionRepo,
		CashBookRepo:        cashBookRepo,
		ChartAccountRepo:    chartAccountRepo,
		TransitRepo:         transitRepo,
		ClosingRepo:         closingRepo,
		MemberRepo:          memberRepo,
	}
}
