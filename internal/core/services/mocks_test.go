package services_test

import (
	"context"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// stubTxManager satisfies the transaction-manager part of repository facades.
// Services never drive transactions themselves, so the methods are inert.
type stubTxManager struct{}

func (stubTxManager) Begin(ctx context.Context) (pgx.Tx, error)     { return nil, nil }
func (stubTxManager) Commit(ctx context.Context, tx pgx.Tx) error   { return nil }
func (stubTxManager) Rollback(ctx context.Context, tx pgx.Tx) error { return nil }

// MockAllocationService is a mock type for the AllocationSvcFacade interface
type MockAllocationService struct {
	mock.Mock
}

func (m *MockAllocationService) Allocate(ctx context.Context, payment domain.Payment, explicit []dto.ExplicitAllocation, userID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, payment, explicit, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockAllocationService) ReverseAllocations(ctx context.Context, paymentID string, userID string) error {
	args := m.Called(ctx, paymentID, userID)
	return args.Error(0)
}

func (m *MockAllocationService) GetMemberFinanceSummary(ctx context.Context, vereinID string, memberID string) (*dto.MemberFinanceSummaryResponse, error) {
	args := m.Called(ctx, vereinID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MemberFinanceSummaryResponse), args.Error(1)
}

// MockClaimRepository is a mock type for the ClaimRepositoryFacade interface
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindClaimsByIDs(ctx context.Context, claimIDs []string) (map[string]domain.Claim, error) {
	args := m.Called(ctx, claimIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindClaimByNumber(ctx context.Context, vereinID string, claimNumber string) (*domain.Claim, error) {
	args := m.Called(ctx, vereinID, claimNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindOpenClaimsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Claim, error) {
	args := m.Called(ctx, vereinID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindOpenClaimsByVerein(ctx context.Context, vereinID string) ([]domain.Claim, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindOverdueClaims(ctx context.Context, vereinID string, asOf time.Time) ([]domain.Claim, error) {
	args := m.Called(ctx, vereinID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) FindClaimsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Claim, error) {
	args := m.Called(ctx, vereinID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Claim), args.Error(1)
}

func (m *MockClaimRepository) SumOpenAmountByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error) {
	args := m.Called(ctx, vereinID, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockClaimRepository) SaveClaim(ctx context.Context, claim domain.Claim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

// MockPaymentRepository is a mock type for the PaymentRepositoryFacade interface
type MockPaymentRepository struct {
	mock.Mock
	stubTxManager
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByBankTransactionID(ctx context.Context, bankTransactionID string) (*domain.Payment, error) {
	args := m.Called(ctx, bankTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByMember(ctx context.Context, vereinID string, memberID string) ([]domain.Payment, error) {
	args := m.Called(ctx, vereinID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumPaymentsByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error) {
	args := m.Called(ctx, vereinID, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentStatus(ctx context.Context, paymentID string, status domain.PaymentStatus, userID string, now time.Time) error {
	args := m.Called(ctx, paymentID, status, userID, now)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindAllocationsByPaymentID(ctx context.Context, paymentID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockPaymentRepository) FindAllocationsByClaimID(ctx context.Context, claimID string) ([]domain.Allocation, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}

func (m *MockPaymentRepository) SumAllocatedByClaimIDs(ctx context.Context, claimIDs []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, claimIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SaveAllocations(ctx context.Context, allocations []domain.Allocation, closures []domain.ClaimClosure, credit *domain.CreditBalance) error {
	args := m.Called(ctx, allocations, closures, credit)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteAllocationsByPaymentID(ctx context.Context, paymentID string, reopenClaimIDs []string, userID string, now time.Time) error {
	args := m.Called(ctx, paymentID, reopenClaimIDs, userID, now)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumCreditByMember(ctx context.Context, vereinID string, memberID string) (decimal.Decimal, error) {
	args := m.Called(ctx, vereinID, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockBankTransactionRepository is a mock type for the BankTransactionRepositoryFacade interface
type MockBankTransactionRepository struct {
	mock.Mock
}

func (m *MockBankTransactionRepository) FindBankTransactionByID(ctx context.Context, bankTransactionID string) (*domain.BankTransaction, error) {
	args := m.Called(ctx, bankTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankTransaction), args.Error(1)
}

func (m *MockBankTransactionRepository) ExistsDuplicate(ctx context.Context, vereinID string, bankAccountID string, bookingDate time.Time, amount decimal.Decimal, reference string) (bool, error) {
	args := m.Called(ctx, vereinID, bankAccountID, bookingDate, amount, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockBankTransactionRepository) ListUnmatched(ctx context.Context, vereinID string, limit int, nextToken *string) ([]domain.BankTransaction, *string, error) {
	args := m.Called(ctx, vereinID, limit, nextToken)
	var txns []domain.BankTransaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.BankTransaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockBankTransactionRepository) SaveBankTransaction(ctx context.Context, txn domain.BankTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockBankTransactionRepository) UpdateBankTransactionStatus(ctx context.Context, bankTransactionID string, status domain.BankTransactionStatus, userID string, now time.Time) error {
	args := m.Called(ctx, bankTransactionID, status, userID, now)
	return args.Error(0)
}

// MockMemberRepository is a mock type for the MemberRepositoryFacade interface
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindActiveMembersByVerein(ctx context.Context, vereinID string) ([]domain.Member, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindMemberByIBAN(ctx context.Context, vereinID string, iban string) (*domain.Member, error) {
	args := m.Called(ctx, vereinID, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

// MockCashBookRepository is a mock type for the CashBookRepositoryFacade interface
type MockCashBookRepository struct {
	mock.Mock
	stubTxManager
}

func (m *MockCashBookRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.CashBookEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashBookEntry), args.Error(1)
}

func (m *MockCashBookRepository) FindEntryByReceiptNo(ctx context.Context, vereinID string, year int, receiptNo int) (*domain.CashBookEntry, error) {
	args := m.Called(ctx, vereinID, year, receiptNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashBookEntry), args.Error(1)
}

func (m *MockCashBookRepository) ListEntriesByYear(ctx context.Context, vereinID string, year int) ([]domain.CashBookEntry, error) {
	args := m.Called(ctx, vereinID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashBookEntry), args.Error(1)
}

func (m *MockCashBookRepository) ListEntriesByDateRange(ctx context.Context, vereinID string, from, to time.Time) ([]domain.CashBookEntry, error) {
	args := m.Called(ctx, vereinID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashBookEntry), args.Error(1)
}

func (m *MockCashBookRepository) ListEntriesByAccountNo(ctx context.Context, vereinID string, accountNo string, year *int) ([]domain.CashBookEntry, error) {
	args := m.Called(ctx, vereinID, accountNo, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashBookEntry), args.Error(1)
}

func (m *MockCashBookRepository) SumColumns(ctx context.Context, vereinID string, year int) (domain.CashBookTotals, error) {
	args := m.Called(ctx, vereinID, year)
	return args.Get(0).(domain.CashBookTotals), args.Error(1)
}

func (m *MockCashBookRepository) SumColumnsThrough(ctx context.Context, vereinID string, through time.Time) (domain.CashBookTotals, error) {
	args := m.Called(ctx, vereinID, through)
	return args.Get(0).(domain.CashBookTotals), args.Error(1)
}

func (m *MockCashBookRepository) SummarizeByAccount(ctx context.Context, vereinID string, year int) ([]domain.AccountSummary, error) {
	args := m.Called(ctx, vereinID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountSummary), args.Error(1)
}

func (m *MockCashBookRepository) SaveEntryWithNextReceiptNo(ctx context.Context, entry domain.CashBookEntry) (*domain.CashBookEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashBookEntry), args.Error(1)
}

func (m *MockCashBookRepository) SoftDeleteEntry(ctx context.Context, entryID string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, userID, now)
	return args.Error(0)
}

// MockChartAccountRepository is a mock type for the ChartAccountReader interface
type MockChartAccountRepository struct {
	mock.Mock
}

func (m *MockChartAccountRepository) FindChartAccount(ctx context.Context, accountNo string) (*domain.ChartAccount, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChartAccount), args.Error(1)
}

func (m *MockChartAccountRepository) FindChartAccounts(ctx context.Context, accountNos []string) (map[string]domain.ChartAccount, error) {
	args := m.Called(ctx, accountNos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ChartAccount), args.Error(1)
}

// MockTransitRepository is a mock type for the TransitRepositoryFacade interface
type MockTransitRepository struct {
	mock.Mock
}

func (m *MockTransitRepository) FindTransitItemByID(ctx context.Context, transitItemID string) (*domain.TransitItem, error) {
	args := m.Called(ctx, transitItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitItem), args.Error(1)
}

func (m *MockTransitRepository) ListTransitItemsByVerein(ctx context.Context, vereinID string) ([]domain.TransitItem, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransitItem), args.Error(1)
}

func (m *MockTransitRepository) ListOpenTransitItems(ctx context.Context, vereinID string) ([]domain.TransitItem, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransitItem), args.Error(1)
}

func (m *MockTransitRepository) SumOpenTransitAmount(ctx context.Context, vereinID string) (decimal.Decimal, error) {
	args := m.Called(ctx, vereinID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransitRepository) SummarizeByRecipient(ctx context.Context, vereinID string) ([]domain.RecipientSummary, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecipientSummary), args.Error(1)
}

func (m *MockTransitRepository) SaveTransitItem(ctx context.Context, item domain.TransitItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockTransitRepository) UpdateTransitItem(ctx context.Context, item domain.TransitItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockClosingRepository is a mock type for the ClosingRepositoryFacade interface
type MockClosingRepository struct {
	mock.Mock
}

func (m *MockClosingRepository) FindClosingByID(ctx context.Context, closingID string) (*domain.YearEndClosing, error) {
	args := m.Called(ctx, closingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.YearEndClosing), args.Error(1)
}

func (m *MockClosingRepository) FindClosingByYear(ctx context.Context, vereinID string, year int) (*domain.YearEndClosing, error) {
	args := m.Called(ctx, vereinID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.YearEndClosing), args.Error(1)
}

func (m *MockClosingRepository) FindLatestClosing(ctx context.Context, vereinID string) (*domain.YearEndClosing, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.YearEndClosing), args.Error(1)
}

func (m *MockClosingRepository) ListClosingsByVerein(ctx context.Context, vereinID string) ([]domain.YearEndClosing, error) {
	args := m.Called(ctx, vereinID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.YearEndClosing), args.Error(1)
}

func (m *MockClosingRepository) IsYearAudited(ctx context.Context, vereinID string, year int) (bool, error) {
	args := m.Called(ctx, vereinID, year)
	return args.Bool(0), args.Error(1)
}

func (m *MockClosingRepository) SaveClosing(ctx context.Context, closing domain.YearEndClosing) error {
	args := m.Called(ctx, closing)
	return args.Error(0)
}

func (m *MockClosingRepository) MarkClosingAudited(ctx context.Context, closingID string, auditorName string, auditedAt time.Time, userID string) error {
	args := m.Called(ctx, closingID, auditorName, auditedAt, userID)
	return args.Error(0)
}
