package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/core/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ClosingServiceTestSuite struct {
	suite.Suite
	mockClosingRepo  *MockClosingRepository
	mockCashBookRepo *MockCashBookRepository
	service          *services.ClosingService
}

func (suite *ClosingServiceTestSuite) SetupTest() {
	suite.mockClosingRepo = new(MockClosingRepository)
	suite.mockCashBookRepo = new(MockCashBookRepository)
	suite.service = services.NewClosingService(suite.mockClosingRepo, suite.mockCashBookRepo)
}

func (suite *ClosingServiceTestSuite) latestClosing(year int) *domain.YearEndClosing {
	return &domain.YearEndClosing{
		ClosingID:   "closing-prev",
		VereinID:    "verein-1",
		Year:        year,
		CashOpening: dec("100.00"),
		CashClosing: dec("180.00"),
		BankOpening: dec("1000.00"),
		BankClosing: dec("1250.00"),
	}
}

func (suite *ClosingServiceTestSuite) TestCreateClosing_FirstYearUsesRequestOpenings() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockClosingRepo.On("SaveClosing", ctx, mock.MatchedBy(func(c domain.YearEndClosing) bool {
		return c.Year == 2023 && c.CashOpening.Equal(dec("50.00")) && c.BankOpening.Equal(dec("750.00"))
	})).Return(nil).Once()

	req := dto.CreateClosingRequest{
		Year:        2023,
		CashClosing: dec("120.00"),
		BankClosing: dec("900.00"),
		CashOpening: decPtr("50.00"),
		BankOpening: decPtr("750.00"),
	}
	resp, err := suite.service.CreateClosing(ctx, "verein-1", req, "user-1")

	suite.Require().NoError(err)
	suite.True(resp.CashOpening.Equal(dec("50.00")))
	suite.True(resp.TotalAssets.Equal(dec("1020.00")))
	suite.mockClosingRepo.AssertExpectations(suite.T())
}

func (suite *ClosingServiceTestSuite) TestCreateClosing_FirstYearDefaultsOpeningsToZero() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockClosingRepo.On("SaveClosing", ctx, mock.MatchedBy(func(c domain.YearEndClosing) bool {
		return c.CashOpening.IsZero() && c.BankOpening.IsZero()
	})).Return(nil).Once()

	req := dto.CreateClosingRequest{
		Year:        2023,
		CashClosing: dec("120.00"),
		BankClosing: dec("900.00"),
	}
	_, err := suite.service.CreateClosing(ctx, "verein-1", req, "user-1")

	suite.Require().NoError(err)
}

func (suite *ClosingServiceTestSuite) TestCreateClosing_CarriesPriorClosingBalances() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(suite.latestClosing(2023), nil).Once()
	suite.mockClosingRepo.On("SaveClosing", ctx, mock.MatchedBy(func(c domain.YearEndClosing) bool {
		return c.Year == 2024 && c.CashOpening.Equal(dec("180.00")) && c.BankOpening.Equal(dec("1250.00"))
	})).Return(nil).Once()

	req := dto.CreateClosingRequest{
		Year:        2024,
		CashClosing: dec("210.00"),
		BankClosing: dec("1400.00"),
	}
	resp, err := suite.service.CreateClosing(ctx, "verein-1", req, "user-1")

	suite.Require().NoError(err)
	suite.True(resp.CashOpening.Equal(dec("180.00")))
	suite.True(resp.BankOpening.Equal(dec("1250.00")))
}

func (suite *ClosingServiceTestSuite) TestCreateClosing_OutOfSequenceRejected() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(suite.latestClosing(2023), nil).Once()

	req := dto.CreateClosingRequest{
		Year:        2025, // skips 2024
		CashClosing: dec("210.00"),
		BankClosing: dec("1400.00"),
	}
	_, err := suite.service.CreateClosing(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSequenceViolation)
	suite.mockClosingRepo.AssertNotCalled(suite.T(), "SaveClosing", mock.Anything, mock.Anything)
}

func (suite *ClosingServiceTestSuite) TestCreateClosing_OpeningOverrideAfterFirstYearRejected() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(suite.latestClosing(2023), nil).Once()

	req := dto.CreateClosingRequest{
		Year:        2024,
		CashClosing: dec("210.00"),
		BankClosing: dec("1400.00"),
		CashOpening: decPtr("999.00"),
	}
	_, err := suite.service.CreateClosing(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ClosingServiceTestSuite) TestCreateClosing_DuplicateYearSurfacesConflict() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockClosingRepo.On("SaveClosing", ctx, mock.AnythingOfType("domain.YearEndClosing")).
		Return(apperrors.ErrDuplicate).Once()

	req := dto.CreateClosingRequest{
		Year:        2023,
		CashClosing: dec("120.00"),
		BankClosing: dec("900.00"),
	}
	_, err := suite.service.CreateClosing(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *ClosingServiceTestSuite) TestCalculateAndClose_DerivesFromCashBookSaldi() {
	ctx := context.Background()
	totals := domain.CashBookTotals{
		CashIncome:  dec("500.00"),
		CashExpense: dec("420.00"),
		BankIncome:  dec("300.00"),
		BankExpense: dec("50.00"),
	}

	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(suite.latestClosing(2023), nil).Once()
	suite.mockCashBookRepo.On("SumColumns", ctx, "verein-1", 2024).Return(totals, nil).Once()
	suite.mockClosingRepo.On("SaveClosing", ctx, mock.MatchedBy(func(c domain.YearEndClosing) bool {
		// 180 + (500-420) = 260 cash, 1250 + (300-50) = 1500 bank
		return c.CashClosing.Equal(dec("260.00")) && c.BankClosing.Equal(dec("1500.00"))
	})).Return(nil).Once()

	resp, err := suite.service.CalculateAndClose(ctx, "verein-1", 2024, "user-1")

	suite.Require().NoError(err)
	suite.True(resp.CashClosing.Equal(dec("260.00")))
	suite.True(resp.BankClosing.Equal(dec("1500.00")))
	suite.mockClosingRepo.AssertExpectations(suite.T())
}

func (suite *ClosingServiceTestSuite) TestCalculateAndClose_OutOfSequenceRejected() {
	ctx := context.Background()
	suite.mockClosingRepo.On("FindLatestClosing", ctx, "verein-1").Return(suite.latestClosing(2023), nil).Once()

	_, err := suite.service.CalculateAndClose(ctx, "verein-1", 2026, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSequenceViolation)
	suite.mockCashBookRepo.AssertNotCalled(suite.T(), "SumColumns", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ClosingServiceTestSuite) TestMarkAudited_RecordsSignOff() {
	ctx := context.Background()
	closing := suite.latestClosing(2024)
	closing.ClosingID = "closing-1"
	auditedAt := time.Date(2025, 2, 10, 14, 0, 0, 0, time.UTC)

	suite.mockClosingRepo.On("FindClosingByID", ctx, "closing-1").Return(closing, nil).Once()
	suite.mockClosingRepo.On("MarkClosingAudited", ctx, "closing-1", "Kassenprüfer Schmidt", auditedAt, "user-1").Return(nil).Once()

	req := dto.MarkAuditedRequest{AuditorName: "Kassenprüfer Schmidt", AuditedAt: &auditedAt}
	resp, err := suite.service.MarkAudited(ctx, "closing-1", req, "user-1")

	suite.Require().NoError(err)
	suite.True(resp.Audited)
	suite.Equal("Kassenprüfer Schmidt", resp.AuditedBy)
	suite.mockClosingRepo.AssertExpectations(suite.T())
}

func (suite *ClosingServiceTestSuite) TestMarkAudited_AlreadyAuditedIsNoOp() {
	ctx := context.Background()
	closing := suite.latestClosing(2024)
	closing.ClosingID = "closing-1"
	closing.Audited = true
	closing.AuditedBy = "Kassenprüfer Schmidt"

	suite.mockClosingRepo.On("FindClosingByID", ctx, "closing-1").Return(closing, nil).Once()

	req := dto.MarkAuditedRequest{AuditorName: "Someone Else"}
	resp, err := suite.service.MarkAudited(ctx, "closing-1", req, "user-1")

	suite.Require().NoError(err)
	suite.True(resp.Audited)
	suite.Equal("Kassenprüfer Schmidt", resp.AuditedBy)
	suite.mockClosingRepo.AssertNotCalled(suite.T(), "MarkClosingAudited",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ClosingServiceTestSuite) TestListByVerein() {
	ctx := context.Background()
	closings := []domain.YearEndClosing{*suite.latestClosing(2024), *suite.latestClosing(2023)}
	suite.mockClosingRepo.On("ListClosingsByVerein", ctx, "verein-1").Return(closings, nil).Once()

	resp, err := suite.service.ListByVerein(ctx, "verein-1")

	suite.Require().NoError(err)
	suite.Require().Len(resp, 2)
	suite.Equal(2024, resp[0].Year)
}

func TestClosingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClosingServiceTestSuite))
}
