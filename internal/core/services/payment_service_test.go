package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/core/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockPaymentRepo   *MockPaymentRepository
	mockMemberRepo    *MockMemberRepository
	mockAllocationSvc *MockAllocationService
	service           *services.PaymentService
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockMemberRepo = new(MockMemberRepository)
	suite.mockAllocationSvc = new(MockAllocationService)
	suite.service = services.NewPaymentService(suite.mockPaymentRepo, suite.mockMemberRepo, suite.mockAllocationSvc)
}

func (suite *PaymentServiceTestSuite) member() *domain.Member {
	return &domain.Member{
		MemberID:     "member-1",
		VereinID:     "verein-1",
		MemberNumber: "1042",
		FirstName:    "Hans",
		LastName:     "Müller",
		MonthlyFee:   dec("15.00"),
		Active:       true,
	}
}

func (suite *PaymentServiceTestSuite) paymentRequest() dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{
		MemberID:     "member-1",
		Amount:       dec("30.00"),
		CurrencyCode: "EUR",
		PaymentDate:  time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Method:       "BAR",
	}
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_SavesAndAllocates() {
	ctx := context.Background()
	allocations := []domain.Allocation{
		{AllocationID: "alloc-1", ClaimID: "claim-1", Amount: dec("15.00")},
		{AllocationID: "alloc-2", ClaimID: "claim-2", Amount: dec("15.00")},
	}

	suite.mockMemberRepo.On("FindMemberByID", ctx, "member-1").Return(suite.member(), nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentActive && p.Method == domain.MethodCash && p.VereinID == "verein-1"
	})).Return(nil).Once()
	suite.mockAllocationSvc.On("Allocate", ctx, mock.AnythingOfType("domain.Payment"), []dto.ExplicitAllocation(nil), "user-1").
		Return(allocations, nil).Once()

	resp, err := suite.service.CreatePayment(ctx, "verein-1", suite.paymentRequest(), "user-1")

	suite.Require().NoError(err)
	suite.Equal(string(domain.PaymentActive), resp.Status)
	suite.Require().Len(resp.Allocations, 2)
	suite.Equal("claim-1", resp.Allocations[0].ClaimID)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockAllocationSvc.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_PassesExplicitAllocations() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.ClaimIDs = []string{"claim-1", "claim-2"}
	req.AllocationAmounts = []decimal.Decimal{dec("20.00"), dec("10.00")}

	expected := []dto.ExplicitAllocation{
		{ClaimID: "claim-1", Amount: dec("20.00")},
		{ClaimID: "claim-2", Amount: dec("10.00")},
	}

	suite.mockMemberRepo.On("FindMemberByID", ctx, "member-1").Return(suite.member(), nil).Once()
	suite.mockPaymentRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil).Once()
	suite.mockAllocationSvc.On("Allocate", ctx, mock.AnythingOfType("domain.Payment"), expected, "user-1").
		Return([]domain.Allocation{}, nil).Once()

	_, err := suite.service.CreatePayment(ctx, "verein-1", req, "user-1")

	suite.Require().NoError(err)
	suite.mockAllocationSvc.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_UnevenExplicitAmountsRejected() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.ClaimIDs = []string{"claim-1", "claim-2"}
	req.AllocationAmounts = []decimal.Decimal{dec("20.00")}

	suite.mockMemberRepo.On("FindMemberByID", ctx, "member-1").Return(suite.member(), nil).Once()

	_, err := suite.service.CreatePayment(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_UnknownMethodRejected() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.Method = "BITCOIN"

	_, err := suite.service.CreatePayment(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMemberRepo.AssertNotCalled(suite.T(), "FindMemberByID", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_ForeignMemberRejected() {
	ctx := context.Background()
	suite.mockMemberRepo.On("FindMemberByID", ctx, "member-1").Return(suite.member(), nil).Once()

	_, err := suite.service.CreatePayment(ctx, "verein-2", suite.paymentRequest(), "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestCreatePayment_NonPositiveAmountRejected() {
	ctx := context.Background()
	req := suite.paymentRequest()
	req.Amount = dec("0")

	_, err := suite.service.CreatePayment(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestCancelPayment_ReversesAndFlags() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID: "payment-1",
		VereinID:  "verein-1",
		MemberID:  "member-1",
		Amount:    dec("30.00"),
		Status:    domain.PaymentActive,
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, "payment-1").Return(payment, nil).Once()
	suite.mockAllocationSvc.On("ReverseAllocations", ctx, "payment-1", "user-1").Return(nil).Once()
	suite.mockPaymentRepo.On("UpdatePaymentStatus", ctx, "payment-1", domain.PaymentReversed, "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelPayment(ctx, "payment-1", "user-1")

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockAllocationSvc.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestCancelPayment_AlreadyReversedRejected() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID: "payment-1",
		Status:    domain.PaymentReversed,
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, "payment-1").Return(payment, nil).Once()

	err := suite.service.CancelPayment(ctx, "payment-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAllocationSvc.AssertNotCalled(suite.T(), "ReverseAllocations", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestGetPayment_LoadsAllocations() {
	ctx := context.Background()
	payment := &domain.Payment{
		PaymentID: "payment-1",
		VereinID:  "verein-1",
		MemberID:  "member-1",
		Amount:    dec("30.00"),
		Status:    domain.PaymentActive,
	}
	allocations := []domain.Allocation{
		{AllocationID: "alloc-1", ClaimID: "claim-1", PaymentID: "payment-1", Amount: dec("30.00")},
	}

	suite.mockPaymentRepo.On("FindPaymentByID", ctx, "payment-1").Return(payment, nil).Once()
	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, "payment-1").Return(allocations, nil).Once()

	resp, err := suite.service.GetPayment(ctx, "payment-1")

	suite.Require().NoError(err)
	suite.Require().Len(resp.Allocations, 1)
	suite.True(resp.Allocations[0].Amount.Equal(dec("30.00")))
}

func (suite *PaymentServiceTestSuite) TestListByMember() {
	ctx := context.Background()
	payments := []domain.Payment{
		{PaymentID: "payment-2", Amount: dec("15.00"), Status: domain.PaymentActive},
		{PaymentID: "payment-1", Amount: dec("30.00"), Status: domain.PaymentActive},
	}
	suite.mockPaymentRepo.On("FindPaymentsByMember", ctx, "verein-1", "member-1").Return(payments, nil).Once()

	resp, err := suite.service.ListByMember(ctx, "verein-1", "member-1")

	suite.Require().NoError(err)
	suite.Require().Len(resp, 2)
	suite.Equal("payment-2", resp[0].PaymentID)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
