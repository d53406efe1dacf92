package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/core/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AllocationServiceTestSuite struct {
	suite.Suite
	mockClaimRepo   *MockClaimRepository
	mockPaymentRepo *MockPaymentRepository
	service         *services.AllocationService
}

func (suite *AllocationServiceTestSuite) SetupTest() {
	suite.mockClaimRepo = new(MockClaimRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.service = services.NewAllocationService(suite.mockClaimRepo, suite.mockPaymentRepo)
}

func (suite *AllocationServiceTestSuite) newPayment(amount string) domain.Payment {
	return domain.Payment{
		PaymentID:   uuid.NewString(),
		VereinID:    "verein-1",
		MemberID:    "member-1",
		Amount:      decimal.RequireFromString(amount),
		PaymentDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:      domain.PaymentActive,
	}
}

func (suite *AllocationServiceTestSuite) newOpenClaim(id, amount string, due time.Time) domain.Claim {
	return domain.Claim{
		ClaimID:  id,
		VereinID: "verein-1",
		MemberID: "member-1",
		Amount:   decimal.RequireFromString(amount),
		DueDate:  due,
		Status:   domain.ClaimOpen,
	}
}

func (suite *AllocationServiceTestSuite) TestAllocate_OldestFirstAcrossTwoClaims() {
	ctx := context.Background()
	payment := suite.newPayment("30.00")
	january := suite.newOpenClaim("claim-jan", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	february := suite.newOpenClaim("claim-feb", "15.00", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindOpenClaimsByMember", ctx, "verein-1", "member-1").Return([]domain.Claim{january, february}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-jan", "claim-feb"}).Return(map[string]decimal.Decimal{}, nil).Once()

	var savedClosures []domain.ClaimClosure
	var savedCredit *domain.CreditBalance
	suite.mockPaymentRepo.On("SaveAllocations", ctx, mock.AnythingOfType("[]domain.Allocation"), mock.AnythingOfType("[]domain.ClaimClosure"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedClosures = args.Get(2).([]domain.ClaimClosure)
			if args.Get(3) != nil {
				savedCredit = args.Get(3).(*domain.CreditBalance)
			}
		}).
		Return(nil).Once()

	allocations, err := suite.service.Allocate(ctx, payment, nil, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(allocations, 2)
	suite.Equal("claim-jan", allocations[0].ClaimID)
	suite.True(allocations[0].Amount.Equal(decimal.RequireFromString("15.00")))
	suite.Equal("claim-feb", allocations[1].ClaimID)
	suite.True(allocations[1].Amount.Equal(decimal.RequireFromString("15.00")))

	// Both claims fully covered, so both close with the payment date
	suite.Require().Len(savedClosures, 2)
	suite.Equal(payment.PaymentDate, savedClosures[0].PaidAt)
	suite.Nil(savedCredit)

	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockClaimRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestAllocate_OverpaymentBecomesCredit() {
	ctx := context.Background()
	payment := suite.newPayment("50.00")
	claim := suite.newOpenClaim("claim-1", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindOpenClaimsByMember", ctx, "verein-1", "member-1").Return([]domain.Claim{claim}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1"}).Return(map[string]decimal.Decimal{}, nil).Once()

	var savedCredit *domain.CreditBalance
	suite.mockPaymentRepo.On("SaveAllocations", ctx, mock.AnythingOfType("[]domain.Allocation"), mock.AnythingOfType("[]domain.ClaimClosure"), mock.Anything).
		Run(func(args mock.Arguments) {
			if args.Get(3) != nil {
				savedCredit = args.Get(3).(*domain.CreditBalance)
			}
		}).
		Return(nil).Once()

	allocations, err := suite.service.Allocate(ctx, payment, nil, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(allocations, 1)
	suite.True(allocations[0].Amount.Equal(decimal.RequireFromString("15.00")))

	suite.Require().NotNil(savedCredit)
	suite.True(savedCredit.Amount.Equal(decimal.RequireFromString("35.00")))
	suite.Equal("member-1", savedCredit.MemberID)
	suite.Equal(payment.PaymentID, savedCredit.PaymentID)
	suite.Contains(savedCredit.Note, "2025-03-15")

	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestAllocate_PartialCoverageLeavesClaimOpen() {
	ctx := context.Background()
	payment := suite.newPayment("10.00")
	claim := suite.newOpenClaim("claim-1", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindOpenClaimsByMember", ctx, "verein-1", "member-1").Return([]domain.Claim{claim}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1"}).Return(map[string]decimal.Decimal{}, nil).Once()

	var savedClosures []domain.ClaimClosure
	suite.mockPaymentRepo.On("SaveAllocations", ctx, mock.AnythingOfType("[]domain.Allocation"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			if args.Get(2) != nil {
				savedClosures = args.Get(2).([]domain.ClaimClosure)
			}
		}).
		Return(nil).Once()

	allocations, err := suite.service.Allocate(ctx, payment, nil, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(allocations, 1)
	suite.True(allocations[0].Amount.Equal(decimal.RequireFromString("10.00")))
	suite.Empty(savedClosures)

	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestAllocate_SkipsPartiallyAllocatedRemainder() {
	ctx := context.Background()
	payment := suite.newPayment("5.00")
	claim := suite.newOpenClaim("claim-1", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindOpenClaimsByMember", ctx, "verein-1", "member-1").Return([]domain.Claim{claim}, nil).Once()
	// 10 of 15 already allocated by an earlier payment
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1"}).
		Return(map[string]decimal.Decimal{"claim-1": decimal.RequireFromString("10.00")}, nil).Once()

	var savedClosures []domain.ClaimClosure
	suite.mockPaymentRepo.On("SaveAllocations", ctx, mock.AnythingOfType("[]domain.Allocation"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			if args.Get(2) != nil {
				savedClosures = args.Get(2).([]domain.ClaimClosure)
			}
		}).
		Return(nil).Once()

	allocations, err := suite.service.Allocate(ctx, payment, nil, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(allocations, 1)
	suite.True(allocations[0].Amount.Equal(decimal.RequireFromString("5.00")))
	// 10 + 5 covers the claim in full
	suite.Require().Len(savedClosures, 1)
	suite.Equal("claim-1", savedClosures[0].ClaimID)

	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestAllocate_ExistingAllocationsAreNoOp() {
	ctx := context.Background()
	payment := suite.newPayment("30.00")
	existing := []domain.Allocation{{AllocationID: "alloc-1", ClaimID: "claim-1", PaymentID: payment.PaymentID, Amount: decimal.RequireFromString("30.00")}}

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return(existing, nil).Once()

	allocations, err := suite.service.Allocate(ctx, payment, nil, "user-1")

	suite.Require().NoError(err)
	suite.Equal(existing, allocations)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SaveAllocations", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AllocationServiceTestSuite) TestAllocate_ExplicitOverClaimRemainderRejected() {
	ctx := context.Background()
	payment := suite.newPayment("50.00")
	claim := suite.newOpenClaim("claim-1", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindClaimsByIDs", ctx, []string{"claim-1"}).Return(map[string]domain.Claim{"claim-1": claim}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1"}).Return(map[string]decimal.Decimal{}, nil).Once()

	explicit := []dto.ExplicitAllocation{{ClaimID: "claim-1", Amount: decimal.RequireFromString("20.00")}}
	allocations, err := suite.service.Allocate(ctx, payment, explicit, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAllocationExceedsLimit)
	suite.Nil(allocations)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SaveAllocations", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AllocationServiceTestSuite) TestAllocate_ExplicitRepeatedClaimJointlyOverRemainderRejected() {
	ctx := context.Background()
	payment := suite.newPayment("120.00")
	claim := suite.newOpenClaim("claim-1", "100.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindClaimsByIDs", ctx, []string{"claim-1", "claim-1"}).
		Return(map[string]domain.Claim{"claim-1": claim}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1", "claim-1"}).Return(map[string]decimal.Decimal{}, nil).Once()

	// Each entry fits on its own; together they exceed the claim.
	explicit := []dto.ExplicitAllocation{
		{ClaimID: "claim-1", Amount: decimal.RequireFromString("60.00")},
		{ClaimID: "claim-1", Amount: decimal.RequireFromString("60.00")},
	}
	allocations, err := suite.service.Allocate(ctx, payment, explicit, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAllocationExceedsLimit)
	suite.Nil(allocations)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SaveAllocations", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AllocationServiceTestSuite) TestAllocate_ExplicitRepeatedClaimMergesIntoOneRow() {
	ctx := context.Background()
	payment := suite.newPayment("100.00")
	claim := suite.newOpenClaim("claim-1", "100.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindClaimsByIDs", ctx, []string{"claim-1", "claim-1"}).
		Return(map[string]domain.Claim{"claim-1": claim}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1", "claim-1"}).Return(map[string]decimal.Decimal{}, nil).Once()

	var savedClosures []domain.ClaimClosure
	suite.mockPaymentRepo.On("SaveAllocations", ctx, mock.AnythingOfType("[]domain.Allocation"), mock.AnythingOfType("[]domain.ClaimClosure"), mock.Anything).
		Run(func(args mock.Arguments) {
			savedClosures = args.Get(2).([]domain.ClaimClosure)
		}).
		Return(nil).Once()

	explicit := []dto.ExplicitAllocation{
		{ClaimID: "claim-1", Amount: decimal.RequireFromString("40.00")},
		{ClaimID: "claim-1", Amount: decimal.RequireFromString("60.00")},
	}
	allocations, err := suite.service.Allocate(ctx, payment, explicit, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(allocations, 1)
	suite.Equal("claim-1", allocations[0].ClaimID)
	suite.True(allocations[0].Amount.Equal(decimal.RequireFromString("100.00")))
	suite.Require().Len(savedClosures, 1)
	suite.Equal("claim-1", savedClosures[0].ClaimID)
}

func (suite *AllocationServiceTestSuite) TestAllocate_ExplicitTotalOverPaymentRejected() {
	ctx := context.Background()
	payment := suite.newPayment("20.00")
	claimA := suite.newOpenClaim("claim-a", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	claimB := suite.newOpenClaim("claim-b", "15.00", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC))

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindClaimsByIDs", ctx, []string{"claim-a", "claim-b"}).
		Return(map[string]domain.Claim{"claim-a": claimA, "claim-b": claimB}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-a", "claim-b"}).Return(map[string]decimal.Decimal{}, nil).Once()

	explicit := []dto.ExplicitAllocation{
		{ClaimID: "claim-a", Amount: decimal.RequireFromString("15.00")},
		{ClaimID: "claim-b", Amount: decimal.RequireFromString("15.00")},
	}
	_, err := suite.service.Allocate(ctx, payment, explicit, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAllocationExceedsLimit)
}

func (suite *AllocationServiceTestSuite) TestAllocate_ExplicitForeignClaimRejected() {
	ctx := context.Background()
	payment := suite.newPayment("15.00")
	foreign := suite.newOpenClaim("claim-x", "15.00", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	foreign.MemberID = "someone-else"

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()
	suite.mockClaimRepo.On("FindClaimsByIDs", ctx, []string{"claim-x"}).Return(map[string]domain.Claim{"claim-x": foreign}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-x"}).Return(map[string]decimal.Decimal{}, nil).Once()

	explicit := []dto.ExplicitAllocation{{ClaimID: "claim-x", Amount: decimal.RequireFromString("15.00")}}
	_, err := suite.service.Allocate(ctx, payment, explicit, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AllocationServiceTestSuite) TestAllocate_ReversedPaymentRejected() {
	ctx := context.Background()
	payment := suite.newPayment("15.00")
	payment.Status = domain.PaymentReversed

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, payment.PaymentID).Return([]domain.Allocation{}, nil).Once()

	_, err := suite.service.Allocate(ctx, payment, nil, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AllocationServiceTestSuite) TestReverseAllocations_ReopensClaims() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	allocations := []domain.Allocation{
		{AllocationID: "alloc-1", ClaimID: "claim-1", PaymentID: paymentID, Amount: decimal.RequireFromString("15.00")},
		{AllocationID: "alloc-2", ClaimID: "claim-2", PaymentID: paymentID, Amount: decimal.RequireFromString("10.00")},
	}

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return(allocations, nil).Once()
	suite.mockPaymentRepo.On("DeleteAllocationsByPaymentID", ctx, paymentID, []string{"claim-1", "claim-2"}, "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.ReverseAllocations(ctx, paymentID, "user-1")

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *AllocationServiceTestSuite) TestReverseAllocations_NothingToReverse() {
	ctx := context.Background()
	paymentID := uuid.NewString()

	suite.mockPaymentRepo.On("FindAllocationsByPaymentID", ctx, paymentID).Return([]domain.Allocation{}, nil).Once()

	err := suite.service.ReverseAllocations(ctx, paymentID, "user-1")

	suite.Require().NoError(err)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "DeleteAllocationsByPaymentID", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AllocationServiceTestSuite) TestGetMemberFinanceSummary_DerivesTotals() {
	ctx := context.Background()
	past := time.Now().AddDate(0, -1, 0)
	future := time.Now().AddDate(0, 1, 0)
	overdue := suite.newOpenClaim("claim-old", "15.00", past)
	upcoming := suite.newOpenClaim("claim-new", "15.00", future)

	suite.mockClaimRepo.On("FindOpenClaimsByMember", ctx, "verein-1", "member-1").Return([]domain.Claim{overdue, upcoming}, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-old", "claim-new"}).
		Return(map[string]decimal.Decimal{"claim-old": decimal.RequireFromString("5.00")}, nil).Once()
	suite.mockPaymentRepo.On("SumPaymentsByMember", ctx, "verein-1", "member-1").Return(decimal.RequireFromString("35.00"), nil).Once()
	suite.mockPaymentRepo.On("SumCreditByMember", ctx, "verein-1", "member-1").Return(decimal.RequireFromString("5.00"), nil).Once()

	summary, err := suite.service.GetMemberFinanceSummary(ctx, "verein-1", "member-1")

	suite.Require().NoError(err)
	suite.True(summary.TotalOwed.Equal(decimal.RequireFromString("25.00")))
	suite.True(summary.TotalOverdue.Equal(decimal.RequireFromString("10.00")))
	suite.True(summary.TotalPaid.Equal(decimal.RequireFromString("35.00")))
	suite.True(summary.CreditBalance.Equal(decimal.RequireFromString("5.00")))
	suite.Equal(2, summary.OpenClaimCount)
	suite.Require().NotNil(summary.NextDueDate)
	suite.Equal(past.Format("2006-01-02"), *summary.NextDueDate)
}

func TestAllocationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AllocationServiceTestSuite))
}
