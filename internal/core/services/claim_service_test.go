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

type ClaimServiceTestSuite struct {
	suite.Suite
	mockClaimRepo   *MockClaimRepository
	mockPaymentRepo *MockPaymentRepository
	mockMemberRepo  *MockMemberRepository
	service         *services.ClaimService
}

func (suite *ClaimServiceTestSuite) SetupTest() {
	suite.mockClaimRepo = new(MockClaimRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockMemberRepo = new(MockMemberRepository)
	suite.service = services.NewClaimService(suite.mockClaimRepo, suite.mockPaymentRepo, suite.mockMemberRepo)
}

func (suite *ClaimServiceTestSuite) member() *domain.Member {
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

func (suite *ClaimServiceTestSuite) TestCreateClaim_StartsOpen() {
	ctx := context.Background()
	suite.mockMemberRepo.On("FindMemberByID", ctx, "member-1").Return(suite.member(), nil).Once()
	suite.mockClaimRepo.On("SaveClaim", ctx, mock.MatchedBy(func(c domain.Claim) bool {
		return c.Status == domain.ClaimOpen && c.VereinID == "verein-1" && c.Amount.Equal(dec("15.00"))
	})).Return(nil).Once()

	req := dto.CreateClaimRequest{
		MemberID:     "member-1",
		ClaimType:    "MITGLIEDSBEITRAG",
		Amount:       dec("15.00"),
		CurrencyCode: "EUR",
		DueDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Year:         2025,
	}
	resp, err := suite.service.CreateClaim(ctx, "verein-1", req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(string(domain.ClaimOpen), resp.Status)
	suite.True(resp.RemainingAmount.Equal(dec("15.00")))
	suite.mockClaimRepo.AssertExpectations(suite.T())
}

func (suite *ClaimServiceTestSuite) TestCreateClaim_NonPositiveAmountRejected() {
	ctx := context.Background()
	req := dto.CreateClaimRequest{
		MemberID:     "member-1",
		ClaimType:    "MITGLIEDSBEITRAG",
		Amount:       decimal.Zero,
		CurrencyCode: "EUR",
		DueDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Year:         2025,
	}
	_, err := suite.service.CreateClaim(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockMemberRepo.AssertNotCalled(suite.T(), "FindMemberByID", mock.Anything, mock.Anything)
}

func (suite *ClaimServiceTestSuite) TestCreateClaim_ForeignMemberRejected() {
	ctx := context.Background()
	suite.mockMemberRepo.On("FindMemberByID", ctx, "member-1").Return(suite.member(), nil).Once()

	req := dto.CreateClaimRequest{
		MemberID:     "member-1",
		ClaimType:    "MITGLIEDSBEITRAG",
		Amount:       dec("15.00"),
		CurrencyCode: "EUR",
		DueDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Year:         2025,
	}
	_, err := suite.service.CreateClaim(ctx, "verein-2", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockClaimRepo.AssertNotCalled(suite.T(), "SaveClaim", mock.Anything, mock.Anything)
}

func (suite *ClaimServiceTestSuite) TestGetClaim_DerivesRemainingFromAllocations() {
	ctx := context.Background()
	claim := &domain.Claim{
		ClaimID:  "claim-1",
		VereinID: "verein-1",
		MemberID: "member-1",
		Amount:   dec("15.00"),
		Status:   domain.ClaimOpen,
	}

	suite.mockClaimRepo.On("FindClaimByID", ctx, "claim-1").Return(claim, nil).Once()
	suite.mockPaymentRepo.On("FindAllocationsByClaimID", ctx, "claim-1").
		Return([]domain.Allocation{
			{AllocationID: "alloc-1", ClaimID: "claim-1", PaymentID: "payment-1", Amount: dec("3.00")},
			{AllocationID: "alloc-2", ClaimID: "claim-1", PaymentID: "payment-2", Amount: dec("2.00")},
		}, nil).Once()

	resp, err := suite.service.GetClaim(ctx, "claim-1")

	suite.Require().NoError(err)
	suite.True(resp.RemainingAmount.Equal(dec("10.00")))
	suite.Require().Len(resp.Allocations, 2)
	suite.Equal("payment-1", resp.Allocations[0].PaymentID)
}

func (suite *ClaimServiceTestSuite) TestListOpenByVerein_BatchesAllocationLookup() {
	ctx := context.Background()
	claims := []domain.Claim{
		{ClaimID: "claim-1", VereinID: "verein-1", MemberID: "member-1", Amount: dec("15.00"), Status: domain.ClaimOpen},
		{ClaimID: "claim-2", VereinID: "verein-1", MemberID: "member-2", Amount: dec("20.00"), Status: domain.ClaimOpen},
	}

	suite.mockClaimRepo.On("FindOpenClaimsByVerein", ctx, "verein-1").Return(claims, nil).Once()
	suite.mockPaymentRepo.On("SumAllocatedByClaimIDs", ctx, []string{"claim-1", "claim-2"}).
		Return(map[string]decimal.Decimal{"claim-2": dec("7.50")}, nil).Once()

	resp, err := suite.service.ListOpenByVerein(ctx, "verein-1")

	suite.Require().NoError(err)
	suite.Require().Len(resp, 2)
	suite.True(resp[0].RemainingAmount.Equal(dec("15.00")))
	suite.True(resp[1].RemainingAmount.Equal(dec("12.50")))
}

func (suite *ClaimServiceTestSuite) TestListOverdue_QueriesWithCurrentTime() {
	ctx := context.Background()
	suite.mockClaimRepo.On("FindOverdueClaims", ctx, "verein-1", mock.AnythingOfType("time.Time")).
		Return([]domain.Claim{}, nil).Once()

	resp, err := suite.service.ListOverdue(ctx, "verein-1")

	suite.Require().NoError(err)
	suite.Empty(resp)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SumAllocatedByClaimIDs", mock.Anything, mock.Anything)
}

func TestClaimServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClaimServiceTestSuite))
}
