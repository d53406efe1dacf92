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

type TransitServiceTestSuite struct {
	suite.Suite
	mockTransitRepo *MockTransitRepository
	mockChartRepo   *MockChartAccountRepository
	service         *services.TransitService
}

func (suite *TransitServiceTestSuite) SetupTest() {
	suite.mockTransitRepo = new(MockTransitRepository)
	suite.mockChartRepo = new(MockChartAccountRepository)
	suite.service = services.NewTransitService(suite.mockTransitRepo, suite.mockChartRepo)
}

func (suite *TransitServiceTestSuite) openItem(incoming string, outgoing *string) *domain.TransitItem {
	item := &domain.TransitItem{
		TransitItemID:  "transit-1",
		VereinID:       "verein-1",
		AccountNo:      "9091",
		Description:    "Spendenlauf Erlös",
		IncomingDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		IncomingAmount: dec(incoming),
		Recipient:      "DRK Landesverband",
	}
	if outgoing != nil {
		out := dec(*outgoing)
		item.OutgoingAmount = &out
	}
	item.Status = domain.TransitStatusFor(item.IncomingAmount, item.OutgoingAmount)
	return item
}

func (suite *TransitServiceTestSuite) TestCreateItem_StartsOpen() {
	ctx := context.Background()
	suite.mockChartRepo.On("FindChartAccount", ctx, "9091").
		Return(&domain.ChartAccount{AccountNo: "9091", Description: "Durchlaufende Posten", Transit: true}, nil).Once()
	suite.mockTransitRepo.On("SaveTransitItem", ctx, mock.MatchedBy(func(item domain.TransitItem) bool {
		return item.Status == domain.TransitOpen && item.VereinID == "verein-1"
	})).Return(nil).Once()

	req := dto.CreateTransitItemRequest{
		AccountNo:      "9091",
		Description:    "Spendenlauf Erlös",
		IncomingDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		IncomingAmount: dec("250.00"),
		Recipient:      "DRK Landesverband",
	}
	resp, err := suite.service.CreateItem(ctx, "verein-1", req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(string(domain.TransitOpen), resp.Status)
	suite.True(resp.Outstanding.Equal(dec("250.00")))
	suite.mockTransitRepo.AssertExpectations(suite.T())
}

func (suite *TransitServiceTestSuite) TestCreateItem_NonTransitAccountRejected() {
	ctx := context.Background()
	suite.mockChartRepo.On("FindChartAccount", ctx, "2010").
		Return(&domain.ChartAccount{AccountNo: "2010", Description: "Mitgliedsbeiträge", Transit: false}, nil).Once()

	req := dto.CreateTransitItemRequest{
		AccountNo:      "2010",
		Description:    "Spendenlauf Erlös",
		IncomingDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		IncomingAmount: dec("250.00"),
	}
	_, err := suite.service.CreateItem(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransitRepo.AssertNotCalled(suite.T(), "SaveTransitItem", mock.Anything, mock.Anything)
}

func (suite *TransitServiceTestSuite) TestCreateItem_UnknownAccountRejected() {
	ctx := context.Background()
	suite.mockChartRepo.On("FindChartAccount", ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	req := dto.CreateTransitItemRequest{
		AccountNo:      "9999",
		Description:    "Spendenlauf Erlös",
		IncomingDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		IncomingAmount: dec("250.00"),
	}
	_, err := suite.service.CreateItem(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransitServiceTestSuite) TestCreateItem_NonPositiveAmountRejected() {
	ctx := context.Background()
	req := dto.CreateTransitItemRequest{
		AccountNo:      "9091",
		Description:    "Spendenlauf Erlös",
		IncomingDate:   time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		IncomingAmount: dec("0"),
	}
	_, err := suite.service.CreateItem(ctx, "verein-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockChartRepo.AssertNotCalled(suite.T(), "FindChartAccount", mock.Anything, mock.Anything)
}

func (suite *TransitServiceTestSuite) TestRecordOutgoing_PartialForwarding() {
	ctx := context.Background()
	item := suite.openItem("250.00", nil)

	suite.mockTransitRepo.On("FindTransitItemByID", ctx, "transit-1").Return(item, nil).Once()
	suite.mockTransitRepo.On("UpdateTransitItem", ctx, mock.MatchedBy(func(updated domain.TransitItem) bool {
		return updated.Status == domain.TransitPartial &&
			updated.OutgoingAmount != nil && updated.OutgoingAmount.Equal(dec("100.00"))
	})).Return(nil).Once()

	req := dto.RecordOutgoingRequest{
		OutgoingDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		Amount:       dec("100.00"),
		Reference:    "Überweisung 2025-117",
	}
	resp, err := suite.service.RecordOutgoing(ctx, "transit-1", req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(string(domain.TransitPartial), resp.Status)
	suite.True(resp.Outstanding.Equal(dec("150.00")))
	suite.mockTransitRepo.AssertExpectations(suite.T())
}

func (suite *TransitServiceTestSuite) TestRecordOutgoing_AccumulatesToClosed() {
	ctx := context.Background()
	prior := "100.00"
	item := suite.openItem("250.00", &prior)

	suite.mockTransitRepo.On("FindTransitItemByID", ctx, "transit-1").Return(item, nil).Once()
	suite.mockTransitRepo.On("UpdateTransitItem", ctx, mock.MatchedBy(func(updated domain.TransitItem) bool {
		return updated.Status == domain.TransitClosed &&
			updated.OutgoingAmount != nil && updated.OutgoingAmount.Equal(dec("250.00"))
	})).Return(nil).Once()

	req := dto.RecordOutgoingRequest{
		OutgoingDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       dec("150.00"),
	}
	resp, err := suite.service.RecordOutgoing(ctx, "transit-1", req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(string(domain.TransitClosed), resp.Status)
	suite.True(resp.Outstanding.IsZero())
}

func (suite *TransitServiceTestSuite) TestRecordOutgoing_OvershootRejected() {
	ctx := context.Background()
	prior := "200.00"
	item := suite.openItem("250.00", &prior)

	suite.mockTransitRepo.On("FindTransitItemByID", ctx, "transit-1").Return(item, nil).Once()

	req := dto.RecordOutgoingRequest{
		OutgoingDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       dec("50.01"),
	}
	_, err := suite.service.RecordOutgoing(ctx, "transit-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAllocationExceedsLimit)
	suite.mockTransitRepo.AssertNotCalled(suite.T(), "UpdateTransitItem", mock.Anything, mock.Anything)
}

func (suite *TransitServiceTestSuite) TestRecordOutgoing_ClosedItemRejected() {
	ctx := context.Background()
	prior := "250.00"
	item := suite.openItem("250.00", &prior)

	suite.mockTransitRepo.On("FindTransitItemByID", ctx, "transit-1").Return(item, nil).Once()

	req := dto.RecordOutgoingRequest{
		OutgoingDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       dec("1.00"),
	}
	_, err := suite.service.RecordOutgoing(ctx, "transit-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *TransitServiceTestSuite) TestRecordOutgoing_NonPositiveAmountRejected() {
	ctx := context.Background()
	req := dto.RecordOutgoingRequest{
		OutgoingDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Amount:       dec("-10.00"),
	}
	_, err := suite.service.RecordOutgoing(ctx, "transit-1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTransitRepo.AssertNotCalled(suite.T(), "FindTransitItemByID", mock.Anything, mock.Anything)
}

func (suite *TransitServiceTestSuite) TestGetTotalOpenAmount() {
	ctx := context.Background()
	suite.mockTransitRepo.On("SumOpenTransitAmount", ctx, "verein-1").Return(dec("375.50"), nil).Once()

	total, err := suite.service.GetTotalOpenAmount(ctx, "verein-1")

	suite.Require().NoError(err)
	suite.True(total.Equal(dec("375.50")))
}

func (suite *TransitServiceTestSuite) TestGetRecipientSummary() {
	ctx := context.Background()
	summaries := []domain.RecipientSummary{
		{Recipient: "DRK Landesverband", TotalIncoming: dec("500.00"), TotalOutgoing: dec("400.00"), OpenAmount: dec("100.00"), ItemCount: 3},
		{Recipient: "Kreisverband", TotalIncoming: dec("80.00"), TotalOutgoing: decimal.Zero, OpenAmount: dec("80.00"), ItemCount: 1},
	}
	suite.mockTransitRepo.On("SummarizeByRecipient", ctx, "verein-1").Return(summaries, nil).Once()

	resp, err := suite.service.GetRecipientSummary(ctx, "verein-1")

	suite.Require().NoError(err)
	suite.Require().Len(resp, 2)
	suite.Equal("DRK Landesverband", resp[0].Recipient)
	suite.True(resp[0].OpenAmount.Equal(dec("100.00")))
	suite.Equal(1, resp[1].ItemCount)
}

func TestTransitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransitServiceTestSuite))
}
