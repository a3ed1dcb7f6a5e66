package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/core/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// --- Test Suite Setup ---

type PeriodServiceTestSuite struct {
	suite.Suite
	mockPeriodRepo *MockPeriodRepository
	mockLedgerRepo *MockLedgerRepository
	mockReconRepo  *MockReconciliationRepository
	service        portssvc.PeriodSvcFacade
	actorID        string
}

func (suite *PeriodServiceTestSuite) SetupTest() {
	suite.mockPeriodRepo = new(MockPeriodRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockReconRepo = new(MockReconciliationRepository)
	suite.service = services.NewPeriodService(suite.mockPeriodRepo, suite.mockLedgerRepo, suite.mockReconRepo)
	suite.actorID = uuid.NewString()
}

func (suite *PeriodServiceTestSuite) period(status domain.PeriodStatus) *domain.Period {
	return &domain.Period{
		PeriodID:  uuid.NewString(),
		Name:      "2026-08",
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

// --- Test Cases ---

func (suite *PeriodServiceTestSuite) TestCreatePeriod_Success() {
	ctx := context.Background()
	req := dto.CreatePeriodRequest{
		Name:      "2026-09",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}

	suite.mockPeriodRepo.On("SavePeriod", ctx, mock.AnythingOfType("domain.Period"), mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	period, err := suite.service.CreatePeriod(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(period)
	suite.Equal(domain.PeriodOpen, period.Status)
	suite.NotEmpty(period.PeriodID)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestCreatePeriod_EndBeforeStart() {
	ctx := context.Background()
	req := dto.CreatePeriodRequest{
		Name:      "backwards",
		StartDate: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	period, err := suite.service.CreatePeriod(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(period)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "SavePeriod", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestBeginClose_Success() {
	ctx := context.Background()
	period := suite.period(domain.PeriodOpen)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockLedgerRepo.On("TrialBalance", ctx, period.PeriodID).Return(&domain.TrialBalance{PeriodID: period.PeriodID, Net: decimal.Zero}, nil).Once()
	suite.mockReconRepo.On("CountPendingReviewInRange", ctx, period.StartDate, period.EndDate).Return(0, nil).Once()
	suite.mockPeriodRepo.On("BeginClose", ctx, period.PeriodID, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	err := suite.service.BeginClose(ctx, period.PeriodID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestBeginClose_NotOpen() {
	ctx := context.Background()
	period := suite.period(domain.PeriodClosed)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()

	err := suite.service.BeginClose(ctx, period.PeriodID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "BeginClose", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestBeginClose_ImbalancedTrialBalance() {
	ctx := context.Background()
	period := suite.period(domain.PeriodOpen)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockLedgerRepo.On("TrialBalance", ctx, period.PeriodID).Return(&domain.TrialBalance{PeriodID: period.PeriodID, Net: decimal.RequireFromString("0.05")}, nil).Once()

	err := suite.service.BeginClose(ctx, period.PeriodID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "BeginClose", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestBeginClose_PendingReviewMatchesBlock() {
	ctx := context.Background()
	period := suite.period(domain.PeriodOpen)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockLedgerRepo.On("TrialBalance", ctx, period.PeriodID).Return(&domain.TrialBalance{PeriodID: period.PeriodID, Net: decimal.Zero}, nil).Once()
	suite.mockReconRepo.On("CountPendingReviewInRange", ctx, period.StartDate, period.EndDate).Return(2, nil).Once()

	err := suite.service.BeginClose(ctx, period.PeriodID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "BeginClose", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestClosePeriod_Success() {
	ctx := context.Background()
	period := suite.period(domain.PeriodPendingClose)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockPeriodRepo.On("Close", ctx, period.PeriodID, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	err := suite.service.ClosePeriod(ctx, period.PeriodID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestClosePeriod_NotPendingClose() {
	ctx := context.Background()
	period := suite.period(domain.PeriodOpen)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()

	err := suite.service.ClosePeriod(ctx, period.PeriodID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *PeriodServiceTestSuite) TestLockPeriod_Success() {
	ctx := context.Background()
	period := suite.period(domain.PeriodClosed)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockPeriodRepo.On("Lock", ctx, period.PeriodID, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	err := suite.service.LockPeriod(ctx, period.PeriodID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestLockPeriod_NotClosed() {
	ctx := context.Background()
	period := suite.period(domain.PeriodLocked)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()

	err := suite.service.LockPeriod(ctx, period.PeriodID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_Success() {
	ctx := context.Background()
	period := suite.period(domain.PeriodClosed)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockPeriodRepo.On("HasClosedPeriodAfter", ctx, period.EndDate).Return(false, nil).Once()
	suite.mockPeriodRepo.On("Reopen", ctx, period.PeriodID, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	err := suite.service.ReopenPeriod(ctx, period.PeriodID, "late vendor invoice arrived", suite.actorID)

	suite.Require().NoError(err)
	suite.mockPeriodRepo.AssertExpectations(suite.T())
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_RequiresJustification() {
	ctx := context.Background()

	err := suite.service.ReopenPeriod(ctx, uuid.NewString(), "", suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "FindPeriodByID", mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_LaterPeriodClosed() {
	ctx := context.Background()
	period := suite.period(domain.PeriodClosed)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()
	suite.mockPeriodRepo.On("HasClosedPeriodAfter", ctx, period.EndDate).Return(true, nil).Once()

	err := suite.service.ReopenPeriod(ctx, period.PeriodID, "late vendor invoice arrived", suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockPeriodRepo.AssertNotCalled(suite.T(), "Reopen", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PeriodServiceTestSuite) TestReopenPeriod_NotClosed() {
	ctx := context.Background()
	period := suite.period(domain.PeriodLocked)

	suite.mockPeriodRepo.On("FindPeriodByID", ctx, period.PeriodID).Return(period, nil).Once()

	err := suite.service.ReopenPeriod(ctx, period.PeriodID, "attempting to unlock", suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestPeriodServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PeriodServiceTestSuite))
}
