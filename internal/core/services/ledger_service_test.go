package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/core/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	mockAuditRepo  *MockAuditRepository
	service        portssvc.LedgerSvcFacade
	actorID        string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAuditRepo = new(MockAuditRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAuditRepo)
	suite.actorID = uuid.NewString()
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestBalance_Success() {
	ctx := context.Background()
	asOf := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	expected := decimal.RequireFromString("1234.56")

	suite.mockLedgerRepo.On("BalanceAsOf", ctx, "1000", asOf).Return(expected, nil).Once()

	balance, err := suite.service.Balance(ctx, "1000", asOf)

	suite.Require().NoError(err)
	suite.True(balance.Equal(expected))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestTrialBalance_Balanced() {
	ctx := context.Background()
	periodID := uuid.NewString()
	tb := &domain.TrialBalance{
		PeriodID: periodID,
		Rows: []domain.TrialBalanceRow{
			{AccountCode: "1000", AccountName: "Cash", AccountType: domain.Asset, TotalDebit: decimal.RequireFromString("100.00"), TotalCredit: decimal.Zero},
			{AccountCode: "4000", AccountName: "Sales", AccountType: domain.Revenue, TotalDebit: decimal.Zero, TotalCredit: decimal.RequireFromString("100.00")},
		},
		Net: decimal.Zero,
	}

	suite.mockLedgerRepo.On("TrialBalance", ctx, periodID).Return(tb, nil).Once()

	resp, err := suite.service.TrialBalance(ctx, periodID)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.True(resp.Balanced)
	suite.Len(resp.Rows, 2)
}

func (suite *LedgerServiceTestSuite) TestTrialBalance_Imbalanced() {
	ctx := context.Background()
	periodID := uuid.NewString()
	tb := &domain.TrialBalance{
		PeriodID: periodID,
		Rows:     []domain.TrialBalanceRow{},
		Net:      decimal.RequireFromString("0.01"),
	}

	suite.mockLedgerRepo.On("TrialBalance", ctx, periodID).Return(tb, nil).Once()

	resp, err := suite.service.TrialBalance(ctx, periodID)

	// An imbalance is reported, not swallowed as an error.
	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.False(resp.Balanced)
	suite.True(resp.Net.Equal(decimal.RequireFromString("0.01")))
}

func (suite *LedgerServiceTestSuite) TestRebuild_Clean() {
	ctx := context.Background()
	result := &portsrepo.RebuildResult{EntriesReplayed: 42}

	suite.mockLedgerRepo.On("Rebuild", ctx, false).Return(result, nil).Once()
	suite.mockAuditRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	resp, err := suite.service.Rebuild(ctx, dto.RebuildRequest{}, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Equal(42, resp.EntriesReplayed)
	suite.Empty(resp.Drift)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRebuild_DriftDetected() {
	ctx := context.Background()
	result := &portsrepo.RebuildResult{
		EntriesReplayed: 42,
		Drift: []portsrepo.BalanceDrift{
			{
				AccountCode:   "1000",
				PeriodID:      uuid.NewString(),
				MaintainedNet: decimal.RequireFromString("100.00"),
				ReplayedNet:   decimal.RequireFromString("99.00"),
			},
		},
	}
	driftErr := fmt.Errorf("%w: 1 account/period totals diverged", apperrors.ErrProjectorDrift)

	suite.mockLedgerRepo.On("Rebuild", ctx, false).Return(result, driftErr).Once()
	suite.mockAuditRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	resp, err := suite.service.Rebuild(ctx, dto.RebuildRequest{}, suite.actorID)

	// Drift propagates as an error, but the diverged totals still come back
	// so the operator can see what broke.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrProjectorDrift)
	suite.Require().NotNil(resp)
	suite.Len(resp.Drift, 1)
	suite.Equal("1000", resp.Drift[0].AccountCode)
	suite.mockAuditRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRebuild_Forced() {
	ctx := context.Background()
	result := &portsrepo.RebuildResult{EntriesReplayed: 42}

	suite.mockLedgerRepo.On("Rebuild", ctx, true).Return(result, nil).Once()
	suite.mockAuditRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	resp, err := suite.service.Rebuild(ctx, dto.RebuildRequest{Force: true}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(42, resp.EntriesReplayed)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
