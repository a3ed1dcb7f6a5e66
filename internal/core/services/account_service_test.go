package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/core/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
	actorID  string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
	suite.actorID = uuid.NewString()
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode: "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AuditRecord")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal("1000", created.AccountCode)
	suite.Equal(domain.Asset, created.AccountType)
	suite.True(created.IsActive)
	suite.Equal(suite.actorID, created.CreatedBy)
	suite.WithinDuration(time.Now(), created.CreatedAt, time.Second)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode: "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}

	existing := &domain.Account{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true}
	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(existing, nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrDuplicateAccountCode)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_UnknownType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode: "1000",
		Name:        "Cash",
		AccountType: domain.AccountType("GOLD"),
	}

	created, err := suite.service.CreateAccount(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_SelfParent() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode: "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		ParentCode:  "1000",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()

	created, err := suite.service.CreateAccount(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_MissingParent() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode: "1010",
		Name:        "Petty Cash",
		AccountType: domain.Asset,
		ParentCode:  "1000",
	}

	suite.mockRepo.On("FindAccountByCode", ctx, "1010").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()

	created, err := suite.service.CreateAccount(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentCycle() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountCode: "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		ParentCode:  "1010",
	}

	// 1010's parent chain points back at the account being created.
	parent := &domain.Account{AccountCode: "1010", Name: "Petty Cash", AccountType: domain.Asset, ParentCode: "1000", IsActive: true}
	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByCode", ctx, "1010").Return(parent, nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(created)
	suite.ErrorIs(err, apperrors.ErrInvalidParent)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRetireAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(account, nil).Once()
	suite.mockRepo.On("HasPostedLines", ctx, "1000").Return(false, nil).Once()
	suite.mockRepo.On("SetAccountActive", ctx, "1000", false, mock.AnythingOfType("domain.AuditRecord"), suite.actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.RetireAccount(ctx, "1000", suite.actorID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRetireAccount_InUse() {
	ctx := context.Background()
	account := &domain.Account{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: true}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(account, nil).Once()
	suite.mockRepo.On("HasPostedLines", ctx, "1000").Return(true, nil).Once()

	err := suite.service.RetireAccount(ctx, "1000", suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountInUse)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetAccountActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRetireAccount_AlreadyRetired() {
	ctx := context.Background()
	account := &domain.Account{AccountCode: "1000", Name: "Cash", AccountType: domain.Asset, IsActive: false}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(account, nil).Once()

	err := suite.service.RetireAccount(ctx, "1000", suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestListChildren_MissingParent() {
	ctx := context.Background()
	suite.mockRepo.On("FindAccountByCode", ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	children, err := suite.service.ListChildren(ctx, "9999")

	suite.Require().Error(err)
	suite.Nil(children)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListChildren", mock.Anything, mock.Anything)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
