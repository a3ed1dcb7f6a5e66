package services

import (
	"context"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// AccountReaderSvc defines read operations over the chart of accounts
type AccountReaderSvc interface {
	// GetAccount retrieves an account by its code.
	GetAccount(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves the full chart of accounts.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account.
	ListChildren(ctx context.Context, code string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations over the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount registers a new account in the chart.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error)

	// RetireAccount marks an unused account inactive. Accounts are never deleted.
	RetireAccount(ctx context.Context, code string, actorID string) error
}

// AccountSvcFacade combines all chart-of-accounts service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
