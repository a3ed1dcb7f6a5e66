package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

// AccountReader defines read operations for chart-of-accounts data
type AccountReader interface {
	// FindAccountByCode retrieves an account by its unique code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts, active and retired.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account.
	ListChildren(ctx context.Context, code string) ([]domain.Account, error)

	// HasPostedLines reports whether any journal line references the account.
	HasPostedLines(ctx context.Context, code string) (bool, error)
}

// AccountWriter defines write operations for chart-of-accounts data
type AccountWriter interface {
	// SaveAccount persists a new account together with its audit record.
	// Fails with ErrDuplicate when the code already exists.
	SaveAccount(ctx context.Context, account domain.Account, audit domain.AuditRecord) error

	// SetAccountActive flips the active flag. Accounts are never deleted.
	SetAccountActive(ctx context.Context, code string, active bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error
}

// AccountLocker defines in-transaction locking used by posting repositories to
// serialize concurrent postings touching the same accounts.
type AccountLocker interface {
	// FindAccountsByCodesForUpdate retrieves accounts by code and locks the rows.
	// Must be called within a transaction.
	FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error)
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountLocker
}
