package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/m1ndvortex/goldledger/internal/middleware"
)

// accountService manages the chart of accounts.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account in the chart of accounts.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %s", apperrors.ErrValidation, req.AccountType)
	}

	// Reject duplicates up front for a friendly error; the repository enforces
	// the unique constraint against races.
	existing, err := s.accountRepo.FindAccountByCode(ctx, req.AccountCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing account", slog.String("account_code", req.AccountCode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check account code %s: %w", req.AccountCode, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccountCode, req.AccountCode)
	}

	if req.ParentCode != "" {
		if err := s.validateParent(ctx, req.AccountCode, req.ParentCode); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountCode: req.AccountCode,
		Name:        req.Name,
		AccountType: req.AccountType,
		ParentCode:  req.ParentCode,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit, err := newAuditRecord(actorID, domain.ActionAccountCreated, "account", account.AccountCode, nil, account)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, account, audit); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccountCode, req.AccountCode)
		}
		logger.Error("Failed to save account", slog.String("account_code", req.AccountCode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_code", account.AccountCode), slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

// validateParent ensures the parent exists and linking to it cannot create a
// cycle. Parents are referenced by code through an id map, never by live
// object pointers, so the only possible cycle is through the code chain.
func (s *accountService) validateParent(ctx context.Context, code, parentCode string) error {
	if parentCode == code {
		return fmt.Errorf("%w: account %s cannot be its own parent", apperrors.ErrInvalidParent, code)
	}

	seen := map[string]struct{}{code: {}}
	current := parentCode
	for current != "" {
		if _, ok := seen[current]; ok {
			return fmt.Errorf("%w: linking %s under %s creates a cycle", apperrors.ErrInvalidParent, code, parentCode)
		}
		seen[current] = struct{}{}

		parent, err := s.accountRepo.FindAccountByCode(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrInvalidParent, current)
			}
			return fmt.Errorf("failed to resolve parent chain at %s: %w", current, err)
		}
		current = parent.ParentCode
	}
	return nil
}

// GetAccount retrieves an account by its code.
func (s *accountService) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

// ListAccounts retrieves the full chart of accounts.
func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// ListChildren retrieves the direct children of an account.
func (s *accountService) ListChildren(ctx context.Context, code string) ([]domain.Account, error) {
	// Resolve the parent first so a missing code is reported as such rather
	// than as an empty child list.
	if _, err := s.accountRepo.FindAccountByCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	children, err := s.accountRepo.ListChildren(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", code, err)
	}
	return children, nil
}

// RetireAccount marks an account inactive. Accounts referenced by any posted
// line cannot be retired, and no account is ever deleted.
func (s *accountService) RetireAccount(ctx context.Context, code string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", code, err)
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already retired", apperrors.ErrConflict, code)
	}

	inUse, err := s.accountRepo.HasPostedLines(ctx, code)
	if err != nil {
		logger.Error("Failed to check account usage", slog.String("account_code", code), slog.String("error", err.Error()))
		return fmt.Errorf("failed to check usage of account %s: %w", code, err)
	}
	if inUse {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountInUse, code)
	}

	retired := *account
	retired.IsActive = false
	audit, err := newAuditRecord(actorID, domain.ActionAccountRetired, "account", code, account, retired)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.accountRepo.SetAccountActive(ctx, code, false, audit, actorID, now); err != nil {
		logger.Error("Failed to retire account", slog.String("account_code", code), slog.String("error", err.Error()))
		return fmt.Errorf("failed to retire account %s: %w", code, err)
	}

	logger.Info("Account retired", slog.String("account_code", code))
	return nil
}
