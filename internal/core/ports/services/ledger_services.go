package services

import (
	"context"
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines the read-only query API for reporting collaborators.
type LedgerReaderSvc interface {
	// Balance computes an account's signed balance as of a date.
	Balance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)

	// TrialBalance retrieves the per-period trial balance. The Net field must
	// be zero for a healthy ledger; callers decide whether nonzero is fatal.
	TrialBalance(ctx context.Context, periodID string) (*dto.TrialBalanceResponse, error)

	// SubsidiaryBalances retrieves the per-counterparty projection for a tag.
	SubsidiaryBalances(ctx context.Context, counterpartyTag string) ([]domain.SubsidiaryBalance, error)
}

// LedgerRebuilderSvc rebuilds the projection from the journal.
type LedgerRebuilderSvc interface {
	// Rebuild replays the full journal and compares against the maintained
	// projection. Drift halts posting and surfaces for an operator.
	Rebuild(ctx context.Context, req dto.RebuildRequest, actorID string) (*dto.RebuildResponse, error)
}

// LedgerSvcFacade combines all ledger service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerRebuilderSvc
}
