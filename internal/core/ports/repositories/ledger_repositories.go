package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over the derived ledger projections.
type LedgerReader interface {
	// BalanceAsOf computes an account's signed balance from the journal up to
	// and including the given date.
	BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)

	// TrialBalance retrieves the maintained per-period projection with its
	// zero-sum self check.
	TrialBalance(ctx context.Context, periodID string) (*domain.TrialBalance, error)

	// AccountBalances retrieves the maintained totals for one period.
	AccountBalances(ctx context.Context, periodID string) ([]domain.AccountBalance, error)

	// SubsidiaryBalances retrieves per-counterparty totals filtered by tag.
	SubsidiaryBalances(ctx context.Context, counterpartyTag string) ([]domain.SubsidiaryBalance, error)

	// PostingHalted reports whether posting is halted pending operator action.
	PostingHalted(ctx context.Context) (bool, error)
}

// LedgerWriter defines mutations of the derived projections. The projection is
// never hand-edited: writes happen only as part of posting or a full rebuild.
type LedgerWriter interface {
	// ApplyEntryInTx applies one entry's totals to the maintained projection
	// inside a caller-owned transaction. Returns false without touching the
	// projection when the entry id was already applied (idempotent replay).
	ApplyEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, lines []domain.JournalLine, periodID string) (bool, error)

	// Rebuild recomputes the projection from the full journal in replay order.
	// When the recomputed totals disagree with the maintained ones it returns
	// ErrProjectorDrift, halts posting, and leaves the projection untouched
	// unless force is set.
	Rebuild(ctx context.Context, force bool) (*RebuildResult, error)
}

// RebuildResult reports the outcome of a projection rebuild.
type RebuildResult struct {
	EntriesReplayed int
	Drift           []BalanceDrift
}

// BalanceDrift is one account/period whose maintained totals diverged from the journal.
type BalanceDrift struct {
	AccountCode   string
	PeriodID      string
	MaintainedNet decimal.Decimal
	ReplayedNet   decimal.Decimal
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
