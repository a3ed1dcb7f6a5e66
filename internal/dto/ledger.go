package dto

import (
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceResponse is the result of a point-in-time balance query.
type BalanceResponse struct {
	AccountCode string          `json:"accountCode"`
	AsOf        time.Time       `json:"asOf"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse wraps a period trial balance with its zero-sum check.
type TrialBalanceResponse struct {
	PeriodID string                   `json:"periodID"`
	Rows     []domain.TrialBalanceRow `json:"rows"`
	Net      decimal.Decimal          `json:"net"`
	Balanced bool                     `json:"balanced"`
}

// RebuildRequest triggers a projection rebuild.
type RebuildRequest struct {
	// Force overwrites the maintained projection from the journal even when
	// drift is detected. Operator use only.
	Force bool `json:"force"`
}

// RebuildResponse reports a projection rebuild outcome.
type RebuildResponse struct {
	EntriesReplayed int            `json:"entriesReplayed"`
	Drift           []DriftedTotal `json:"drift,omitempty"`
}

// DriftedTotal is one diverged account/period pair found during rebuild.
type DriftedTotal struct {
	AccountCode   string          `json:"accountCode"`
	PeriodID      string          `json:"periodID"`
	MaintainedNet decimal.Decimal `json:"maintainedNet"`
	ReplayedNet   decimal.Decimal `json:"replayedNet"`
}
