package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the lifecycle state of an accounting period.
// Transitions only move forward: open -> pending_close -> closed -> locked.
// A privileged reopen may move closed back to open while no later period has closed.
type PeriodStatus string

const (
	PeriodOpen         PeriodStatus = "OPEN"
	PeriodPendingClose PeriodStatus = "PENDING_CLOSE"
	PeriodClosed       PeriodStatus = "CLOSED"
	PeriodLocked       PeriodStatus = "LOCKED"
)

// Period is a bounded date range whose entries are balanced and eventually frozen.
// At most one period covers any given date.
type Period struct {
	PeriodID  string       `json:"periodID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"` // Inclusive
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// Covers reports whether the given date falls inside the period.
func (p Period) Covers(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate.Truncate(24*time.Hour)) && !d.After(p.EndDate.Truncate(24*time.Hour))
}

// AcceptsPostings reports whether new entries may post into the period.
func (p Period) AcceptsPostings() bool {
	return p.Status == PeriodOpen || p.Status == PeriodPendingClose
}

// PeriodSnapshot is the immutable per-account balance captured when a period closes.
type PeriodSnapshot struct {
	PeriodID    string          `json:"periodID"`
	AccountCode string          `json:"accountCode"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"` // Signed by the account's normal side
	TakenAt     time.Time       `json:"takenAt"`
	TakenBy     string          `json:"takenBy"`
}
