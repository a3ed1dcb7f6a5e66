package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the lifecycle state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen         PeriodStatus = "OPEN"
	PeriodPendingClose PeriodStatus = "PENDING_CLOSE"
	PeriodClosed       PeriodStatus = "CLOSED"
	PeriodLocked       PeriodStatus = "LOCKED"
)

// Period is a bounded date range for posting and closing.
type Period struct {
	PeriodID  string       `json:"periodID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	AuditFields
}

// PeriodSnapshot is one account's frozen totals captured at period close.
type PeriodSnapshot struct {
	PeriodID    string          `json:"periodID"`
	AccountCode string          `json:"accountCode"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"`
	TakenAt     time.Time       `json:"takenAt"`
	TakenBy     string          `json:"takenBy"`
}
