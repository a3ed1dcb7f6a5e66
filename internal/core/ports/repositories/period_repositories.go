package repositories

import (
	"context"
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods.
type PeriodReader interface {
	// FindPeriodByID retrieves a period by id.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error)

	// FindPeriodByDate retrieves the single period covering the date, if any.
	FindPeriodByDate(ctx context.Context, date time.Time) (*domain.Period, error)

	// FindOpenPeriod retrieves the earliest period still open for posting.
	FindOpenPeriod(ctx context.Context) (*domain.Period, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.Period, error)

	// HasClosedPeriodAfter reports whether any period ending after the given
	// date has reached closed or locked. Guards the privileged reopen.
	HasClosedPeriodAfter(ctx context.Context, endDate time.Time) (bool, error)

	// ListSnapshots retrieves the immutable balance snapshot taken at close.
	ListSnapshots(ctx context.Context, periodID string) ([]domain.PeriodSnapshot, error)
}

// PeriodWriter defines period mutations. Every transition takes an exclusive
// row lock on the period for the duration of validation, blocking concurrent
// postings into it, and re-validates inside the transaction.
type PeriodWriter interface {
	// SavePeriod persists a new period, failing when it overlaps an existing one.
	SavePeriod(ctx context.Context, period domain.Period, audit domain.AuditRecord) error

	// BeginClose moves open -> pending_close after verifying a zero trial
	// balance and no pending-review matches dated within the period.
	BeginClose(ctx context.Context, periodID string, audit domain.AuditRecord) error

	// Close moves pending_close -> closed and takes the balance snapshot.
	Close(ctx context.Context, periodID string, audit domain.AuditRecord) error

	// Lock moves closed -> locked.
	Lock(ctx context.Context, periodID string, audit domain.AuditRecord) error

	// Reopen moves closed -> open. Callers must have verified no later period
	// has closed; the repository re-checks under the lock.
	Reopen(ctx context.Context, periodID string, audit domain.AuditRecord) error
}

// PeriodRepositoryFacade combines all period repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
