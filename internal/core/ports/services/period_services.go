package services

import (
	"context"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// PeriodReaderSvc defines read operations for accounting periods.
type PeriodReaderSvc interface {
	// GetPeriod retrieves a period by id.
	GetPeriod(ctx context.Context, periodID string) (*domain.Period, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.Period, error)

	// ListSnapshots retrieves the balance snapshot taken when the period closed.
	ListSnapshots(ctx context.Context, periodID string) ([]domain.PeriodSnapshot, error)
}

// PeriodWriterSvc drives the period state machine.
type PeriodWriterSvc interface {
	// CreatePeriod opens a new period covering a date range no other period covers.
	CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, actorID string) (*domain.Period, error)

	// BeginClose moves an open period to pending_close after validation.
	BeginClose(ctx context.Context, periodID string, actorID string) error

	// ClosePeriod freezes a pending_close period and snapshots its balances.
	ClosePeriod(ctx context.Context, periodID string, actorID string) error

	// LockPeriod makes a closed period immutable, forbidding even reversals
	// against it.
	LockPeriod(ctx context.Context, periodID string, actorID string) error

	// ReopenPeriod is the privileged escape hatch, allowed only while no later
	// period has closed. Logged specially with the justification.
	ReopenPeriod(ctx context.Context, periodID string, justification string, actorID string) error
}

// PeriodSvcFacade combines all period service interfaces
type PeriodSvcFacade interface {
	PeriodReaderSvc
	PeriodWriterSvc
}
