package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/m1ndvortex/goldledger/internal/middleware"
)

// periodService drives the period state machine. The service does friendly
// pre-checks; the repository re-validates every transition under an exclusive
// row lock on the period.
type periodService struct {
	periodRepo portsrepo.PeriodRepositoryFacade
	ledgerRepo portsrepo.LedgerRepositoryFacade
	reconRepo  portsrepo.ReconciliationRepositoryFacade
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(
	periodRepo portsrepo.PeriodRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	reconRepo portsrepo.ReconciliationRepositoryFacade,
) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo: periodRepo,
		ledgerRepo: ledgerRepo,
		reconRepo:  reconRepo,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// GetPeriod retrieves a period by id.
func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	return period, nil
}

// ListPeriods retrieves all periods ordered by start date.
func (s *periodService) ListPeriods(ctx context.Context) ([]domain.Period, error) {
	periods, err := s.periodRepo.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

// ListSnapshots retrieves the balance snapshot taken when the period closed.
func (s *periodService) ListSnapshots(ctx context.Context, periodID string) ([]domain.PeriodSnapshot, error) {
	if _, err := s.periodRepo.FindPeriodByID(ctx, periodID); err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	snapshots, err := s.periodRepo.ListSnapshots(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of period %s: %w", periodID, err)
	}
	return snapshots, nil
}

// CreatePeriod opens a new period. The repository's overlap constraint is the
// final arbiter against concurrent creation.
func (s *periodService) CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, actorID string) (*domain.Period, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: period end %s precedes start %s",
			apperrors.ErrValidation, req.EndDate.Format("2006-01-02"), req.StartDate.Format("2006-01-02"))
	}

	now := time.Now().UTC()
	period := domain.Period{
		PeriodID:  uuid.NewString(),
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit, err := newAuditRecord(actorID, domain.ActionPeriodCreated, "period", period.PeriodID, nil, period)
	if err != nil {
		return nil, err
	}

	if err := s.periodRepo.SavePeriod(ctx, period, audit); err != nil {
		logger.Error("Failed to save period", slog.String("name", req.Name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create period %s: %w", req.Name, err)
	}

	logger.Info("Period created", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	return &period, nil
}

// BeginClose moves an open period to pending_close. Requires the period trial
// balance to sum to zero and no pending-review matches dated inside the period.
func (s *periodService) BeginClose(ctx context.Context, periodID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if period.Status != domain.PeriodOpen {
		return fmt.Errorf("%w: period %s is %s, expected OPEN", apperrors.ErrConflict, periodID, period.Status)
	}

	tb, err := s.ledgerRepo.TrialBalance(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to compute trial balance for period %s: %w", periodID, err)
	}
	if !tb.Net.IsZero() {
		return fmt.Errorf("%w: period %s trial balance nets %s, cannot close",
			apperrors.ErrConflict, periodID, tb.Net.String())
	}

	pending, err := s.reconRepo.CountPendingReviewInRange(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return fmt.Errorf("failed to count pending-review matches: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%w: period %s has %d pending-review matches; resolve or defer them first",
			apperrors.ErrConflict, periodID, pending)
	}

	pendingPeriod := *period
	pendingPeriod.Status = domain.PeriodPendingClose
	audit, err := newAuditRecord(actorID, domain.ActionPeriodPending, "period", periodID, period, pendingPeriod)
	if err != nil {
		return err
	}

	if err := s.periodRepo.BeginClose(ctx, periodID, audit); err != nil {
		logger.Error("Failed to begin period close", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin close of period %s: %w", periodID, err)
	}

	logger.Info("Period close started", slog.String("period_id", periodID))
	return nil
}

// ClosePeriod freezes a pending_close period and snapshots its balances.
func (s *periodService) ClosePeriod(ctx context.Context, periodID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if period.Status != domain.PeriodPendingClose {
		return fmt.Errorf("%w: period %s is %s, expected PENDING_CLOSE", apperrors.ErrConflict, periodID, period.Status)
	}

	closed := *period
	closed.Status = domain.PeriodClosed
	audit, err := newAuditRecord(actorID, domain.ActionPeriodClosed, "period", periodID, period, closed)
	if err != nil {
		return err
	}

	if err := s.periodRepo.Close(ctx, periodID, audit); err != nil {
		logger.Error("Failed to close period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to close period %s: %w", periodID, err)
	}

	logger.Info("Period closed", slog.String("period_id", periodID))
	return nil
}

// LockPeriod makes a closed period immutable, forbidding even reversals against it.
func (s *periodService) LockPeriod(ctx context.Context, periodID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if period.Status != domain.PeriodClosed {
		return fmt.Errorf("%w: period %s is %s, expected CLOSED", apperrors.ErrConflict, periodID, period.Status)
	}

	locked := *period
	locked.Status = domain.PeriodLocked
	audit, err := newAuditRecord(actorID, domain.ActionPeriodLocked, "period", periodID, period, locked)
	if err != nil {
		return err
	}

	if err := s.periodRepo.Lock(ctx, periodID, audit); err != nil {
		logger.Error("Failed to lock period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to lock period %s: %w", periodID, err)
	}

	logger.Info("Period locked", slog.String("period_id", periodID))
	return nil
}

// ReopenPeriod is the privileged escape hatch: closed back to open, allowed
// only while no later period has closed.
func (s *periodService) ReopenPeriod(ctx context.Context, periodID string, justification string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if justification == "" {
		return fmt.Errorf("%w: reopening a period requires a justification", apperrors.ErrValidation)
	}

	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	if period.Status != domain.PeriodClosed {
		return fmt.Errorf("%w: period %s is %s, expected CLOSED", apperrors.ErrConflict, periodID, period.Status)
	}

	laterClosed, err := s.periodRepo.HasClosedPeriodAfter(ctx, period.EndDate)
	if err != nil {
		return fmt.Errorf("failed to check later periods: %w", err)
	}
	if laterClosed {
		return fmt.Errorf("%w: a later period has closed, period %s cannot reopen", apperrors.ErrForbidden, periodID)
	}

	reopened := *period
	reopened.Status = domain.PeriodOpen
	audit, err := newAuditRecord(actorID, domain.ActionPeriodReopened, "period", periodID,
		map[string]any{"period": period, "justification": justification},
		reopened)
	if err != nil {
		return err
	}

	if err := s.periodRepo.Reopen(ctx, periodID, audit); err != nil {
		logger.Error("Failed to reopen period", slog.String("period_id", periodID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to reopen period %s: %w", periodID, err)
	}

	logger.Warn("Period reopened",
		slog.String("period_id", periodID),
		slog.String("actor_id", actorID),
		slog.String("justification", justification),
	)
	return nil
}
