package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/m1ndvortex/goldledger/internal/middleware"
)

// ledgerService exposes the derived projections. It never mutates the journal:
// reads come from the maintained tables, rebuilds replay the journal.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	auditRepo  portsrepo.AuditRepositoryFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, auditRepo portsrepo.AuditRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, auditRepo: auditRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Balance computes an account's signed balance as of a date, straight from the
// journal so point-in-time queries never depend on projection freshness.
func (s *ledgerService) Balance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	balance, err := s.ledgerRepo.BalanceAsOf(ctx, accountCode, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance of %s: %w", accountCode, err)
	}
	return balance, nil
}

// TrialBalance retrieves the per-period trial balance with its zero-sum check.
func (s *ledgerService) TrialBalance(ctx context.Context, periodID string) (*dto.TrialBalanceResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tb, err := s.ledgerRepo.TrialBalance(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trial balance for period %s: %w", periodID, err)
	}

	balanced := tb.Net.IsZero()
	if !balanced {
		// A nonzero net means the double-entry invariant broke somewhere.
		// Surface loudly; the caller decides whether to halt.
		logger.Error("Trial balance does not sum to zero",
			slog.String("period_id", periodID),
			slog.String("net", tb.Net.String()),
		)
	}

	return &dto.TrialBalanceResponse{
		PeriodID: periodID,
		Rows:     tb.Rows,
		Net:      tb.Net,
		Balanced: balanced,
	}, nil
}

// SubsidiaryBalances retrieves the per-counterparty projection for a tag.
func (s *ledgerService) SubsidiaryBalances(ctx context.Context, counterpartyTag string) ([]domain.SubsidiaryBalance, error) {
	balances, err := s.ledgerRepo.SubsidiaryBalances(ctx, counterpartyTag)
	if err != nil {
		return nil, fmt.Errorf("failed to list subsidiary balances for %s: %w", counterpartyTag, err)
	}
	return balances, nil
}

// Rebuild replays the full journal against the maintained projection. Detected
// drift halts posting and is treated as an incident, not silently repaired,
// unless the operator forces the overwrite.
func (s *ledgerService) Rebuild(ctx context.Context, req dto.RebuildRequest, actorID string) (*dto.RebuildResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result, err := s.ledgerRepo.Rebuild(ctx, req.Force)
	if err != nil && !errors.Is(err, apperrors.ErrProjectorDrift) {
		logger.Error("Projection rebuild failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to rebuild projection: %w", err)
	}

	resp := &dto.RebuildResponse{}
	if result != nil {
		resp.EntriesReplayed = result.EntriesReplayed
		resp.Drift = make([]dto.DriftedTotal, len(result.Drift))
		for i, d := range result.Drift {
			resp.Drift[i] = dto.DriftedTotal{
				AccountCode:   d.AccountCode,
				PeriodID:      d.PeriodID,
				MaintainedNet: d.MaintainedNet,
				ReplayedNet:   d.ReplayedNet,
			}
		}
	}

	audit, auditErr := newAuditRecord(actorID, domain.ActionLedgerRebuilt, "ledger", "projection", nil, resp)
	if auditErr != nil {
		return nil, auditErr
	}
	if saveErr := s.auditRepo.SaveRecord(ctx, audit); saveErr != nil {
		logger.Error("Failed to record rebuild audit", slog.String("error", saveErr.Error()))
		return nil, fmt.Errorf("failed to record rebuild: %w", saveErr)
	}

	if err != nil {
		logger.Error("Projection drift detected, posting halted",
			slog.Int("drifted_totals", len(resp.Drift)),
			slog.Int("entries_replayed", resp.EntriesReplayed),
		)
		return resp, err
	}

	logger.Info("Projection rebuilt",
		slog.Int("entries_replayed", resp.EntriesReplayed),
		slog.Bool("forced", req.Force),
	)
	return resp, nil
}
