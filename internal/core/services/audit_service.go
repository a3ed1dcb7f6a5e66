package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/middleware"
)

// auditService provides the append-only audit log.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// Record appends an audit record. Durable before the caller's operation is
// considered complete: the repository write is synchronous.
func (s *auditService) Record(ctx context.Context, actorID, action, targetType, targetID string, oldValue, newValue any) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := newAuditRecord(actorID, action, targetType, targetID, oldValue, newValue)
	if err != nil {
		logger.Error("Failed to build audit record", slog.String("action", action), slog.String("error", err.Error()))
		return err
	}

	if err := s.auditRepo.SaveRecord(ctx, record); err != nil {
		logger.Error("Failed to save audit record", slog.String("action", action), slog.String("target_id", targetID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

// ListByTarget retrieves the most recent audit records for one target.
func (s *auditService) ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	records, err := s.auditRepo.ListRecordsByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}

// newAuditRecord builds an audit record, snapshotting old/new values as JSON.
// Shared by the services that write audit records inside repository transactions.
func newAuditRecord(actorID, action, targetType, targetID string, oldValue, newValue any) (domain.AuditRecord, error) {
	record := domain.AuditRecord{
		RecordID:   uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		RecordedAt: time.Now().UTC(),
	}
	if oldValue != nil {
		snapshot, err := json.Marshal(oldValue)
		if err != nil {
			return domain.AuditRecord{}, fmt.Errorf("failed to snapshot old value for %s: %w", action, err)
		}
		record.OldValue = snapshot
	}
	if newValue != nil {
		snapshot, err := json.Marshal(newValue)
		if err != nil {
			return domain.AuditRecord{}, fmt.Errorf("failed to snapshot new value for %s: %w", action, err)
		}
		record.NewValue = snapshot
	}
	return record, nil
}
