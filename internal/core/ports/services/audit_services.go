package services

import (
	"context"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

// AuditSvcFacade records and reads the immutable audit log. Recording is
// fire-and-forget from the caller's perspective but durable before the
// triggering operation completes.
type AuditSvcFacade interface {
	// Record appends an audit record. oldValue/newValue are marshalled to JSON
	// snapshots; nil values are stored as null.
	Record(ctx context.Context, actorID, action, targetType, targetID string, oldValue, newValue any) error

	// ListByTarget retrieves the most recent records for one target.
	ListByTarget(ctx context.Context, targetType, targetID string, limit int) ([]domain.AuditRecord, error)
}
