package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

// AuditWriter appends to the audit log. There is deliberately no update or
// delete operation on this store.
type AuditWriter interface {
	// SaveRecord appends a record in its own transaction.
	SaveRecord(ctx context.Context, record domain.AuditRecord) error

	// SaveRecordInTx appends a record inside a caller-owned transaction so the
	// record is durable before the business mutation it describes commits.
	SaveRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error
}

// AuditReader defines read operations over the audit log.
type AuditReader interface {
	// ListRecordsByTarget retrieves the most recent records for one target.
	ListRecordsByTarget(ctx context.Context, targetType, targetID string, limit int) ([]domain.AuditRecord, error)
}

// AuditRepositoryFacade combines the audit repository interfaces.
type AuditRepositoryFacade interface {
	AuditWriter
	AuditReader
}
