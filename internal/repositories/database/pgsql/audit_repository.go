package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	"github.com/m1ndvortex/goldledger/internal/models"
	"github.com/m1ndvortex/goldledger/internal/utils/mapping"
)

const insertAuditRecordSQL = `
	INSERT INTO audit_records (record_id, actor_id, action, target_type, target_id, old_value, new_value, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit log.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// SaveRecord appends a record in its own transaction.
func (r *PgxAuditRepository) SaveRecord(ctx context.Context, record domain.AuditRecord) error {
	m := mapping.ToModelAuditRecord(record)
	_, err := r.Pool.Exec(ctx, insertAuditRecordSQL,
		m.RecordID, m.ActorID, m.Action, m.TargetType, m.TargetID, m.OldValue, m.NewValue, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to save audit record %s: %w", m.RecordID, err)
	}
	return nil
}

// SaveRecordInTx appends a record inside a caller-owned transaction. The
// posting repositories use this so the audit row commits with the mutation.
func (r *PgxAuditRepository) SaveRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	m := mapping.ToModelAuditRecord(record)
	_, err := tx.Exec(ctx, insertAuditRecordSQL,
		m.RecordID, m.ActorID, m.Action, m.TargetType, m.TargetID, m.OldValue, m.NewValue, m.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to save audit record %s in tx: %w", m.RecordID, err)
	}
	return nil
}

// ListRecordsByTarget retrieves the most recent records for one target.
func (r *PgxAuditRepository) ListRecordsByTarget(ctx context.Context, targetType, targetID string, limit int) ([]domain.AuditRecord, error) {
	query := `
		SELECT record_id, actor_id, action, target_type, target_id, old_value, new_value, recorded_at
		FROM audit_records
		WHERE target_type = $1 AND target_id = $2
		ORDER BY recorded_at DESC
		LIMIT $3;
	`
	rows, err := r.Pool.Query(ctx, query, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records for %s/%s: %w", targetType, targetID, err)
	}
	defer rows.Close()

	records := []models.AuditRecord{}
	for rows.Next() {
		var m models.AuditRecord
		err := rows.Scan(&m.RecordID, &m.ActorID, &m.Action, &m.TargetType, &m.TargetID, &m.OldValue, &m.NewValue, &m.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record row: %w", err)
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit record rows: %w", err)
	}
	return mapping.ToDomainAuditRecordSlice(records), nil
}
