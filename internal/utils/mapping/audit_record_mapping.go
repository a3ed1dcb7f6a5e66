package mapping

import (
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/models"
)

// ToModelAuditRecord converts a domain AuditRecord to a model AuditRecord
func ToModelAuditRecord(d domain.AuditRecord) models.AuditRecord {
	return models.AuditRecord{
		RecordID:   d.RecordID,
		ActorID:    d.ActorID,
		Action:     d.Action,
		TargetType: d.TargetType,
		TargetID:   d.TargetID,
		OldValue:   d.OldValue,
		NewValue:   d.NewValue,
		RecordedAt: d.RecordedAt,
	}
}

// ToDomainAuditRecord converts a model AuditRecord to a domain AuditRecord
func ToDomainAuditRecord(m models.AuditRecord) domain.AuditRecord {
	return domain.AuditRecord{
		RecordID:   m.RecordID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		OldValue:   m.OldValue,
		NewValue:   m.NewValue,
		RecordedAt: m.RecordedAt,
	}
}

// ToDomainAuditRecordSlice converts model AuditRecords to domain ones
func ToDomainAuditRecordSlice(ms []models.AuditRecord) []domain.AuditRecord {
	ds := make([]domain.AuditRecord, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAuditRecord(m)
	}
	return ds
}
