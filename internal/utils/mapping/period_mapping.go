package mapping

import (
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/models"
)

// ToModelPeriod converts a domain Period to a model Period
func ToModelPeriod(d domain.Period) models.Period {
	return models.Period{
		PeriodID:    d.PeriodID,
		Name:        d.Name,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Status:      models.PeriodStatus(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPeriod converts a model Period to a domain Period
func ToDomainPeriod(m models.Period) domain.Period {
	return domain.Period{
		PeriodID:    m.PeriodID,
		Name:        m.Name,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Status:      domain.PeriodStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPeriodSlice converts a slice of model Periods to domain Periods
func ToDomainPeriodSlice(ms []models.Period) []domain.Period {
	ds := make([]domain.Period, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPeriod(m)
	}
	return ds
}

// ToDomainSnapshot converts a model PeriodSnapshot to a domain PeriodSnapshot
func ToDomainSnapshot(m models.PeriodSnapshot) domain.PeriodSnapshot {
	return domain.PeriodSnapshot{
		PeriodID:    m.PeriodID,
		AccountCode: m.AccountCode,
		TotalDebit:  m.TotalDebit,
		TotalCredit: m.TotalCredit,
		Balance:     m.Balance,
		TakenAt:     m.TakenAt,
		TakenBy:     m.TakenBy,
	}
}
