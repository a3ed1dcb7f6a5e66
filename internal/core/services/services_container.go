package services

import (
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
)

// DefaultMetadataSchemas returns the registered attribute schemas per entry
// source. Sources absent from the map reject any metadata.
func DefaultMetadataSchemas() map[domain.EntrySource]domain.MetadataSchema {
	return map[domain.EntrySource]domain.MetadataSchema{
		domain.SourceInvoice: {
			Source: domain.SourceInvoice,
			Fields: map[string]domain.MetadataFieldSpec{
				// All optional: the invoice module emits bare transaction events
				// with no metadata, and those must post.
				"invoiceNumber": {Type: domain.MetadataString},
				"dueDate":       {Type: domain.MetadataDate},
				"poNumber":      {Type: domain.MetadataString},
			},
		},
		domain.SourcePayment: {
			Source: domain.SourcePayment,
			Fields: map[string]domain.MetadataFieldSpec{
				"bankReference": {Type: domain.MetadataString},
				"settledAmount": {Type: domain.MetadataNumber},
			},
		},
		domain.SourceAdjustment: {
			Source: domain.SourceAdjustment,
			Fields: map[string]domain.MetadataFieldSpec{
				"reason": {Type: domain.MetadataString},
			},
		},
		domain.SourceManual: {
			Source: domain.SourceManual,
			Fields: map[string]domain.MetadataFieldSpec{
				"note":     {Type: domain.MetadataString},
				"approver": {Type: domain.MetadataString},
			},
		},
	}
}

// NewServiceContainer wires the application services over the repository
// provider. This is the composition root used by main.
func NewServiceContainer(repos portsrepo.RepositoryProvider, matcherCfg MatcherConfig) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos.AccountRepo),
		Journal: NewJournalService(
			repos.JournalRepo,
			repos.AccountRepo,
			repos.LedgerRepo,
			repos.PeriodRepo,
			DefaultMetadataSchemas(),
		),
		Ledger:         NewLedgerService(repos.LedgerRepo, repos.AuditRepo),
		Reconciliation: NewReconciliationService(repos.ReconciliationRepo, repos.AccountRepo, repos.PeriodRepo, matcherCfg),
		Period:         NewPeriodService(repos.PeriodRepo, repos.LedgerRepo, repos.ReconciliationRepo),
		Audit:          NewAuditService(repos.AuditRepo),
	}
}
