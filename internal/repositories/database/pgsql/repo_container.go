package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	auditRepo := newPgxAuditRepository(dbPool)
	accountRepo := newPgxAccountRepository(dbPool, auditRepo)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo, ledgerRepo, auditRepo)
	periodRepo := newPgxPeriodRepository(dbPool, auditRepo)
	reconciliationRepo := newPgxReconciliationRepository(dbPool, journalRepo, auditRepo)

	return portsrepo.RepositoryProvider{
		AccountRepo:        accountRepo,
		JournalRepo:        journalRepo,
		LedgerRepo:         ledgerRepo,
		PeriodRepo:         periodRepo,
		ReconciliationRepo: reconciliationRepo,
		AuditRepo:          auditRepo,
	}
}
