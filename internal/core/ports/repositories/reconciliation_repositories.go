package repositories

import (
	"context"
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationReader defines read operations for the matcher's pools and records.
type ReconciliationReader interface {
	// ListUnmatchedTransactions retrieves the pool of external transactions
	// without an active match, in a consistent snapshot.
	ListUnmatchedTransactions(ctx context.Context) ([]domain.ExternalTransaction, error)

	// ListOpenInvoices retrieves invoices awaiting settlement.
	ListOpenInvoices(ctx context.Context) ([]domain.Invoice, error)

	// FindTransactionByID retrieves one external transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.ExternalTransaction, error)

	// FindInvoiceByID retrieves one invoice.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// FindMatchByID retrieves one match record.
	FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error)

	// ListMatches retrieves matches, optionally filtered by status.
	ListMatches(ctx context.Context, status *domain.MatchStatus) ([]domain.ReconciliationMatch, error)

	// CountPendingReviewInRange counts pending-review matches whose transaction
	// is dated within [start, end]. Used to gate period closing.
	CountPendingReviewInRange(ctx context.Context, start, end time.Time) (int, error)
}

// ReconciliationWriter defines mutations owned by the matcher.
type ReconciliationWriter interface {
	// SaveTransaction adds a bank line to the unmatched pool.
	// Fails with ErrDuplicate on a repeated external id.
	SaveTransaction(ctx context.Context, txn domain.ExternalTransaction, audit domain.AuditRecord) error

	// SaveInvoice enrolls an invoice into the open pool.
	SaveInvoice(ctx context.Context, invoice domain.Invoice, audit domain.AuditRecord) error

	// SaveMatch records a proposed match and, for auto matches, marks the
	// transaction matched, in one transaction.
	SaveMatch(ctx context.Context, match domain.ReconciliationMatch, audit domain.AuditRecord) error

	// ConfirmMatch settles a match: locks the invoice, verifies its version
	// against expectedVersion (ErrStaleInvoiceState on mismatch), posts the
	// settlement entry, reduces the invoice remaining by settledAmount, marks
	// the transaction matched and the match confirmed, atomically.
	ConfirmMatch(ctx context.Context, match domain.ReconciliationMatch, expectedVersion int64, settledAmount decimal.Decimal, settlement domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error

	// UpdateMatchStatus moves a match to rejected or deferred. Rejection
	// releases the transaction and invoice back into their pools.
	UpdateMatchStatus(ctx context.Context, matchID string, status domain.MatchStatus, justification string, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces.
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
