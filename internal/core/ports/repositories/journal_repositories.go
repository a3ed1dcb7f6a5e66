package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry without its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// ListEntries retrieves a token-paginated list of entries ordered by
	// (entry_date, created_at), the journal's canonical replay order.
	ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error)

	// ListLinesByAccount retrieves a token-paginated list of lines for one account.
	ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)

	// SourceIntentExists reports whether a (source, sourceID) pair has already posted.
	SourceIntentExists(ctx context.Context, source domain.EntrySource, sourceID string) (bool, error)
}

// JournalWriter defines write operations for journal data. Each method is one
// unit of atomicity: entry, lines, projection update and audit record commit
// together or not at all.
type JournalWriter interface {
	// SavePosting persists an entry with its lines, applies the projection
	// deltas, and writes the audit record, all in one transaction.
	SavePosting(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error

	// SaveReversal persists a reversing entry and links the original in the
	// same transaction.
	SaveReversal(ctx context.Context, reversal domain.JournalEntry, balanceChanges map[string]decimal.Decimal, originalEntryID string, audit domain.AuditRecord) error

	// SavePostingInTx is SavePosting running inside a caller-owned transaction.
	// Used by the reconciliation repository to settle atomically with the match.
	SavePostingInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
