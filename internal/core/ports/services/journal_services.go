package services

import (
	"context"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry together with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a token-paginated list of entries.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListLinesByAccount retrieves a token-paginated list of lines for one account.
	ListLinesByAccount(ctx context.Context, accountCode string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostEntry validates and atomically posts a balanced entry.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, actorID string) (*domain.JournalEntry, error)

	// ReverseEntry posts a reversing entry for a previously posted entry.
	// When the original period is closed or locked, the reversal lands in the
	// current open period instead.
	ReverseEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
