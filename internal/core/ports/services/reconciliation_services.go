package services

import (
	"context"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/dto"
)

// ReconciliationPoolSvc manages the matcher's input pools.
type ReconciliationPoolSvc interface {
	// IngestTransaction adds a bank line to the unmatched pool.
	IngestTransaction(ctx context.Context, req dto.IngestTransactionRequest, actorID string) (*domain.ExternalTransaction, error)

	// EnrollInvoice registers an open invoice awaiting settlement.
	EnrollInvoice(ctx context.Context, req dto.EnrollInvoiceRequest, actorID string) (*domain.Invoice, error)
}

// ReconciliationMatcherSvc runs the scored matching batch.
type ReconciliationMatcherSvc interface {
	// ProposeMatches scores every unmatched transaction against the open
	// invoices and records auto or pending-review matches. Re-runnable without
	// duplicating matches; cancellable between transactions via ctx.
	ProposeMatches(ctx context.Context, actorID string) (*dto.ProposeMatchesResponse, error)
}

// ReconciliationReviewSvc covers the reviewer actions on proposed matches.
type ReconciliationReviewSvc interface {
	// ConfirmMatch settles a pending match, posting the settlement entry.
	// Fails with ErrStaleInvoiceState when the invoice changed since proposal.
	ConfirmMatch(ctx context.Context, matchID string, actorID string) error

	// RejectMatch releases the transaction and invoice back into their pools.
	RejectMatch(ctx context.Context, matchID string, actorID string) error

	// DeferMatch parks a pending match with an explicit justification,
	// unblocking period close without resolving it.
	DeferMatch(ctx context.Context, matchID string, justification string, actorID string) error

	// ListMatches retrieves matches, optionally filtered by status.
	ListMatches(ctx context.Context, status *domain.MatchStatus) ([]domain.ReconciliationMatch, error)
}

// ReconciliationSvcFacade combines all reconciliation service interfaces
type ReconciliationSvcFacade interface {
	ReconciliationPoolSvc
	ReconciliationMatcherSvc
	ReconciliationReviewSvc
}
