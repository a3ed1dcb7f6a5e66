package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/m1ndvortex/goldledger/internal/middleware"
	"github.com/m1ndvortex/goldledger/internal/utils/accounting"
	"github.com/m1ndvortex/goldledger/internal/utils/matching"
)

// MatcherConfig carries the matcher thresholds and the accounts settlement
// entries post against.
type MatcherConfig struct {
	// AutoMatchThreshold is the minimum confidence for an automatic match.
	AutoMatchThreshold float64
	// ReviewThreshold is the minimum confidence to surface for manual review.
	ReviewThreshold float64
	// AmbiguityWindow is the confidence gap under which the top two candidates
	// are considered a tie requiring manual resolution.
	AmbiguityWindow float64
	// CashAccount is debited by settlement entries.
	CashAccount string
	// ReceivableAccount is credited by settlement entries.
	ReceivableAccount string
}

// reconciliationService matches external transactions against open invoices
// and settles confirmed matches through the journal.
type reconciliationService struct {
	reconRepo   portsrepo.ReconciliationRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
	cfg         MatcherConfig
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	reconRepo portsrepo.ReconciliationRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	cfg MatcherConfig,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo:   reconRepo,
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		cfg:         cfg,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// IngestTransaction adds a bank line to the unmatched pool.
func (s *reconciliationService) IngestTransaction(ctx context.Context, req dto.IngestTransactionRequest, actorID string) (*domain.ExternalTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transaction amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	txn := domain.ExternalTransaction{
		TransactionID: uuid.NewString(),
		ExternalID:    req.ExternalID,
		Amount:        req.Amount,
		TxnDate:       req.Date,
		Description:   req.Description,
		Matched:       false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit, err := newAuditRecord(actorID, domain.ActionTxnIngested, "external_transaction", txn.TransactionID, nil, txn)
	if err != nil {
		return nil, err
	}

	if err := s.reconRepo.SaveTransaction(ctx, txn, audit); err != nil {
		logger.Error("Failed to save external transaction", slog.String("external_id", req.ExternalID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to ingest transaction %s: %w", req.ExternalID, err)
	}

	logger.Info("External transaction ingested", slog.String("transaction_id", txn.TransactionID), slog.String("external_id", req.ExternalID))
	return &txn, nil
}

// EnrollInvoice registers an open invoice awaiting settlement.
func (s *reconciliationService) EnrollInvoice(ctx context.Context, req dto.EnrollInvoiceRequest, actorID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: invoice amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		InvoiceID:       uuid.NewString(),
		Reference:       req.Reference,
		CounterpartyTag: req.CounterpartyTag,
		Amount:          req.Amount,
		Remaining:       req.Amount,
		InvoiceDate:     req.Date,
		Status:          domain.InvoiceOpen,
		Version:         1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit, err := newAuditRecord(actorID, domain.ActionInvoiceEnrolled, "invoice", invoice.InvoiceID, nil, invoice)
	if err != nil {
		return nil, err
	}

	if err := s.reconRepo.SaveInvoice(ctx, invoice, audit); err != nil {
		logger.Error("Failed to enroll invoice", slog.String("reference", req.Reference), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to enroll invoice %s: %w", req.Reference, err)
	}

	logger.Info("Invoice enrolled", slog.String("invoice_id", invoice.InvoiceID), slog.String("reference", req.Reference))
	return &invoice, nil
}

// ProposeMatches scores every unmatched transaction against the open invoices.
// Both pools are snapshotted once at the start so the run is deterministic.
// An invoice claimed earlier in the same run is skipped for later transactions.
func (s *reconciliationService) ProposeMatches(ctx context.Context, actorID string) (*dto.ProposeMatchesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txns, err := s.reconRepo.ListUnmatchedTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unmatched transactions: %w", err)
	}
	invoices, err := s.reconRepo.ListOpenInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open invoices: %w", err)
	}

	resp := &dto.ProposeMatchesResponse{
		Proposed:  []dto.MatchResponse{},
		Ambiguous: []dto.MatchResponse{},
		Scanned:   len(txns),
	}
	claimed := make(map[string]struct{})

	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matching batch cancelled: %w", err)
		}

		available := make([]domain.Invoice, 0, len(invoices))
		for _, inv := range invoices {
			if _, taken := claimed[inv.InvoiceID]; !taken {
				available = append(available, inv)
			}
		}

		candidates := matching.Rank(txn, available)
		if len(candidates) == 0 || candidates[0].Score < s.cfg.ReviewThreshold {
			resp.Unmatched++
			continue
		}

		best := candidates[0]
		status := domain.MatchPendingReview
		reason := ""
		switch {
		case matching.Ambiguous(candidates, s.cfg.AmbiguityWindow) && candidates[1].Score >= s.cfg.ReviewThreshold:
			// Two candidates inside the window: never auto-resolve, even above
			// the auto threshold. The earliest-dated invoice leads the proposal.
			reason = fmt.Errorf("%w: runner-up %s scored %.2f within %.2f of leader",
				apperrors.ErrReconciliationAmbiguous,
				candidates[1].Invoice.InvoiceID, candidates[1].Score, s.cfg.AmbiguityWindow).Error()
		case best.Score >= s.cfg.AutoMatchThreshold:
			status = domain.MatchAutoMatched
		}

		now := time.Now().UTC()
		match := domain.ReconciliationMatch{
			MatchID:        uuid.NewString(),
			TransactionID:  txn.TransactionID,
			InvoiceID:      best.Invoice.InvoiceID,
			Confidence:     best.Score,
			Status:         status,
			InvoiceVersion: best.Invoice.Version,
			Reason:         reason,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}

		audit, err := newAuditRecord(actorID, domain.ActionMatchProposed, "reconciliation_match", match.MatchID, nil, match)
		if err != nil {
			return nil, err
		}
		if err := s.reconRepo.SaveMatch(ctx, match, audit); err != nil {
			logger.Error("Failed to save match",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("invoice_id", best.Invoice.InvoiceID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("failed to save match for transaction %s: %w", txn.TransactionID, err)
		}

		claimed[best.Invoice.InvoiceID] = struct{}{}
		if reason != "" {
			resp.Ambiguous = append(resp.Ambiguous, dto.ToMatchResponse(&match))
		} else {
			resp.Proposed = append(resp.Proposed, dto.ToMatchResponse(&match))
		}
	}

	logger.Info("Matching batch complete",
		slog.Int("scanned", resp.Scanned),
		slog.Int("proposed", len(resp.Proposed)),
		slog.Int("ambiguous", len(resp.Ambiguous)),
		slog.Int("unmatched", resp.Unmatched),
	)
	return resp, nil
}

// ConfirmMatch settles a match: posts the settlement entry and reduces the
// invoice, guarded by the invoice version captured at proposal time.
func (s *reconciliationService) ConfirmMatch(ctx context.Context, matchID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	match, err := s.reconRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to find match %s: %w", matchID, err)
	}
	switch match.Status {
	case domain.MatchPendingReview, domain.MatchAutoMatched, domain.MatchDeferred:
		// confirmable
	default:
		return fmt.Errorf("%w: match %s is %s", apperrors.ErrConflict, matchID, match.Status)
	}

	txn, err := s.reconRepo.FindTransactionByID(ctx, match.TransactionID)
	if err != nil {
		return fmt.Errorf("failed to find transaction %s: %w", match.TransactionID, err)
	}
	invoice, err := s.reconRepo.FindInvoiceByID(ctx, match.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to find invoice %s: %w", match.InvoiceID, err)
	}
	if invoice.Status != domain.InvoiceOpen {
		return fmt.Errorf("%w: invoice %s already settled", apperrors.ErrStaleInvoiceState, invoice.InvoiceID)
	}
	// The repository re-checks the version under the row lock; this pre-check
	// rejects obviously stale matches without building a settlement entry.
	if invoice.Version != match.InvoiceVersion {
		return fmt.Errorf("%w: invoice %s is at version %d, match proposed at %d",
			apperrors.ErrStaleInvoiceState, invoice.InvoiceID, invoice.Version, match.InvoiceVersion)
	}

	// Partial payments settle up to the remaining balance.
	settled := txn.Amount
	if settled.GreaterThan(invoice.Remaining) {
		settled = invoice.Remaining
	}

	settlement, balanceChanges, err := s.buildSettlementEntry(ctx, txn, invoice, settled, actorID)
	if err != nil {
		return err
	}

	confirmed := *match
	confirmed.Status = domain.MatchConfirmed
	audit, err := newAuditRecord(actorID, domain.ActionMatchConfirmed, "reconciliation_match", matchID, match, confirmed)
	if err != nil {
		return err
	}

	if err := s.reconRepo.ConfirmMatch(ctx, *match, match.InvoiceVersion, settled, settlement, balanceChanges, audit); err != nil {
		logger.Error("Failed to confirm match", slog.String("match_id", matchID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to confirm match %s: %w", matchID, err)
	}

	logger.Info("Match confirmed",
		slog.String("match_id", matchID),
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("settled_amount", settled.String()),
	)
	return nil
}

// buildSettlementEntry assembles the payment entry a confirmation posts:
// debit cash, credit receivables tagged with the invoice counterparty.
func (s *reconciliationService) buildSettlementEntry(
	ctx context.Context,
	txn *domain.ExternalTransaction,
	invoice *domain.Invoice,
	settled decimal.Decimal,
	actorID string,
) (domain.JournalEntry, map[string]decimal.Decimal, error) {
	now := time.Now().UTC()

	period, err := s.periodRepo.FindPeriodByDate(ctx, now)
	if err != nil {
		return domain.JournalEntry{}, nil, fmt.Errorf("failed to resolve settlement period: %w", err)
	}
	if !period.AcceptsPostings() {
		return domain.JournalEntry{}, nil, fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodLocked, period.PeriodID, period.Status)
	}

	entryID := uuid.NewString()
	auditFields := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
	lines := []domain.JournalLine{
		{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: s.cfg.CashAccount,
			Debit:       settled,
			Description: fmt.Sprintf("Settlement of invoice %s", invoice.Reference),
			AuditFields: auditFields,
		},
		{
			LineID:          uuid.NewString(),
			EntryID:         entryID,
			AccountCode:     s.cfg.ReceivableAccount,
			Credit:          settled,
			Description:     fmt.Sprintf("Settlement of invoice %s", invoice.Reference),
			CounterpartyTag: invoice.CounterpartyTag,
			AuditFields:     auditFields,
		},
	}

	accountsMap, err := s.accountRepo.FindAccountsByCodes(ctx, []string{s.cfg.CashAccount, s.cfg.ReceivableAccount})
	if err != nil {
		return domain.JournalEntry{}, nil, fmt.Errorf("failed to fetch settlement accounts: %w", err)
	}
	accountTypes := make(map[string]domain.AccountType, 2)
	for _, code := range []string{s.cfg.CashAccount, s.cfg.ReceivableAccount} {
		acc, ok := accountsMap[code]
		if !ok {
			return domain.JournalEntry{}, nil, fmt.Errorf("%w: settlement account %s", apperrors.ErrAccountNotFound, code)
		}
		accountTypes[code] = acc.AccountType
	}

	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		return domain.JournalEntry{}, nil, fmt.Errorf("internal error computing settlement balance changes: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   now,
		Reference:   invoice.Reference,
		Description: fmt.Sprintf("Payment %s settles invoice %s", txn.ExternalID, invoice.Reference),
		Source:      domain.SourcePayment,
		SourceID:    txn.TransactionID,
		PeriodID:    period.PeriodID,
		Status:      domain.Posted,
		Lines:       lines,
		AuditFields: auditFields,
	}
	return entry, balanceChanges, nil
}

// RejectMatch releases the transaction and invoice back into their pools.
func (s *reconciliationService) RejectMatch(ctx context.Context, matchID string, actorID string) error {
	return s.moveMatch(ctx, matchID, domain.MatchRejected, "", domain.ActionMatchRejected, actorID)
}

// DeferMatch parks a pending match with an explicit justification. The match
// stops blocking period close; the next matcher batch may requeue the pair.
func (s *reconciliationService) DeferMatch(ctx context.Context, matchID string, justification string, actorID string) error {
	if justification == "" {
		return fmt.Errorf("%w: deferring a match requires a justification", apperrors.ErrValidation)
	}
	return s.moveMatch(ctx, matchID, domain.MatchDeferred, justification, domain.ActionMatchDeferred, actorID)
}

func (s *reconciliationService) moveMatch(ctx context.Context, matchID string, status domain.MatchStatus, justification, action, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	match, err := s.reconRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to find match %s: %w", matchID, err)
	}
	switch match.Status {
	case domain.MatchPendingReview, domain.MatchAutoMatched:
		// reviewable
	default:
		return fmt.Errorf("%w: match %s is %s", apperrors.ErrConflict, matchID, match.Status)
	}

	moved := *match
	moved.Status = status
	moved.Justification = justification
	audit, err := newAuditRecord(actorID, action, "reconciliation_match", matchID, match, moved)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.reconRepo.UpdateMatchStatus(ctx, matchID, status, justification, audit, actorID, now); err != nil {
		logger.Error("Failed to update match status", slog.String("match_id", matchID), slog.String("status", string(status)), slog.String("error", err.Error()))
		return fmt.Errorf("failed to move match %s to %s: %w", matchID, status, err)
	}

	logger.Info("Match reviewed", slog.String("match_id", matchID), slog.String("status", string(status)))
	return nil
}

// ListMatches retrieves matches, optionally filtered by status.
func (s *reconciliationService) ListMatches(ctx context.Context, status *domain.MatchStatus) ([]domain.ReconciliationMatch, error) {
	matches, err := s.reconRepo.ListMatches(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}
