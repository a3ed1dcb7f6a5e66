package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	portssvc "github.com/m1ndvortex/goldledger/internal/core/ports/services"
	"github.com/m1ndvortex/goldledger/internal/dto"
	"github.com/m1ndvortex/goldledger/internal/middleware"
	"github.com/m1ndvortex/goldledger/internal/utils/accounting"
)

// ErrPostingHalted is returned while the projector is halted after detected
// drift. Posting resumes only once an operator reconciles and rebuilds.
var ErrPostingHalted = errors.New("posting halted pending ledger reconciliation")

// journalService is the append-only posting engine: the source of truth every
// ledger projection derives from.
type journalService struct {
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	periodRepo  portsrepo.PeriodRepositoryFacade
	schemas     map[domain.EntrySource]domain.MetadataSchema
}

// NewJournalService creates a new JournalService. The metadata schemas are the
// registered per-source validation rules for entry attribute bags.
func NewJournalService(
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	periodRepo portsrepo.PeriodRepositoryFacade,
	schemas map[domain.EntrySource]domain.MetadataSchema,
) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		periodRepo:  periodRepo,
		schemas:     schemas,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// PostEntry validates and atomically posts a balanced journal entry.
// All validation errors reject before any state change.
func (s *journalService) PostEntry(ctx context.Context, req dto.PostEntryRequest, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	halted, err := s.ledgerRepo.PostingHalted(ctx)
	if err != nil {
		logger.Error("Failed to check posting halt flag", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check posting state: %w", err)
	}
	if halted {
		return nil, ErrPostingHalted
	}

	if !req.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown entry source %s", apperrors.ErrValidation, req.Source)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:          uuid.NewString(),
			EntryID:         entryID,
			AccountCode:     lineReq.AccountCode,
			Debit:           lineReq.Debit,
			Credit:          lineReq.Credit,
			Description:     lineReq.Description,
			CounterpartyTag: lineReq.CounterpartyTag,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
	}

	// Structural validation: non-empty, one side per line, exact balance.
	if err := accounting.ValidateLines(lines); err != nil {
		return nil, err
	}

	if schema, ok := s.schemas[req.Source]; ok {
		if err := schema.Validate(req.Metadata); err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	} else if len(req.Metadata) > 0 {
		return nil, fmt.Errorf("%w: source %s does not accept metadata", apperrors.ErrValidation, req.Source)
	}

	// (source, sourceID) must be unique per posting intent so automated
	// producers can retry safely.
	if req.SourceID != "" {
		exists, err := s.journalRepo.SourceIntentExists(ctx, req.Source, req.SourceID)
		if err != nil {
			logger.Error("Failed to check source intent", slog.String("source_id", req.SourceID), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to check source intent: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%w: entry for %s/%s already posted", apperrors.ErrDuplicate, req.Source, req.SourceID)
		}
	}

	accountTypes, err := s.resolveAccounts(ctx, lines)
	if err != nil {
		return nil, err
	}

	period, err := s.resolvePostingPeriod(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		logger.Error("Failed to compute balance changes", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("internal error computing balance changes: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.Date,
		Reference:   req.Reference,
		Description: req.Description,
		Source:      req.Source,
		SourceID:    req.SourceID,
		PeriodID:    period.PeriodID,
		Status:      domain.Posted,
		Metadata:    req.Metadata,
		Lines:       lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit, err := newAuditRecord(actorID, domain.ActionEntryPosted, "journal_entry", entryID, nil, entry)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SavePosting(ctx, entry, balanceChanges, audit); err != nil {
		logger.Error("Failed to save posting", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry %s: %w", entryID, err)
	}

	logger.Info("Entry posted",
		slog.String("entry_id", entryID),
		slog.String("period_id", period.PeriodID),
		slog.String("source", string(req.Source)),
		slog.Int("line_count", len(lines)),
	)
	return &entry, nil
}

// resolveAccounts fetches the accounts referenced by the lines and verifies
// each exists and is active.
func (s *journalService) resolveAccounts(ctx context.Context, lines []domain.JournalLine) (map[string]domain.AccountType, error) {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.AccountCode)
	}
	codes = uniqueStrings(codes)

	accountsMap, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accountTypes := make(map[string]domain.AccountType, len(codes))
	for _, code := range codes {
		acc, found := accountsMap[code]
		if !found {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is retired", apperrors.ErrAccountNotFound, code)
		}
		accountTypes[code] = acc.AccountType
	}
	return accountTypes, nil
}

// resolvePostingPeriod finds the period covering the entry date and verifies
// it accepts postings.
func (s *journalService) resolvePostingPeriod(ctx context.Context, date time.Time) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByDate(ctx, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no period covers %s", apperrors.ErrValidation, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to resolve period for %s: %w", date.Format("2006-01-02"), err)
	}
	if !period.AcceptsPostings() {
		return nil, fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodLocked, period.PeriodID, period.Status)
	}
	return period, nil
}

// ReverseEntry posts the reversing entry for a previously posted entry.
// Reversals against a closed or locked period land in the current open period,
// the only correction path once a period is frozen.
func (s *journalService) ReverseEntry(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	halted, err := s.ledgerRepo.PostingHalted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check posting state: %w", err)
	}
	if halted {
		return nil, ErrPostingHalted
	}

	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s is %s, expected POSTED", apperrors.ErrConflict, entryID, original.Status)
	}
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrConflict, entryID)
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines of entry %s: %w", entryID, err)
	}

	originalPeriod, err := s.periodRepo.FindPeriodByID(ctx, original.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve period %s: %w", original.PeriodID, err)
	}

	now := time.Now().UTC()
	targetPeriod := originalPeriod
	entryDate := original.EntryDate
	if !originalPeriod.AcceptsPostings() {
		// Original period is frozen: the reversal posts into the current open
		// period, dated today, rather than mutating closed history.
		openPeriod, err := s.periodRepo.FindOpenPeriod(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: no open period to receive the reversal of %s", apperrors.ErrPeriodLocked, entryID)
			}
			return nil, fmt.Errorf("failed to find open period: %w", err)
		}
		targetPeriod = openPeriod
		entryDate = now
		logger.Info("Reversal redirected to open period",
			slog.String("entry_id", entryID),
			slog.String("original_period", originalPeriod.PeriodID),
			slog.String("target_period", openPeriod.PeriodID),
		)
	}

	reversalID := uuid.NewString()
	reversedLines := accounting.ReverseLines(originalLines)
	for i := range reversedLines {
		reversedLines[i].LineID = uuid.NewString()
		reversedLines[i].EntryID = reversalID
		reversedLines[i].AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		}
	}

	accountTypes, err := s.resolveAccountTypesForReversal(ctx, reversedLines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(reversedLines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("internal error computing reversal balance changes: %w", err)
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       entryDate,
		Reference:       original.Reference,
		Description:     fmt.Sprintf("Reversal of entry: %s", original.Description),
		Source:          domain.SourceAdjustment,
		PeriodID:        targetPeriod.PeriodID,
		Status:          domain.Posted,
		OriginalEntryID: &original.EntryID,
		Lines:           reversedLines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	audit, err := newAuditRecord(actorID, domain.ActionEntryReversed, "journal_entry", entryID, original, reversal)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveReversal(ctx, reversal, balanceChanges, original.EntryID, audit); err != nil {
		logger.Error("Failed to save reversal", slog.String("entry_id", entryID), slog.String("reversal_id", reversalID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save reversal of %s: %w", entryID, err)
	}

	logger.Info("Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_id", reversalID))
	return &reversal, nil
}

// resolveAccountTypesForReversal fetches account types without the active
// check: a retired account can still appear on a reversal of its history.
func (s *journalService) resolveAccountTypesForReversal(ctx context.Context, lines []domain.JournalLine) (map[string]domain.AccountType, error) {
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		codes = append(codes, line.AccountCode)
	}
	codes = uniqueStrings(codes)

	accountsMap, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	accountTypes := make(map[string]domain.AccountType, len(codes))
	for _, code := range codes {
		acc, found := accountsMap[code]
		if !found {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
		accountTypes[code] = acc.AccountType
	}
	return accountTypes, nil
}

// GetEntryByID retrieves an entry together with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines of entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a token-paginated list of entries.
func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListEntries(ctx, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		if params.IncludeLines {
			lines, err := s.journalRepo.FindLinesByEntryID(ctx, entries[i].EntryID)
			if err != nil {
				logger.Warn("Failed to fetch lines for entry", slog.String("entry_id", entries[i].EntryID), slog.String("error", err.Error()))
			} else {
				entries[i].Lines = lines
			}
		}
		responses[i] = dto.ToEntryResponse(&entries[i])
	}

	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// ListLinesByAccount retrieves a token-paginated list of lines for one account.
func (s *journalService) ListLinesByAccount(ctx context.Context, accountCode string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	lines, nextToken, err := s.journalRepo.ListLinesByAccount(ctx, accountCode, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines for account %s: %w", accountCode, err)
	}

	return &dto.ListLinesResponse{Lines: dto.ToLineResponses(lines), NextToken: nextToken}, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
