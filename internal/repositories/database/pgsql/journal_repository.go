package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	"github.com/m1ndvortex/goldledger/internal/models"
	"github.com/m1ndvortex/goldledger/internal/utils/mapping"
	"github.com/m1ndvortex/goldledger/internal/utils/pagination"
)

const entryColumns = `entry_id, entry_date, reference, description, source, source_id, period_id, status, original_entry_id, reversing_entry_id, metadata, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_code, debit, credit, description, counterparty_tag, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountLocker
	ledgerRepo  portsrepo.LedgerWriter
	auditRepo   portsrepo.AuditWriter
}

// newPgxJournalRepository creates a new repository for journal data. The
// account, ledger and audit repositories participate in posting transactions.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountLocker, ledgerRepo portsrepo.LedgerWriter, auditRepo portsrepo.AuditWriter) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		auditRepo:      auditRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var sourceID, reference sql.NullString
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&reference,
		&m.Description,
		&m.Source,
		&sourceID,
		&m.PeriodID,
		&m.Status,
		&m.OriginalEntryID,
		&m.ReversingEntryID,
		&m.Metadata,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.JournalEntry{}, err
	}
	m.Reference = reference.String
	m.SourceID = sourceID.String
	return m, nil
}

func scanLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	var counterparty sql.NullString
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountCode,
		&m.Debit,
		&m.Credit,
		&m.Description,
		&counterparty,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.JournalLine{}, err
	}
	m.CounterpartyTag = counterparty.String
	return m, nil
}

// SavePosting persists an entry with its lines, applies the projection deltas,
// and writes the audit record in one transaction.
func (r *PgxJournalRepository) SavePosting(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	if err := r.SavePostingInTx(ctx, tx, entry, balanceChanges, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SavePostingInTx is the shared posting core. It locks the touched accounts,
// re-validates the period status under a share lock, inserts the entry and its
// lines, applies the projection and writes the audit record.
func (r *PgxJournalRepository) SavePostingInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	codes := make([]string, 0, len(entry.Lines))
	seen := make(map[string]struct{}, len(entry.Lines))
	for _, line := range entry.Lines {
		if _, ok := seen[line.AccountCode]; !ok {
			seen[line.AccountCode] = struct{}{}
			codes = append(codes, line.AccountCode)
		}
	}

	// Serialize concurrent postings touching the same accounts.
	if _, err := r.accountRepo.FindAccountsByCodesForUpdate(ctx, tx, codes); err != nil {
		return err
	}

	// The period status was pre-checked outside the transaction. Re-check under
	// a share lock: a concurrent close transition takes the exclusive lock on
	// this row and will wait for us, or we wait for it.
	var periodStatus string
	err := tx.QueryRow(ctx, `SELECT status FROM periods WHERE period_id = $1 FOR SHARE;`, entry.PeriodID).Scan(&periodStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: period %s", apperrors.ErrNotFound, entry.PeriodID)
		}
		return fmt.Errorf("failed to lock period %s: %w", entry.PeriodID, err)
	}
	if periodStatus != string(models.PeriodOpen) && periodStatus != string(models.PeriodPendingClose) {
		return fmt.Errorf("%w: period %s is %s", apperrors.ErrPeriodLocked, entry.PeriodID, periodStatus)
	}

	if err := r.insertEntryInTx(ctx, tx, entry); err != nil {
		return err
	}
	if err := r.insertLinesInTx(ctx, tx, entry.Lines); err != nil {
		return err
	}

	applied, err := r.ledgerRepo.ApplyEntryInTx(ctx, tx, entry.EntryID, entry.Lines, entry.PeriodID)
	if err != nil {
		return err
	}
	if !applied {
		// A fresh entry id can never be pre-applied unless something is badly wrong.
		return fmt.Errorf("%w: entry %s already applied to projection", apperrors.ErrConflict, entry.EntryID)
	}

	if err := r.updateAccountBalancesInTx(ctx, tx, balanceChanges, entry.LastUpdatedBy, entry.LastUpdatedAt); err != nil {
		return err
	}

	return r.auditRepo.SaveRecordInTx(ctx, tx, audit)
}

// updateAccountBalancesInTx applies the signed per-account deltas to the
// maintained running balances.
func (r *PgxJournalRepository) updateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, actorID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_code = $1;
	`
	batch := &pgx.Batch{}
	codes := make([]string, 0, len(balanceChanges))
	for code, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, code, delta, now, actorID)
			codes = append(codes, code)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance of account %s: %w", codes[i], err)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account %s missing during balance update", apperrors.ErrNotFound, codes[i])
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}

func (r *PgxJournalRepository) insertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelEntry(entry)

	var reference, sourceID sql.NullString
	if m.Reference != "" {
		reference = sql.NullString{String: m.Reference, Valid: true}
	}
	if m.SourceID != "" {
		sourceID = sql.NullString{String: m.SourceID, Valid: true}
	}

	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		m.EntryID,
		m.EntryDate,
		reference,
		m.Description,
		m.Source,
		sourceID,
		m.PeriodID,
		m.Status,
		m.OriginalEntryID,
		m.ReversingEntryID,
		m.Metadata,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: entry for %s/%s already posted", apperrors.ErrDuplicate, m.Source, m.SourceID)
		}
		return fmt.Errorf("failed to insert entry %s: %w", m.EntryID, err)
	}
	return nil
}

func (r *PgxJournalRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	query := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelLine(line)
		var counterparty sql.NullString
		if m.CounterpartyTag != "" {
			counterparty = sql.NullString{String: m.CounterpartyTag, Valid: true}
		}
		batch.Queue(query,
			m.LineID, m.EntryID, m.AccountCode, m.Debit, m.Credit, m.Description,
			counterparty, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to insert line %s: %w", lines[i].LineID, err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close line insert batch: %w", err)
	}
	return batchErr
}

// SaveReversal persists a reversing entry and marks the original reversed in
// the same transaction.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversal domain.JournalEntry, balanceChanges map[string]decimal.Decimal, originalEntryID string, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	// Claim the original first. Exactly one reversal can win this update.
	cmdTag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1 AND status = $6;
	`, originalEntryID, models.Reversed, reversal.EntryID, reversal.LastUpdatedAt, reversal.LastUpdatedBy, models.Posted)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s reversed: %w", originalEntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is not in POSTED state", apperrors.ErrConflict, originalEntryID)
	}

	if err := r.SavePostingInTx(ctx, tx, reversal, balanceChanges, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry without its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// FindLinesByEntryID retrieves all lines of a single entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY line_id;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows: %w", err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}

// ListEntries retrieves a token-paginated list of entries ordered by
// (entry_date, created_at) descending, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := []interface{}{limit + 1}
	query := `SELECT ` + entryColumns + ` FROM journal_entries`

	conditions := ""
	if !includeReversals {
		conditions = ` WHERE original_entry_id IS NULL`
	}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		if conditions == "" {
			conditions = ` WHERE`
		} else {
			conditions += ` AND`
		}
		conditions += ` (entry_date, created_at) < ($2, $3)`
		args = append(args, entryDate, createdAt)
	}
	query += conditions + ` ORDER BY entry_date DESC, created_at DESC LIMIT $1;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return mapping.ToDomainEntrySlice(entries), token, nil
}

// ListLinesByAccount retrieves a token-paginated list of lines for one account,
// newest entries first.
func (r *PgxJournalRepository) ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := []interface{}{accountCode, limit + 1}
	query := `
		SELECT l.line_id, l.entry_id, l.account_code, l.debit, l.credit, l.description, l.counterparty_tag,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1`

	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += ` AND (e.entry_date, l.created_at) < ($3, $4)`
		args = append(args, entryDate, createdAt)
	}
	query += ` ORDER BY e.entry_date DESC, l.created_at DESC LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query lines for account %s: %w", accountCode, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	dates := []time.Time{}
	for rows.Next() {
		var m models.JournalLine
		var counterparty sql.NullString
		var entryDate time.Time
		err := rows.Scan(
			&m.LineID, &m.EntryID, &m.AccountCode, &m.Debit, &m.Credit, &m.Description,
			&counterparty, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
			&entryDate,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan account line row: %w", err)
		}
		m.CounterpartyTag = counterparty.String
		lines = append(lines, m)
		dates = append(dates, entryDate)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating account line rows: %w", err)
	}

	var token *string
	if len(lines) > limit {
		lines = lines[:limit]
		dates = dates[:limit]
		t := pagination.EncodeToken(dates[len(dates)-1], lines[len(lines)-1].CreatedAt)
		token = &t
	}
	return mapping.ToDomainLineSlice(lines), token, nil
}

// SourceIntentExists reports whether a (source, sourceID) pair has already posted.
func (r *PgxJournalRepository) SourceIntentExists(ctx context.Context, source domain.EntrySource, sourceID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM journal_entries WHERE source = $1 AND source_id = $2);`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, string(source), sourceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check source intent %s/%s: %w", source, sourceID, err)
	}
	return exists, nil
}
