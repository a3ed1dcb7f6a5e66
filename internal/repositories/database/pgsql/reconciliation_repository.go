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
)

const transactionColumns = `transaction_id, external_id, amount, txn_date, description, matched, created_at, created_by, last_updated_at, last_updated_by`

const invoiceColumns = `invoice_id, reference, counterparty_tag, amount, remaining, invoice_date, status, version, created_at, created_by, last_updated_at, last_updated_by`

const matchColumns = `match_id, transaction_id, invoice_id, confidence, status, invoice_version, reason, justification, created_at, created_by, last_updated_at, last_updated_by`

type PgxReconciliationRepository struct {
	BaseRepository
	journalRepo portsrepo.JournalWriter
	auditRepo   portsrepo.AuditWriter
}

// newPgxReconciliationRepository creates a new repository for the matcher's
// pools and records. The journal repository posts settlement entries inside
// the confirmation transaction.
func newPgxReconciliationRepository(pool *pgxpool.Pool, journalRepo portsrepo.JournalWriter, auditRepo portsrepo.AuditWriter) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{
		BaseRepository: BaseRepository{Pool: pool},
		journalRepo:    journalRepo,
		auditRepo:      auditRepo,
	}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

func scanTransaction(row pgx.Row) (models.ExternalTransaction, error) {
	var m models.ExternalTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.ExternalID,
		&m.Amount,
		&m.TxnDate,
		&m.Description,
		&m.Matched,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.Reference,
		&m.CounterpartyTag,
		&m.Amount,
		&m.Remaining,
		&m.InvoiceDate,
		&m.Status,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanMatch(row pgx.Row) (models.ReconciliationMatch, error) {
	var m models.ReconciliationMatch
	var reason, justification sql.NullString
	err := row.Scan(
		&m.MatchID,
		&m.TransactionID,
		&m.InvoiceID,
		&m.Confidence,
		&m.Status,
		&m.InvoiceVersion,
		&reason,
		&justification,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.ReconciliationMatch{}, err
	}
	m.Reason = reason.String
	m.Justification = justification.String
	return m, nil
}

// ListUnmatchedTransactions retrieves the pool of external transactions
// without an active match, oldest first for deterministic batch order.
func (r *PgxReconciliationRepository) ListUnmatchedTransactions(ctx context.Context) ([]domain.ExternalTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM external_transactions t
		WHERE t.matched = FALSE
		  AND NOT EXISTS (
			SELECT 1 FROM reconciliation_matches rm
			WHERE rm.transaction_id = t.transaction_id
			  AND rm.status IN ($1, $2)
		  )
		ORDER BY t.txn_date, t.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, models.MatchAutoMatched, models.MatchPendingReview)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched transactions: %w", err)
	}
	defer rows.Close()

	txns := []models.ExternalTransaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return mapping.ToDomainTransactionSlice(txns), nil
}

// ListOpenInvoices retrieves invoices awaiting settlement that no active match
// already claims.
func (r *PgxReconciliationRepository) ListOpenInvoices(ctx context.Context) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices i
		WHERE i.status = $1
		  AND NOT EXISTS (
			SELECT 1 FROM reconciliation_matches rm
			WHERE rm.invoice_id = i.invoice_id
			  AND rm.status IN ($2, $3)
		  )
		ORDER BY i.invoice_date, i.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, models.InvoiceOpen, models.MatchAutoMatched, models.MatchPendingReview)
	if err != nil {
		return nil, fmt.Errorf("failed to query open invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		m, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return mapping.ToDomainInvoiceSlice(invoices), nil
}

// FindTransactionByID retrieves one external transaction.
func (r *PgxReconciliationRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.ExternalTransaction, error) {
	m, err := scanTransaction(r.Pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM external_transactions t WHERE transaction_id = $1;`, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// FindInvoiceByID retrieves one invoice.
func (r *PgxReconciliationRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	m, err := scanInvoice(r.Pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices i WHERE invoice_id = $1;`, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	invoice := mapping.ToDomainInvoice(m)
	return &invoice, nil
}

// FindMatchByID retrieves one match record.
func (r *PgxReconciliationRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	m, err := scanMatch(r.Pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM reconciliation_matches WHERE match_id = $1;`, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find match %s: %w", matchID, err)
	}
	match := mapping.ToDomainMatch(m)
	return &match, nil
}

// ListMatches retrieves matches, optionally filtered by status, newest first.
func (r *PgxReconciliationRepository) ListMatches(ctx context.Context, status *domain.MatchStatus) ([]domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := []models.ReconciliationMatch{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return mapping.ToDomainMatchSlice(matches), nil
}

// CountPendingReviewInRange counts pending-review matches whose transaction is
// dated within [start, end].
func (r *PgxReconciliationRepository) CountPendingReviewInRange(ctx context.Context, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reconciliation_matches rm
		JOIN external_transactions et ON et.transaction_id = rm.transaction_id
		WHERE rm.status = $1 AND et.txn_date BETWEEN $2 AND $3;
	`
	var count int
	if err := r.Pool.QueryRow(ctx, query, models.MatchPendingReview, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending-review matches: %w", err)
	}
	return count, nil
}

// SaveTransaction adds a bank line to the unmatched pool.
func (r *PgxReconciliationRepository) SaveTransaction(ctx context.Context, txn domain.ExternalTransaction, audit domain.AuditRecord) error {
	m := mapping.ToModelTransaction(txn)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO external_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`, m.TransactionID, m.ExternalID, m.Amount, m.TxnDate, m.Description, m.Matched,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: transaction with external id %s already ingested", apperrors.ErrDuplicate, m.ExternalID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", m.TransactionID, err)
	}

	if err := r.auditRepo.SaveRecordInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveInvoice enrolls an invoice into the open pool.
func (r *PgxReconciliationRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice, audit domain.AuditRecord) error {
	m := mapping.ToModelInvoice(invoice)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`, m.InvoiceID, m.Reference, m.CounterpartyTag, m.Amount, m.Remaining, m.InvoiceDate,
		m.Status, m.Version, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: invoice with reference %s already enrolled", apperrors.ErrDuplicate, m.Reference)
		}
		return fmt.Errorf("failed to insert invoice %s: %w", m.InvoiceID, err)
	}

	if err := r.auditRepo.SaveRecordInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveMatch records a proposed match and, for auto matches, marks the
// transaction matched, in one transaction.
func (r *PgxReconciliationRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch, audit domain.AuditRecord) error {
	m := mapping.ToModelMatch(match)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	var reason, justification sql.NullString
	if m.Reason != "" {
		reason = sql.NullString{String: m.Reason, Valid: true}
	}
	if m.Justification != "" {
		justification = sql.NullString{String: m.Justification, Valid: true}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO reconciliation_matches (`+matchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`, m.MatchID, m.TransactionID, m.InvoiceID, m.Confidence, m.Status, m.InvoiceVersion,
		reason, justification, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", m.MatchID, err)
	}

	if m.Status == models.MatchAutoMatched {
		_, err = tx.Exec(ctx, `
			UPDATE external_transactions
			SET matched = TRUE, last_updated_at = $2, last_updated_by = $3
			WHERE transaction_id = $1;
		`, m.TransactionID, m.LastUpdatedAt, m.LastUpdatedBy)
		if err != nil {
			return fmt.Errorf("failed to mark transaction %s matched: %w", m.TransactionID, err)
		}
	}

	if err := r.auditRepo.SaveRecordInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// ConfirmMatch settles a match atomically: locks the invoice, verifies its
// version, posts the settlement entry, reduces the remaining balance, marks
// the transaction matched and the match confirmed.
func (r *PgxReconciliationRepository) ConfirmMatch(ctx context.Context, match domain.ReconciliationMatch, expectedVersion int64, settledAmount decimal.Decimal, settlement domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	invoice, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices i WHERE invoice_id = $1 FOR UPDATE;`, match.InvoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, match.InvoiceID)
		}
		return fmt.Errorf("failed to lock invoice %s: %w", match.InvoiceID, err)
	}
	if invoice.Version != expectedVersion {
		return fmt.Errorf("%w: invoice %s is at version %d, match proposed against %d",
			apperrors.ErrStaleInvoiceState, match.InvoiceID, invoice.Version, expectedVersion)
	}
	if invoice.Status != models.InvoiceOpen {
		return fmt.Errorf("%w: invoice %s already settled", apperrors.ErrStaleInvoiceState, match.InvoiceID)
	}

	remaining := invoice.Remaining.Sub(settledAmount)
	if remaining.IsNegative() {
		return fmt.Errorf("%w: settlement %s exceeds remaining %s on invoice %s",
			apperrors.ErrConflict, settledAmount.String(), invoice.Remaining.String(), match.InvoiceID)
	}
	status := models.InvoiceOpen
	if remaining.IsZero() {
		status = models.InvoiceSettled
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET remaining = $2, status = $3, version = version + 1, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1;
	`, match.InvoiceID, remaining, status, audit.RecordedAt, audit.ActorID)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", match.InvoiceID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE external_transactions
		SET matched = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = $1;
	`, match.TransactionID, audit.RecordedAt, audit.ActorID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s matched: %w", match.TransactionID, err)
	}

	cmdTag, err := tx.Exec(ctx, `
		UPDATE reconciliation_matches
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE match_id = $1 AND status IN ($5, $6, $7);
	`, match.MatchID, models.MatchConfirmed, audit.RecordedAt, audit.ActorID,
		models.MatchPendingReview, models.MatchAutoMatched, models.MatchDeferred)
	if err != nil {
		return fmt.Errorf("failed to confirm match %s: %w", match.MatchID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: match %s is not confirmable", apperrors.ErrConflict, match.MatchID)
	}

	// Post the settlement entry inside the same transaction. The audit record
	// for the confirmation rides along here too.
	if err := r.journalRepo.SavePostingInTx(ctx, tx, settlement, balanceChanges, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateMatchStatus moves a match to rejected or deferred. Rejection releases
// the transaction back into the pool; the pool queries exclude only active
// match statuses, so the invoice frees up as well.
func (r *PgxReconciliationRepository) UpdateMatchStatus(ctx context.Context, matchID string, status domain.MatchStatus, justification string, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	var just sql.NullString
	if justification != "" {
		just = sql.NullString{String: justification, Valid: true}
	}

	cmdTag, err := tx.Exec(ctx, `
		UPDATE reconciliation_matches
		SET status = $2, justification = $3, last_updated_at = $4, last_updated_by = $5
		WHERE match_id = $1 AND status IN ($6, $7);
	`, matchID, string(status), just, updatedAt, updatedBy,
		models.MatchPendingReview, models.MatchAutoMatched)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", matchID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: match %s is not reviewable", apperrors.ErrConflict, matchID)
	}

	// An auto match flagged the transaction; release it again.
	_, err = tx.Exec(ctx, `
		UPDATE external_transactions et
		SET matched = FALSE, last_updated_at = $2, last_updated_by = $3
		FROM reconciliation_matches rm
		WHERE rm.match_id = $1 AND et.transaction_id = rm.transaction_id;
	`, matchID, updatedAt, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to release transaction of match %s: %w", matchID, err)
	}

	if err := r.auditRepo.SaveRecordInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
