package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
	"github.com/m1ndvortex/goldledger/internal/models"
	"github.com/m1ndvortex/goldledger/internal/utils/mapping"
)

const periodColumns = `period_id, name, start_date, end_date, status, created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
	auditRepo portsrepo.AuditWriter
}

// newPgxPeriodRepository creates a new repository for accounting periods.
func newPgxPeriodRepository(pool *pgxpool.Pool, auditRepo portsrepo.AuditWriter) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}, auditRepo: auditRepo}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (models.Period, error) {
	var m models.Period
	err := row.Scan(
		&m.PeriodID,
		&m.Name,
		&m.StartDate,
		&m.EndDate,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindPeriodByID retrieves a period by id.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	m, err := scanPeriod(r.Pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE period_id = $1;`, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	period := mapping.ToDomainPeriod(m)
	return &period, nil
}

// FindPeriodByDate retrieves the single period covering the date, if any.
// The overlap constraint at creation time guarantees at most one.
func (r *PgxPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE start_date <= $1 AND end_date >= $1;`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period covering %s: %w", date.Format("2006-01-02"), err)
	}
	period := mapping.ToDomainPeriod(m)
	return &period, nil
}

// FindOpenPeriod retrieves the earliest period still open for posting.
func (r *PgxPeriodRepository) FindOpenPeriod(ctx context.Context) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE status = $1 ORDER BY start_date LIMIT 1;`
	m, err := scanPeriod(r.Pool.QueryRow(ctx, query, models.PeriodOpen))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find open period: %w", err)
	}
	period := mapping.ToDomainPeriod(m)
	return &period, nil
}

// ListPeriods retrieves all periods ordered by start date.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context) ([]domain.Period, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+periodColumns+` FROM periods ORDER BY start_date;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	periods := []models.Period{}
	for rows.Next() {
		m, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		periods = append(periods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating period rows: %w", err)
	}
	return mapping.ToDomainPeriodSlice(periods), nil
}

// HasClosedPeriodAfter reports whether any period ending after the given date
// has reached closed or locked.
func (r *PgxPeriodRepository) HasClosedPeriodAfter(ctx context.Context, endDate time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM periods
			WHERE end_date > $1 AND status IN ($2, $3)
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, endDate, models.PeriodClosed, models.PeriodLocked).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for later closed periods: %w", err)
	}
	return exists, nil
}

// ListSnapshots retrieves the balance snapshot taken when the period closed.
func (r *PgxPeriodRepository) ListSnapshots(ctx context.Context, periodID string) ([]domain.PeriodSnapshot, error) {
	query := `
		SELECT period_id, account_code, total_debit, total_credit, balance, taken_at, taken_by
		FROM period_snapshots
		WHERE period_id = $1
		ORDER BY account_code;
	`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots of period %s: %w", periodID, err)
	}
	defer rows.Close()

	snapshots := []domain.PeriodSnapshot{}
	for rows.Next() {
		var m models.PeriodSnapshot
		if err := rows.Scan(&m.PeriodID, &m.AccountCode, &m.TotalDebit, &m.TotalCredit, &m.Balance, &m.TakenAt, &m.TakenBy); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshots = append(snapshots, mapping.ToDomainSnapshot(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snapshots, nil
}

// SavePeriod persists a new period, failing with ErrConflict when it overlaps
// an existing one.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.Period, audit domain.AuditRecord) error {
	m := mapping.ToModelPeriod(period)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	// Serialize creation so two overlapping periods cannot both pass the check.
	if _, err := tx.Exec(ctx, `LOCK TABLE periods IN SHARE ROW EXCLUSIVE MODE;`); err != nil {
		return fmt.Errorf("failed to lock periods table: %w", err)
	}

	var overlaps bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM periods WHERE start_date <= $2 AND end_date >= $1);
	`, m.StartDate, m.EndDate).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("failed to check period overlap: %w", err)
	}
	if overlaps {
		return fmt.Errorf("%w: period %s overlaps an existing period", apperrors.ErrConflict, m.Name)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO periods (`+periodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`, m.PeriodID, m.Name, m.StartDate, m.EndDate, m.Status, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to insert period %s: %w", m.PeriodID, err)
	}

	if err := r.auditRepo.SaveRecordInTx(ctx, tx, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// lockPeriodForUpdate takes the exclusive row lock every transition runs under.
// Concurrent postings into the period block on this lock via their share lock.
func (r *PgxPeriodRepository) lockPeriodForUpdate(ctx context.Context, tx pgx.Tx, periodID string) (models.Period, error) {
	m, err := scanPeriod(tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE period_id = $1 FOR UPDATE;`, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Period{}, apperrors.ErrNotFound
		}
		return models.Period{}, fmt.Errorf("failed to lock period %s: %w", periodID, err)
	}
	return m, nil
}

func (r *PgxPeriodRepository) setStatusInTx(ctx context.Context, tx pgx.Tx, periodID string, status models.PeriodStatus, audit domain.AuditRecord) error {
	_, err := tx.Exec(ctx, `
		UPDATE periods
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE period_id = $1;
	`, periodID, status, audit.RecordedAt, audit.ActorID)
	if err != nil {
		return fmt.Errorf("failed to move period %s to %s: %w", periodID, status, err)
	}
	return r.auditRepo.SaveRecordInTx(ctx, tx, audit)
}

// BeginClose moves open -> pending_close. Re-validates under the lock: the
// period trial balance must net to zero and no pending-review matches may be
// dated inside the period.
func (r *PgxPeriodRepository) BeginClose(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	m, err := r.lockPeriodForUpdate(ctx, tx, periodID)
	if err != nil {
		return err
	}
	if m.Status != models.PeriodOpen {
		return fmt.Errorf("%w: period %s is %s, expected OPEN", apperrors.ErrConflict, periodID, m.Status)
	}

	var net decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_debit - total_credit), 0)
		FROM ledger_balances WHERE period_id = $1;
	`, periodID).Scan(&net)
	if err != nil {
		return fmt.Errorf("failed to check trial balance of period %s: %w", periodID, err)
	}
	if !net.IsZero() {
		return fmt.Errorf("%w: period %s trial balance nets %s", apperrors.ErrConflict, periodID, net.String())
	}

	var pending int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM reconciliation_matches rm
		JOIN external_transactions et ON et.transaction_id = rm.transaction_id
		WHERE rm.status = $1 AND et.txn_date BETWEEN $2 AND $3;
	`, models.MatchPendingReview, m.StartDate, m.EndDate).Scan(&pending)
	if err != nil {
		return fmt.Errorf("failed to count pending-review matches for period %s: %w", periodID, err)
	}
	if pending > 0 {
		return fmt.Errorf("%w: period %s has %d pending-review matches", apperrors.ErrConflict, periodID, pending)
	}

	if err := r.setStatusInTx(ctx, tx, periodID, models.PeriodPendingClose, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// Close moves pending_close -> closed and takes the immutable balance snapshot.
func (r *PgxPeriodRepository) Close(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	m, err := r.lockPeriodForUpdate(ctx, tx, periodID)
	if err != nil {
		return err
	}
	if m.Status != models.PeriodPendingClose {
		return fmt.Errorf("%w: period %s is %s, expected PENDING_CLOSE", apperrors.ErrConflict, periodID, m.Status)
	}

	// Snapshot signed balances from the maintained projection.
	_, err = tx.Exec(ctx, `
		INSERT INTO period_snapshots (period_id, account_code, total_debit, total_credit, balance, taken_at, taken_by)
		SELECT b.period_id, b.account_code, b.total_debit, b.total_credit,
		       CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
		            THEN b.total_debit - b.total_credit
		            ELSE b.total_credit - b.total_debit
		       END,
		       $2, $3
		FROM ledger_balances b
		JOIN accounts a ON a.account_code = b.account_code
		WHERE b.period_id = $1;
	`, periodID, audit.RecordedAt, audit.ActorID)
	if err != nil {
		return fmt.Errorf("failed to snapshot period %s: %w", periodID, err)
	}

	if err := r.setStatusInTx(ctx, tx, periodID, models.PeriodClosed, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// Lock moves closed -> locked.
func (r *PgxPeriodRepository) Lock(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	m, err := r.lockPeriodForUpdate(ctx, tx, periodID)
	if err != nil {
		return err
	}
	if m.Status != models.PeriodClosed {
		return fmt.Errorf("%w: period %s is %s, expected CLOSED", apperrors.ErrConflict, periodID, m.Status)
	}

	if err := r.setStatusInTx(ctx, tx, periodID, models.PeriodLocked, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// Reopen moves closed -> open, re-checking under the lock that no later period
// has closed in the meantime.
func (r *PgxPeriodRepository) Reopen(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	m, err := r.lockPeriodForUpdate(ctx, tx, periodID)
	if err != nil {
		return err
	}
	if m.Status != models.PeriodClosed {
		return fmt.Errorf("%w: period %s is %s, expected CLOSED", apperrors.ErrConflict, periodID, m.Status)
	}

	var laterClosed bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM periods
			WHERE end_date > $1 AND status IN ($2, $3)
		);
	`, m.EndDate, models.PeriodClosed, models.PeriodLocked).Scan(&laterClosed)
	if err != nil {
		return fmt.Errorf("failed to re-check later periods: %w", err)
	}
	if laterClosed {
		return fmt.Errorf("%w: a later period has closed, period %s cannot reopen", apperrors.ErrForbidden, periodID)
	}

	// The close-time snapshot stays in place as history of the earlier close.
	if err := r.setStatusInTx(ctx, tx, periodID, models.PeriodOpen, audit); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
