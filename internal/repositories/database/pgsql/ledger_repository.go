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
)

const postingHaltedFlag = "posting_halted"

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the derived ledger projections.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// BalanceAsOf computes an account's signed balance straight from the journal,
// so point-in-time queries never depend on projection freshness.
func (r *PgxLedgerRepository) BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
				THEN l.debit - l.credit
				ELSE l.credit - l.debit
			END), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_code = l.account_code
		WHERE l.account_code = $1 AND e.entry_date <= $2;
	`
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountCode, asOf).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance of %s as of %s: %w", accountCode, asOf.Format("2006-01-02"), err)
	}
	return balance, nil
}

// TrialBalance retrieves the maintained per-period projection joined with
// account names and the zero-sum net.
func (r *PgxLedgerRepository) TrialBalance(ctx context.Context, periodID string) (*domain.TrialBalance, error) {
	query := `
		SELECT b.account_code, a.name, a.account_type, b.total_debit, b.total_credit
		FROM ledger_balances b
		JOIN accounts a ON a.account_code = b.account_code
		WHERE b.period_id = $1
		ORDER BY b.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance for period %s: %w", periodID, err)
	}
	defer rows.Close()

	tb := &domain.TrialBalance{PeriodID: periodID, Rows: []domain.TrialBalanceRow{}, Net: decimal.Zero}
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &row.AccountType, &row.TotalDebit, &row.TotalCredit); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		tb.Rows = append(tb.Rows, row)
		tb.Net = tb.Net.Add(row.TotalDebit).Sub(row.TotalCredit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}
	return tb, nil
}

// AccountBalances retrieves the maintained totals for one period.
func (r *PgxLedgerRepository) AccountBalances(ctx context.Context, periodID string) ([]domain.AccountBalance, error) {
	query := `
		SELECT account_code, period_id, total_debit, total_credit
		FROM ledger_balances
		WHERE period_id = $1
		ORDER BY account_code;
	`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances for period %s: %w", periodID, err)
	}
	defer rows.Close()

	balances := []domain.AccountBalance{}
	for rows.Next() {
		var b domain.AccountBalance
		if err := rows.Scan(&b.AccountCode, &b.PeriodID, &b.TotalDebit, &b.TotalCredit); err != nil {
			return nil, fmt.Errorf("failed to scan balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance rows: %w", err)
	}
	return balances, nil
}

// SubsidiaryBalances aggregates per-counterparty totals from the journal.
func (r *PgxLedgerRepository) SubsidiaryBalances(ctx context.Context, counterpartyTag string) ([]domain.SubsidiaryBalance, error) {
	query := `
		SELECT counterparty_tag, account_code, COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM journal_lines
		WHERE counterparty_tag = $1
		GROUP BY counterparty_tag, account_code
		ORDER BY account_code;
	`
	rows, err := r.Pool.Query(ctx, query, counterpartyTag)
	if err != nil {
		return nil, fmt.Errorf("failed to query subsidiary balances for %s: %w", counterpartyTag, err)
	}
	defer rows.Close()

	balances := []domain.SubsidiaryBalance{}
	for rows.Next() {
		var b domain.SubsidiaryBalance
		if err := rows.Scan(&b.CounterpartyTag, &b.AccountCode, &b.TotalDebit, &b.TotalCredit); err != nil {
			return nil, fmt.Errorf("failed to scan subsidiary balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subsidiary balance rows: %w", err)
	}
	return balances, nil
}

// PostingHalted reports whether posting is halted pending operator action.
func (r *PgxLedgerRepository) PostingHalted(ctx context.Context) (bool, error) {
	var enabled bool
	err := r.Pool.QueryRow(ctx, `SELECT enabled FROM system_flags WHERE flag_name = $1;`, postingHaltedFlag).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read posting halt flag: %w", err)
	}
	return enabled, nil
}

// ApplyEntryInTx applies one entry's totals to the maintained projection inside
// a caller-owned transaction. The projector_applied guard makes replay idempotent:
// an entry id seen before returns false without touching the projection.
func (r *PgxLedgerRepository) ApplyEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, lines []domain.JournalLine, periodID string) (bool, error) {
	cmdTag, err := tx.Exec(ctx, `
		INSERT INTO projector_applied (entry_id, applied_at)
		VALUES ($1, now())
		ON CONFLICT (entry_id) DO NOTHING;
	`, entryID)
	if err != nil {
		return false, fmt.Errorf("failed to record projector application of %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return false, nil
	}

	type totals struct {
		debit  decimal.Decimal
		credit decimal.Decimal
	}
	perAccount := make(map[string]totals)
	order := []string{}
	for _, line := range lines {
		t, ok := perAccount[line.AccountCode]
		if !ok {
			order = append(order, line.AccountCode)
		}
		t.debit = t.debit.Add(line.Debit)
		t.credit = t.credit.Add(line.Credit)
		perAccount[line.AccountCode] = t
	}

	query := `
		INSERT INTO ledger_balances (account_code, period_id, total_debit, total_credit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_code, period_id) DO UPDATE
		SET total_debit = ledger_balances.total_debit + EXCLUDED.total_debit,
		    total_credit = ledger_balances.total_credit + EXCLUDED.total_credit;
	`
	batch := &pgx.Batch{}
	for _, code := range order {
		t := perAccount[code]
		batch.Queue(query, code, periodID, t.debit, t.credit)
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to apply totals for account %s: %w", order[i], err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close projection batch: %w", err)
	}
	if batchErr != nil {
		return false, batchErr
	}
	return true, nil
}

// replayedTotal is one (account, period) aggregate recomputed from the journal.
type replayedTotal struct {
	accountCode string
	periodID    string
	totalDebit  decimal.Decimal
	totalCredit decimal.Decimal
}

// Rebuild recomputes the projections from the full journal in replay order and
// compares them with the maintained state, both the per-period totals and the
// running account balances. Drift halts posting and leaves the projections
// untouched unless force is set.
func (r *PgxLedgerRepository) Rebuild(ctx context.Context, force bool) (*portsrepo.RebuildResult, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	replayed, entriesReplayed, err := r.replayJournal(ctx, tx)
	if err != nil {
		return nil, err
	}

	maintained, err := r.maintainedTotals(ctx, tx)
	if err != nil {
		return nil, err
	}

	accountChecks, err := r.replayAccountBalances(ctx, tx)
	if err != nil {
		return nil, err
	}

	drift := append(diffTotals(maintained, replayed), diffAccountBalances(accountChecks)...)
	result := &portsrepo.RebuildResult{EntriesReplayed: entriesReplayed, Drift: drift}

	if len(drift) > 0 && !force {
		// Persist only the halt flag; the diverged projection stays as evidence.
		if err := r.setPostingHaltedInTx(ctx, tx, true); err != nil {
			return nil, err
		}
		if err := r.Commit(ctx, tx); err != nil {
			return nil, err
		}
		return result, fmt.Errorf("%w: %d account/period totals diverged", apperrors.ErrProjectorDrift, len(drift))
	}

	// Overwrite the projections from the replay and resume posting.
	if _, err := tx.Exec(ctx, `TRUNCATE ledger_balances;`); err != nil {
		return nil, fmt.Errorf("failed to clear projection: %w", err)
	}
	if _, err := tx.Exec(ctx, `TRUNCATE projector_applied;`); err != nil {
		return nil, fmt.Errorf("failed to clear projector guard: %w", err)
	}

	insert := `
		INSERT INTO ledger_balances (account_code, period_id, total_debit, total_credit)
		VALUES ($1, $2, $3, $4);
	`
	updateBalance := `UPDATE accounts SET balance = $2 WHERE account_code = $1;`
	markApplied := `INSERT INTO projector_applied (entry_id, applied_at) SELECT entry_id, now() FROM journal_entries;`

	batch := &pgx.Batch{}
	for _, t := range replayed {
		batch.Queue(insert, t.accountCode, t.periodID, t.totalDebit, t.totalCredit)
	}
	for _, c := range accountChecks {
		if !c.maintained.Equal(c.replayed) {
			batch.Queue(updateBalance, c.accountCode, c.replayed)
		}
	}
	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to write rebuilt totals: %w", err)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close rebuild batch: %w", err)
	}
	if batchErr != nil {
		return nil, batchErr
	}

	if _, err := tx.Exec(ctx, markApplied); err != nil {
		return nil, fmt.Errorf("failed to mark entries applied: %w", err)
	}
	if err := r.setPostingHaltedInTx(ctx, tx, false); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgxLedgerRepository) replayJournal(ctx context.Context, tx pgx.Tx) ([]replayedTotal, int, error) {
	query := `
		SELECT l.account_code, e.period_id, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		GROUP BY l.account_code, e.period_id
		ORDER BY l.account_code, e.period_id;
	`
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to replay journal: %w", err)
	}
	defer rows.Close()

	totals := []replayedTotal{}
	for rows.Next() {
		var t replayedTotal
		if err := rows.Scan(&t.accountCode, &t.periodID, &t.totalDebit, &t.totalCredit); err != nil {
			return nil, 0, fmt.Errorf("failed to scan replayed total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating replayed totals: %w", err)
	}

	var entryCount int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries;`).Scan(&entryCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return totals, entryCount, nil
}

func (r *PgxLedgerRepository) maintainedTotals(ctx context.Context, tx pgx.Tx) ([]replayedTotal, error) {
	rows, err := tx.Query(ctx, `SELECT account_code, period_id, total_debit, total_credit FROM ledger_balances;`)
	if err != nil {
		return nil, fmt.Errorf("failed to read maintained totals: %w", err)
	}
	defer rows.Close()

	totals := []replayedTotal{}
	for rows.Next() {
		var t replayedTotal
		if err := rows.Scan(&t.accountCode, &t.periodID, &t.totalDebit, &t.totalCredit); err != nil {
			return nil, fmt.Errorf("failed to scan maintained total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating maintained totals: %w", err)
	}
	return totals, nil
}

// accountBalanceCheck pairs an account's maintained running balance with the
// signed balance replayed from the journal.
type accountBalanceCheck struct {
	accountCode string
	maintained  decimal.Decimal
	replayed    decimal.Decimal
}

func (r *PgxLedgerRepository) replayAccountBalances(ctx context.Context, tx pgx.Tx) ([]accountBalanceCheck, error) {
	query := `
		SELECT a.account_code, a.balance,
		       COALESCE(SUM(
		           CASE WHEN a.account_type IN ('ASSET', 'EXPENSE')
		               THEN l.debit - l.credit
		               ELSE l.credit - l.debit
		           END), 0)
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_code = a.account_code
		GROUP BY a.account_code
		ORDER BY a.account_code;
	`
	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to replay account balances: %w", err)
	}
	defer rows.Close()

	checks := []accountBalanceCheck{}
	for rows.Next() {
		var c accountBalanceCheck
		if err := rows.Scan(&c.accountCode, &c.maintained, &c.replayed); err != nil {
			return nil, fmt.Errorf("failed to scan account balance check: %w", err)
		}
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account balance checks: %w", err)
	}
	return checks, nil
}

// diffAccountBalances reports accounts whose maintained running balance
// diverges from the journal replay. The running balance spans all periods, so
// the drift rows carry no period id.
func diffAccountBalances(checks []accountBalanceCheck) []portsrepo.BalanceDrift {
	drift := []portsrepo.BalanceDrift{}
	for _, c := range checks {
		if !c.maintained.Equal(c.replayed) {
			drift = append(drift, portsrepo.BalanceDrift{
				AccountCode:   c.accountCode,
				MaintainedNet: c.maintained,
				ReplayedNet:   c.replayed,
			})
		}
	}
	return drift
}

// diffTotals compares maintained against replayed totals by net amount.
func diffTotals(maintained, replayed []replayedTotal) []portsrepo.BalanceDrift {
	type key struct{ account, period string }
	replayedMap := make(map[key]replayedTotal, len(replayed))
	for _, t := range replayed {
		replayedMap[key{t.accountCode, t.periodID}] = t
	}
	maintainedMap := make(map[key]replayedTotal, len(maintained))
	for _, t := range maintained {
		maintainedMap[key{t.accountCode, t.periodID}] = t
	}

	drift := []portsrepo.BalanceDrift{}
	for k, m := range maintainedMap {
		rep, ok := replayedMap[k]
		maintainedNet := m.totalDebit.Sub(m.totalCredit)
		replayedNet := decimal.Zero
		if ok {
			replayedNet = rep.totalDebit.Sub(rep.totalCredit)
		}
		if !maintainedNet.Equal(replayedNet) {
			drift = append(drift, portsrepo.BalanceDrift{
				AccountCode:   k.account,
				PeriodID:      k.period,
				MaintainedNet: maintainedNet,
				ReplayedNet:   replayedNet,
			})
		}
	}
	for k, rep := range replayedMap {
		if _, ok := maintainedMap[k]; ok {
			continue
		}
		replayedNet := rep.totalDebit.Sub(rep.totalCredit)
		if !replayedNet.IsZero() {
			drift = append(drift, portsrepo.BalanceDrift{
				AccountCode:   k.account,
				PeriodID:      k.period,
				MaintainedNet: decimal.Zero,
				ReplayedNet:   replayedNet,
			})
		}
	}
	return drift
}

func (r *PgxLedgerRepository) setPostingHaltedInTx(ctx context.Context, tx pgx.Tx, halted bool) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO system_flags (flag_name, enabled, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (flag_name) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = now();
	`, postingHaltedFlag, halted)
	if err != nil {
		return fmt.Errorf("failed to set posting halt flag: %w", err)
	}
	return nil
}
