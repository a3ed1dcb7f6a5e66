package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	portsrepo "github.com/m1ndvortex/goldledger/internal/core/ports/repositories"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListChildren(ctx context.Context, code string) ([]domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) HasPostedLines(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account, audit domain.AuditRecord) error {
	args := m.Called(ctx, account, audit)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, code, active, audit, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByCodesForUpdate(ctx context.Context, tx pgx.Tx, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

// MockJournalRepository is a mock type for the JournalRepositoryFacade interface
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, limit, nextToken, includeReversals)
	var entries []domain.JournalEntry
	if args.Get(0) != nil {
		entries = args.Get(0).([]domain.JournalEntry)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return entries, token, args.Error(2)
}

func (m *MockJournalRepository) ListLinesByAccount(ctx context.Context, accountCode string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	args := m.Called(ctx, accountCode, limit, nextToken)
	var lines []domain.JournalLine
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.JournalLine)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return lines, token, args.Error(2)
}

func (m *MockJournalRepository) SourceIntentExists(ctx context.Context, source domain.EntrySource, sourceID string) (bool, error) {
	args := m.Called(ctx, source, sourceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) SavePosting(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	args := m.Called(ctx, entry, balanceChanges, audit)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveReversal(ctx context.Context, reversal domain.JournalEntry, balanceChanges map[string]decimal.Decimal, originalEntryID string, audit domain.AuditRecord) error {
	args := m.Called(ctx, reversal, balanceChanges, originalEntryID, audit)
	return args.Error(0)
}

func (m *MockJournalRepository) SavePostingInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	args := m.Called(ctx, tx, entry, balanceChanges, audit)
	return args.Error(0)
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

// MockLedgerRepository is a mock type for the LedgerRepositoryFacade interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) BalanceAsOf(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountCode, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) TrialBalance(ctx context.Context, periodID string) (*domain.TrialBalance, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockLedgerRepository) AccountBalances(ctx context.Context, periodID string) ([]domain.AccountBalance, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountBalance), args.Error(1)
}

func (m *MockLedgerRepository) SubsidiaryBalances(ctx context.Context, counterpartyTag string) ([]domain.SubsidiaryBalance, error) {
	args := m.Called(ctx, counterpartyTag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubsidiaryBalance), args.Error(1)
}

func (m *MockLedgerRepository) PostingHalted(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) ApplyEntryInTx(ctx context.Context, tx pgx.Tx, entryID string, lines []domain.JournalLine, periodID string) (bool, error) {
	args := m.Called(ctx, tx, entryID, lines, periodID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) Rebuild(ctx context.Context, force bool) (*portsrepo.RebuildResult, error) {
	args := m.Called(ctx, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.RebuildResult), args.Error(1)
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

// MockPeriodRepository is a mock type for the PeriodRepositoryFacade interface
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindOpenPeriod(ctx context.Context) (*domain.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context) ([]domain.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) HasClosedPeriodAfter(ctx context.Context, endDate time.Time) (bool, error) {
	args := m.Called(ctx, endDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockPeriodRepository) ListSnapshots(ctx context.Context, periodID string) ([]domain.PeriodSnapshot, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodSnapshot), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.Period, audit domain.AuditRecord) error {
	args := m.Called(ctx, period, audit)
	return args.Error(0)
}

func (m *MockPeriodRepository) BeginClose(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	args := m.Called(ctx, periodID, audit)
	return args.Error(0)
}

func (m *MockPeriodRepository) Close(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	args := m.Called(ctx, periodID, audit)
	return args.Error(0)
}

func (m *MockPeriodRepository) Lock(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	args := m.Called(ctx, periodID, audit)
	return args.Error(0)
}

func (m *MockPeriodRepository) Reopen(ctx context.Context, periodID string, audit domain.AuditRecord) error {
	args := m.Called(ctx, periodID, audit)
	return args.Error(0)
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

// MockReconciliationRepository is a mock type for the ReconciliationRepositoryFacade interface
type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) ListUnmatchedTransactions(ctx context.Context) ([]domain.ExternalTransaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExternalTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) ListOpenInvoices(ctx context.Context) ([]domain.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockReconciliationRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.ExternalTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExternalTransaction), args.Error(1)
}

func (m *MockReconciliationRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockReconciliationRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationMatch), args.Error(1)
}

func (m *MockReconciliationRepository) ListMatches(ctx context.Context, status *domain.MatchStatus) ([]domain.ReconciliationMatch, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationMatch), args.Error(1)
}

func (m *MockReconciliationRepository) CountPendingReviewInRange(ctx context.Context, start, end time.Time) (int, error) {
	args := m.Called(ctx, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockReconciliationRepository) SaveTransaction(ctx context.Context, txn domain.ExternalTransaction, audit domain.AuditRecord) error {
	args := m.Called(ctx, txn, audit)
	return args.Error(0)
}

func (m *MockReconciliationRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice, audit domain.AuditRecord) error {
	args := m.Called(ctx, invoice, audit)
	return args.Error(0)
}

func (m *MockReconciliationRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch, audit domain.AuditRecord) error {
	args := m.Called(ctx, match, audit)
	return args.Error(0)
}

func (m *MockReconciliationRepository) ConfirmMatch(ctx context.Context, match domain.ReconciliationMatch, expectedVersion int64, settledAmount decimal.Decimal, settlement domain.JournalEntry, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	args := m.Called(ctx, match, expectedVersion, settledAmount, settlement, balanceChanges, audit)
	return args.Error(0)
}

func (m *MockReconciliationRepository) UpdateMatchStatus(ctx context.Context, matchID string, status domain.MatchStatus, justification string, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, matchID, status, justification, audit, updatedBy, updatedAt)
	return args.Error(0)
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconciliationRepository)(nil)

// MockAuditRepository is a mock type for the AuditRepositoryFacade interface
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveRecord(ctx context.Context, record domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) SaveRecordInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) ListRecordsByTarget(ctx context.Context, targetType, targetID string, limit int) ([]domain.AuditRecord, error) {
	args := m.Called(ctx, targetType, targetID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditRecord), args.Error(1)
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)
