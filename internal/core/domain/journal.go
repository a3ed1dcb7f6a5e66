package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySource tags the subsystem that produced a journal entry.
type EntrySource string

const (
	SourceInvoice    EntrySource = "INVOICE"
	SourcePayment    EntrySource = "PAYMENT"
	SourceAdjustment EntrySource = "ADJUSTMENT"
	SourceManual     EntrySource = "MANUAL"
)

// Valid reports whether the source tag is known.
func (s EntrySource) Valid() bool {
	switch s {
	case SourceInvoice, SourcePayment, SourceAdjustment, SourceManual:
		return true
	}
	return false
}

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event composed of journal lines.
// Entries are append-only: corrections are made with reversing entries, never edits.
type JournalEntry struct {
	EntryID     string      `json:"entryID"`   // Primary key (UUID)
	EntryDate   time.Time   `json:"entryDate"` // Date the event occurred
	Reference   string      `json:"reference"` // External document reference, not globally unique
	Description string      `json:"description"`
	Source      EntrySource `json:"source"`
	SourceID    string      `json:"sourceID"` // (source, sourceID) unique per posting intent
	PeriodID    string      `json:"periodID"` // Period the entry posted into
	Status      EntryStatus `json:"status"`
	// Reversal linkage. OriginalEntryID is set on the reversing entry,
	// ReversingEntryID on the entry that was reversed.
	OriginalEntryID  *string           `json:"originalEntryID,omitempty"`
	ReversingEntryID *string           `json:"reversingEntryID,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"` // Schema-validated per source
	Lines            []JournalLine     `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single debit or credit against one account.
// Exactly one of Debit/Credit is nonzero. Immutable after posting.
type JournalLine struct {
	LineID          string          `json:"lineID"`
	EntryID         string          `json:"entryID"`
	AccountCode     string          `json:"accountCode"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description"`
	CounterpartyTag string          `json:"counterpartyTag,omitempty"` // Drives subsidiary ledgers
	AuditFields
}

// Amount returns the nonzero side of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if !l.Debit.IsZero() {
		return l.Debit
	}
	return l.Credit
}

// IsDebit reports whether the line is a debit.
func (l JournalLine) IsDebit() bool {
	return !l.Debit.IsZero()
}
