package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents a single, balanced financial event.
type JournalEntry struct {
	EntryID          string            `json:"entryID"` // Primary key (UUID)
	EntryDate        time.Time         `json:"entryDate"`
	Reference        string            `json:"reference"`
	Description      string            `json:"description"`
	Source           string            `json:"source"`
	SourceID         string            `json:"sourceID"`
	PeriodID         string            `json:"periodID"`
	Status           EntryStatus       `json:"status"`
	OriginalEntryID  *string           `json:"originalEntryID,omitempty"`
	ReversingEntryID *string           `json:"reversingEntryID,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"` // Stored as jsonb
	AuditFields
}

// JournalLine is a single debit or credit row belonging to an entry.
type JournalLine struct {
	LineID          string          `json:"lineID"`
	EntryID         string          `json:"entryID"`
	AccountCode     string          `json:"accountCode"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description"`
	CounterpartyTag string          `json:"counterpartyTag"`
	AuditFields
}
