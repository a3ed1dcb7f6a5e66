package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus is the lifecycle state of a reconciliation match.
type MatchStatus string

const (
	MatchAutoMatched   MatchStatus = "AUTO_MATCHED"
	MatchPendingReview MatchStatus = "PENDING_REVIEW"
	MatchConfirmed     MatchStatus = "CONFIRMED"
	MatchRejected      MatchStatus = "REJECTED"
	// MatchDeferred is the reviewer's explicit escape hatch: it unblocks a period
	// close without resolving the match. The matcher requeues deferred matches.
	MatchDeferred MatchStatus = "DEFERRED"
)

// Active reports whether the match still ties up its transaction and invoice.
func (s MatchStatus) Active() bool {
	return s == MatchAutoMatched || s == MatchPendingReview || s == MatchConfirmed
}

// ExternalTransaction is a bank or payment line pulled into the unmatched pool
// by the banking collaborator. The matcher only reads it.
type ExternalTransaction struct {
	TransactionID string          `json:"transactionID"` // Internal UUID
	ExternalID    string          `json:"externalID"`    // Bank-side identifier, unique
	Amount        decimal.Decimal `json:"amount"`
	TxnDate       time.Time       `json:"txnDate"`
	Description   string          `json:"description"`
	Matched       bool            `json:"matched"`
	AuditFields
}

// InvoiceStatus is the settlement state of an open invoice.
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "OPEN"
	InvoiceSettled InvoiceStatus = "SETTLED"
)

// Invoice is the matcher's view of an invoice awaiting settlement. The invoice
// module owns the document; this projection tracks the remaining balance and a
// version counter for optimistic concurrency at confirmation time.
type Invoice struct {
	InvoiceID       string          `json:"invoiceID"`
	Reference       string          `json:"reference"`
	CounterpartyTag string          `json:"counterpartyTag"`
	Amount          decimal.Decimal `json:"amount"`
	Remaining       decimal.Decimal `json:"remaining"`
	InvoiceDate     time.Time       `json:"invoiceDate"`
	Status          InvoiceStatus   `json:"status"`
	Version         int64           `json:"version"` // Bumped on every mutation
	AuditFields
}

// ReconciliationMatch pairs an external transaction with an invoice at a scored
// confidence. Weak references by id: the matcher owns the match record only.
type ReconciliationMatch struct {
	MatchID        string      `json:"matchID"`
	TransactionID  string      `json:"transactionID"`
	InvoiceID      string      `json:"invoiceID"`
	Confidence     float64     `json:"confidence"` // 0.0 - 1.0
	Status         MatchStatus `json:"status"`
	InvoiceVersion int64       `json:"invoiceVersion"` // Invoice version at proposal time
	Reason         string      `json:"reason,omitempty"`
	Justification  string      `json:"justification,omitempty"` // Set on defer
	AuditFields
}
