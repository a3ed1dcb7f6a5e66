package models

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
	MatchDeferred      MatchStatus = "DEFERRED"
)

// ExternalTransaction is a bank line in the matcher's unmatched pool.
type ExternalTransaction struct {
	TransactionID string          `json:"transactionID"`
	ExternalID    string          `json:"externalID"`
	Amount        decimal.Decimal `json:"amount"`
	TxnDate       time.Time       `json:"txnDate"`
	Description   string          `json:"description"`
	Matched       bool            `json:"matched"`
	AuditFields
}

// InvoiceStatus is the settlement state of an enrolled invoice.
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "OPEN"
	InvoiceSettled InvoiceStatus = "SETTLED"
)

// Invoice is the matcher's settlement-tracking projection of an invoice.
type Invoice struct {
	InvoiceID       string          `json:"invoiceID"`
	Reference       string          `json:"reference"`
	CounterpartyTag string          `json:"counterpartyTag"`
	Amount          decimal.Decimal `json:"amount"`
	Remaining       decimal.Decimal `json:"remaining"`
	InvoiceDate     time.Time       `json:"invoiceDate"`
	Status          InvoiceStatus   `json:"status"`
	Version         int64           `json:"version"`
	AuditFields
}

// ReconciliationMatch pairs a transaction with an invoice at a confidence score.
type ReconciliationMatch struct {
	MatchID        string      `json:"matchID"`
	TransactionID  string      `json:"transactionID"`
	InvoiceID      string      `json:"invoiceID"`
	Confidence     float64     `json:"confidence"`
	Status         MatchStatus `json:"status"`
	InvoiceVersion int64       `json:"invoiceVersion"`
	Reason         string      `json:"reason"`
	Justification  string      `json:"justification"`
	AuditFields
}
