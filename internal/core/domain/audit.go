package domain

import (
	"encoding/json"
	"time"
)

// AuditRecord is one immutable row in the audit log. Append-only: no update or
// delete operation exists anywhere in the codebase for these.
type AuditRecord struct {
	RecordID   string          `json:"recordID"`
	ActorID    string          `json:"actorID"`
	Action     string          `json:"action"`
	TargetType string          `json:"targetType"`
	TargetID   string          `json:"targetID"`
	OldValue   json.RawMessage `json:"oldValue,omitempty"`
	NewValue   json.RawMessage `json:"newValue,omitempty"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Audit actions recorded across the services.
const (
	ActionAccountCreated  = "account.created"
	ActionAccountRetired  = "account.retired"
	ActionEntryPosted     = "entry.posted"
	ActionEntryReversed   = "entry.reversed"
	ActionPeriodCreated   = "period.created"
	ActionPeriodPending   = "period.pending_close"
	ActionPeriodClosed    = "period.closed"
	ActionPeriodLocked    = "period.locked"
	ActionPeriodReopened  = "period.reopened"
	ActionMatchProposed   = "match.proposed"
	ActionMatchConfirmed  = "match.confirmed"
	ActionMatchRejected   = "match.rejected"
	ActionMatchDeferred   = "match.deferred"
	ActionLedgerRebuilt   = "ledger.rebuilt"
	ActionInvoiceEnrolled = "invoice.enrolled"
	ActionTxnIngested     = "transaction.ingested"
)
