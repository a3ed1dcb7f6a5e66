package models

import (
	"encoding/json"
	"time"
)

// AuditRecord is one immutable row in the audit log.
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
