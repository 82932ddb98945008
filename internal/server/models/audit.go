package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/verification"
)

// AuditAction tags why an audit entry was written.
type AuditAction string

const (
	ActionEvaluate      AuditAction = "evaluate"
	ActionReaudit       AuditAction = "reaudit"
	ActionSecurityAbort AuditAction = "security_abort"
)

// AuditEntry is an append-only audit log row. ClaimID is empty for
// submissions aborted before the claim was stored.
type AuditEntry struct {
	ID              string
	ClaimID         string
	UserID          string
	Action          AuditAction
	Approved        bool
	TrustScore      float64
	EffectiveAmount decimal.Decimal
	AuditRequired   bool
	Violations      []verification.Violation
	Snapshot        json.RawMessage
	CreatedAt       time.Time
}
