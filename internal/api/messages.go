// Package api defines the VerificationService wire contract shared by the
// server and trazoctl. Messages are plain structs carried over gRPC with a
// JSON codec.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trazo/internal/verification"
	"github.com/shopspring/decimal"
)

// Amount is the raw textual amount of a payload. It accepts both JSON
// numbers and numeric strings; parsing happens server-side so malformed
// values become input errors rather than decode failures.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("amount must be a number or numeric string: %w", err)
		}
		*a = Amount(n)
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// ClaimPayload is the claim creation payload.
type ClaimPayload struct {
	Amount                 Amount         `json:"amount"`
	Year                   int            `json:"year"`
	Type                   string         `json:"type"`
	VerificationLevel      string         `json:"verification_level"`
	Description            string         `json:"description,omitempty"`
	AdditionalityEvidence  string         `json:"additionality_evidence,omitempty"`
	PermanencePlan         string         `json:"permanence_plan,omitempty"`
	BaselineData           map[string]any `json:"baseline_data,omitempty"`
	RegistryVerificationID string         `json:"registry_verification_id,omitempty"`
	EvidencePhotos         []string       `json:"evidence_photos,omitempty"`
	EvidenceDocuments      []string       `json:"evidence_documents,omitempty"`

	EstablishmentID string `json:"establishment_id,omitempty"`
	ProductionID    string `json:"production_id,omitempty"`
	Practice        string `json:"practice,omitempty"`
	Footprint       Amount `json:"footprint,omitempty"`
}

type SubmitClaimRequest struct {
	Claim ClaimPayload `json:"claim"`
}

type SubmitClaimResponse struct {
	ClaimID string               `json:"claim_id"`
	Status  string               `json:"status"`
	Result  *verification.Result `json:"result"`
}

type EvaluateClaimRequest struct {
	Claim ClaimPayload `json:"claim"`
}

type EvaluateClaimResponse struct {
	Result *verification.Result `json:"result"`
}

type ReauditClaimRequest struct {
	ClaimID string `json:"claim_id"`
}

type ReauditClaimResponse struct {
	ClaimID string               `json:"claim_id"`
	Status  string               `json:"status"`
	Result  *verification.Result `json:"result"`
}

type GetAuditLogRequest struct {
	ClaimID string `json:"claim_id"`
}

// AuditEntry is one append-only audit log row.
type AuditEntry struct {
	ID              string                   `json:"id"`
	ClaimID         string                   `json:"claim_id,omitempty"`
	UserID          string                   `json:"user_id"`
	Action          string                   `json:"action"`
	Approved        bool                     `json:"approved"`
	TrustScore      float64                  `json:"trust_score"`
	EffectiveAmount decimal.Decimal          `json:"effective_amount"`
	AuditRequired   bool                     `json:"audit_required"`
	Violations      []verification.Violation `json:"violations"`
	CreatedAt       time.Time                `json:"created_at"`
}

type GetAuditLogResponse struct {
	Entries []AuditEntry `json:"entries"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
