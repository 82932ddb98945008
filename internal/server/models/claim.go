// Package models holds the rows the verification server persists.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/verification"
)

// ClaimStatus is the stored outcome of the latest evaluation.
type ClaimStatus string

const (
	StatusApproved      ClaimStatus = "approved"
	StatusRejected      ClaimStatus = "rejected"
	StatusPendingReview ClaimStatus = "pending_review"
	StatusAutoApproved  ClaimStatus = "auto_approved"
)

// Claim is a submitted carbon claim together with its written-back
// verification fields.
type Claim struct {
	ID                     string
	UserID                 string
	EstablishmentID        string
	ProductionID           string
	Practice               string
	Type                   verification.Kind
	Amount                 decimal.Decimal
	Year                   int
	VerificationLevel      verification.Tier
	Description            string
	AdditionalityEvidence  string
	PermanencePlan         string
	BaselineData           map[string]string
	RegistryVerificationID string
	EvidencePhotos         []string
	EvidenceDocuments      []string
	Footprint              decimal.Decimal

	Status          ClaimStatus
	TrustScore      float64
	EffectiveAmount decimal.Decimal
	AuditRequired   bool
	GamingRiskScore float64
	VerifiedAt      *time.Time
	CreatedAt       time.Time
}

// View implements verification.Claim.
func (c *Claim) View() verification.ClaimView {
	return verification.ClaimView{
		ID:                    c.ID,
		UserID:                c.UserID,
		EstablishmentID:       c.EstablishmentID,
		ProductionID:          c.ProductionID,
		Practice:              c.Practice,
		Kind:                  c.Type,
		Amount:                c.Amount,
		Year:                  c.Year,
		Tier:                  c.VerificationLevel,
		Description:           c.Description,
		AdditionalityEvidence: c.AdditionalityEvidence,
		PermanencePlan:        c.PermanencePlan,
		BaselineData:          c.BaselineData,
		RegistryID:            c.RegistryVerificationID,
		EvidencePhotos:        c.EvidencePhotos,
		EvidenceDocuments:     c.EvidenceDocuments,
		Footprint:             c.Footprint,
		CreatedAt:             c.CreatedAt,
	}
}

// Verification is the set of columns written back after an evaluation.
type Verification struct {
	Status          ClaimStatus
	TrustScore      float64
	EffectiveAmount decimal.Decimal
	AuditRequired   bool
	GamingRiskScore float64
	VerifiedAt      time.Time
}

// Apply copies v onto the claim.
func (c *Claim) Apply(v Verification) {
	c.Status = v.Status
	c.TrustScore = v.TrustScore
	c.EffectiveAmount = v.EffectiveAmount
	c.AuditRequired = v.AuditRequired
	c.GamingRiskScore = v.GamingRiskScore
	at := v.VerifiedAt
	c.VerifiedAt = &at
}
