// Package verification scores carbon-offset and emission claims.
//
// A Verifier runs a fixed sequence of rule evaluators over a claim and the
// read-only aggregates exposed by a Ledger, computes a trust score and an
// effective (credited) amount, and folds everything into a Result. Policy
// violations are values in the Result; Evaluate only returns an error when
// the ledger itself fails.
package verification

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the verification level a claim was submitted under.
type Tier string

const (
	TierSelfReported      Tier = "self_reported"
	TierCommunityVerified Tier = "community_verified"
	TierCertifiedProject  Tier = "certified_project"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierSelfReported, TierCommunityVerified, TierCertifiedProject:
		return true
	}
	return false
}

// Kind distinguishes offsets (credited) from emissions (recorded as is).
type Kind string

const (
	KindOffset   Kind = "offset"
	KindEmission Kind = "emission"
)

func (k Kind) Valid() bool { return k == KindOffset || k == KindEmission }

// ClaimView is the read-only data the evaluators need from a claim.
type ClaimView struct {
	ID              string
	UserID          string
	EstablishmentID string
	ProductionID    string
	// Practice is the source tag, e.g. "no_till" or "iot".
	Practice string
	Kind     Kind
	Amount   decimal.Decimal
	Year     int
	Tier     Tier

	Description           string
	AdditionalityEvidence string
	PermanencePlan        string
	BaselineData          map[string]string
	RegistryID            string
	EvidencePhotos        []string
	EvidenceDocuments     []string

	// Footprint is the claimed footprint; zero means none was supplied.
	Footprint decimal.Decimal

	CreatedAt time.Time
}

// View makes ClaimView satisfy Claim, so fixtures can be passed directly.
func (c ClaimView) View() ClaimView { return c }

// Claim is anything that can present itself as a ClaimView.
type Claim interface {
	View() ClaimView
}
