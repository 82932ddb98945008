package services

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// Payload limits.
const (
	MinClaimYear      = 2020
	MaxEvidencePhotos = 10
	MaxEvidenceDocs   = 5
	MaxEvidenceURLLen = 500

	// MaxAmountLen and the exponent range bound numeric input before any
	// decimal arithmetic runs on it.
	MaxAmountLen      = 40
	MinAmountExponent = -18
	MaxAmountExponent = 18
)

// ParseClaim validates a payload and converts it into an unsaved claim.
// Only malformed input is rejected here; out-of-policy values such as a
// non-positive amount are left for evaluation to report.
func ParseClaim(p api.ClaimPayload, now time.Time) (*models.Claim, error) {
	amount, err := parseAmount("amount", p.Amount, true)
	if err != nil {
		return nil, err
	}

	if p.Year < MinClaimYear || p.Year > now.Year()+1 {
		return nil, common.NewInputError("year", "must be between %d and %d", MinClaimYear, now.Year()+1)
	}

	kind := verification.KindOffset
	if t := strings.TrimSpace(p.Type); t != "" {
		kind = verification.Kind(strings.ToLower(t))
		if !kind.Valid() {
			return nil, common.NewInputError("type", "must be %q or %q", verification.KindOffset, verification.KindEmission)
		}
	}

	tier := verification.TierSelfReported
	if l := strings.TrimSpace(p.VerificationLevel); l != "" {
		tier = verification.Tier(strings.ToLower(l))
		if !tier.Valid() {
			return nil, common.NewInputError("verification_level", "unknown level %q", l)
		}
	}

	baseline, err := flattenBaseline(p.BaselineData)
	if err != nil {
		return nil, err
	}

	photos, err := parseURLs("evidence_photos", p.EvidencePhotos, MaxEvidencePhotos)
	if err != nil {
		return nil, err
	}
	docs, err := parseURLs("evidence_documents", p.EvidenceDocuments, MaxEvidenceDocs)
	if err != nil {
		return nil, err
	}

	footprint, err := parseAmount("footprint", p.Footprint, false)
	if err != nil {
		return nil, err
	}
	if footprint.IsNegative() {
		return nil, common.NewInputError("footprint", "must not be negative")
	}

	return &models.Claim{
		EstablishmentID:        strings.TrimSpace(p.EstablishmentID),
		ProductionID:           strings.TrimSpace(p.ProductionID),
		Practice:               strings.ToLower(strings.TrimSpace(p.Practice)),
		Type:                   kind,
		Amount:                 amount,
		Year:                   p.Year,
		VerificationLevel:      tier,
		Description:            strings.TrimSpace(p.Description),
		AdditionalityEvidence:  strings.TrimSpace(p.AdditionalityEvidence),
		PermanencePlan:         strings.TrimSpace(p.PermanencePlan),
		BaselineData:           baseline,
		RegistryVerificationID: strings.TrimSpace(p.RegistryVerificationID),
		EvidencePhotos:         photos,
		EvidenceDocuments:      docs,
		Footprint:              footprint,
		Status:                 models.StatusPendingReview,
	}, nil
}

// PayloadOf renders a stored claim back into its payload form.
func PayloadOf(c *models.Claim) api.ClaimPayload {
	var baseline map[string]any
	if len(c.BaselineData) > 0 {
		baseline = make(map[string]any, len(c.BaselineData))
		for k, v := range c.BaselineData {
			baseline[k] = v
		}
	}
	p := api.ClaimPayload{
		Amount:                 api.Amount(c.Amount.String()),
		Year:                   c.Year,
		Type:                   string(c.Type),
		VerificationLevel:      string(c.VerificationLevel),
		Description:            c.Description,
		AdditionalityEvidence:  c.AdditionalityEvidence,
		PermanencePlan:         c.PermanencePlan,
		BaselineData:           baseline,
		RegistryVerificationID: c.RegistryVerificationID,
		EvidencePhotos:         c.EvidencePhotos,
		EvidenceDocuments:      c.EvidenceDocuments,
		EstablishmentID:        c.EstablishmentID,
		ProductionID:           c.ProductionID,
		Practice:               c.Practice,
	}
	if c.Footprint.IsPositive() {
		p.Footprint = api.Amount(c.Footprint.String())
	}
	return p
}

func parseAmount(field string, a api.Amount, required bool) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		if required {
			return decimal.Zero, common.NewInputError(field, "is required")
		}
		return decimal.Zero, nil
	}
	if len(s) > MaxAmountLen {
		return decimal.Zero, common.NewInputError(field, "longer than %d characters", MaxAmountLen)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewInputError(field, "%q is not a number", s)
	}
	if exp := d.Exponent(); exp < MinAmountExponent || exp > MaxAmountExponent {
		return decimal.Zero, common.NewInputError(field, "exponent %d out of range [%d, %d]", exp, MinAmountExponent, MaxAmountExponent)
	}
	return d, nil
}

// flattenBaseline accepts scalar values only.
func flattenBaseline(in map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch x := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = x
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(x)
		default:
			return nil, common.NewInputError("baseline_data", "value of %q must be a scalar", k)
		}
	}
	return out, nil
}

func parseURLs(field string, in []string, limit int) ([]string, error) {
	if len(in) > limit {
		return nil, common.NewInputError(field, "at most %d items allowed", limit)
	}
	out := make([]string, 0, len(in))
	for i, raw := range in {
		s := strings.TrimSpace(raw)
		if len(s) > MaxEvidenceURLLen {
			return nil, common.NewInputError(field, "item %d longer than %d characters", i, MaxEvidenceURLLen)
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, common.NewInputError(field, "item %d is not an http(s) URL", i)
		}
		out = append(out, s)
	}
	return out, nil
}
