package verification

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minTrust = 0.1
	maxTrust = 1.0
)

// scoreTrust combines tier, track record, submission quality and gaming
// risk into a score in [0.1, 1.0], rounded to 4 places.
func scoreTrust(p Policy, c ClaimView, h UserHistory, flags int, risk float64) float64 {
	score := p.BaseTrust[c.Tier]

	if h.VerifiedClaims > 10 {
		score += 0.1
	}
	if h.PassRate() > 0.9 {
		score += 0.1
	}

	if flags == 0 {
		score += 0.05
	} else {
		score -= 0.1 * float64(flags)
	}

	if strings.TrimSpace(c.AdditionalityEvidence) != "" {
		score += 0.05
	}
	if strings.TrimSpace(c.PermanencePlan) != "" {
		score += 0.05
	}
	if len(c.EvidencePhotos) > 0 {
		score += 0.03
	}
	if len(c.EvidenceDocuments) > 0 {
		score += 0.03
	}

	score -= risk * 0.3

	score = math.Min(math.Max(score, minTrust), maxTrust)
	return math.Round(score*1e4) / 1e4
}

// effectiveAmount is the credited amount. Approved offsets are discounted
// by trust and the tier's buffer pool; emissions count at face value.
// Rejected claims credit nothing, and never more than the claimed amount.
func effectiveAmount(p Policy, c ClaimView, approved bool, trust float64) decimal.Decimal {
	if !approved {
		if c.Amount.IsPositive() {
			return decimal.Zero
		}
		return c.Amount
	}
	if c.Kind == KindEmission {
		return c.Amount
	}
	keep := decimal.NewFromInt(1).Sub(p.Buffer[c.Tier])
	return c.Amount.Mul(decimal.NewFromFloat(trust)).Mul(keep).Round(6)
}
