package verification

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// checkBounds rejects amounts outside (MinAmount, MaxAmount].
func checkBounds(p Policy, amount decimal.Decimal) []Violation {
	if amount.GreaterThan(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount) {
		return nil
	}
	return []Violation{newViolation(AmountOutOfBounds, SeverityHigh,
		"amount %s kg must be greater than %s and at most %s", amount, p.MinAmount, p.MaxAmount)}
}

func checkPrecision(p Policy, amount decimal.Decimal) []Violation {
	if amount.Equal(amount.Truncate(p.MaxFractionDigits)) {
		return nil
	}
	return []Violation{newViolation(SuspiciousPrecision, SeverityMedium,
		"amount %s has more than %d decimal places", amount, p.MaxFractionDigits)}
}

func checkYear(p Policy, year int, now time.Time) []Violation {
	maxYear := now.Year() + 1
	if year >= p.MinYear && year <= maxYear {
		return nil
	}
	return []Violation{newViolation(InvalidYear, SeverityHigh,
		"year %d must be between %d and %d", year, p.MinYear, maxYear)}
}

// checkRateLimit counts the claim itself on top of prior.
func checkRateLimit(p Policy, prior int) []Violation {
	if prior+1 <= p.RateLimitMax {
		return nil
	}
	return []Violation{newViolation(RapidSubmission, SeverityHigh,
		"%d claims in the last %s exceeds %d; retry after %d seconds",
		prior+1, p.RateLimitWindow, p.RateLimitMax, int(p.RateLimitCooldown.Seconds()))}
}

// checkCaps applies the self-reported daily and monthly caps.
func checkCaps(p Policy, amount, daySum, monthSum decimal.Decimal) []Violation {
	var out []Violation
	if total := daySum.Add(amount); total.GreaterThan(p.DailyCap) {
		out = append(out, newViolation(CumulativeExceeded, SeverityHigh,
			"self-reported offsets today would total %s kg, above the %s kg daily cap", total, p.DailyCap))
	}
	if total := monthSum.Add(amount); total.GreaterThan(p.MonthlyCap) {
		out = append(out, newViolation(CumulativeExceeded, SeverityHigh,
			"self-reported offsets this month would total %s kg, above the %s kg monthly cap", total, p.MonthlyCap))
	}
	return out
}

// checkFootprint is skipped when footprint is not positive.
func checkFootprint(p Policy, amount, footprint decimal.Decimal) []Violation {
	if !footprint.IsPositive() {
		return nil
	}
	limit := footprint.Mul(p.MaxFootprintRatio)
	if amount.LessThanOrEqual(limit) {
		return nil
	}
	return []Violation{newViolation(UnrealisticRatio, SeverityHigh,
		"offset %s kg exceeds %s x the %s kg footprint", amount, p.MaxFootprintRatio, footprint)}
}

// checkTier gates large claims on tier, permanence, registry and evidence.
func checkTier(p Policy, c ClaimView) []Violation {
	var out []Violation

	if c.Amount.GreaterThanOrEqual(p.CertifiedThreshold) {
		if c.Tier != TierCertifiedProject {
			out = append(out, newViolation(TierInsufficient, SeverityHigh,
				"claims of %s kg or more must be certified projects", p.CertifiedThreshold).require(ReqCertifiedProject))
		}
		if strings.TrimSpace(c.PermanencePlan) == "" {
			out = append(out, newViolation(MissingPermanencePlan, SeverityHigh,
				"claims of %s kg or more need a permanence plan", p.CertifiedThreshold).require(ReqPermanencePlan))
		}
		if strings.TrimSpace(c.RegistryID) == "" {
			out = append(out, newViolation(MissingRegistryID, SeverityHigh,
				"claims of %s kg or more need a registry verification ID", p.CertifiedThreshold).require(ReqRegistryID))
		}
	}

	if c.Amount.GreaterThanOrEqual(p.AdditionalityEvidenceAt) && strings.TrimSpace(c.AdditionalityEvidence) == "" {
		out = append(out, newViolation(MissingAdditionalityEvidence, SeverityMedium,
			"claims of %s kg or more need additionality evidence", p.AdditionalityEvidenceAt).require(ReqAdditionalityEvidence))
	}

	if c.Tier == TierSelfReported && c.Amount.GreaterThan(p.PhotoThreshold) {
		if len(c.EvidencePhotos) == 0 {
			out = append(out, newViolation(MissingPhotoEvidence, SeverityMedium,
				"self-reported claims above %s kg need at least one evidence photo", p.PhotoThreshold).require(ReqEvidencePhoto))
		}
		if n := utf8.RuneCountInString(strings.TrimSpace(c.Description)); n < p.MinDescriptionLength {
			out = append(out, newViolation(DescriptionTooShort, SeverityLow,
				"description has %d characters, at least %d required", n, p.MinDescriptionLength).require(ReqDescriptionLength))
		}
	}
	return out
}

// checkCapacity is skipped when the area is unknown.
func checkCapacity(p Policy, amount, yearSum, areaHectares decimal.Decimal) []Violation {
	if !areaHectares.IsPositive() {
		return nil
	}
	capacity := areaHectares.Mul(p.CapacityPerHectare)
	total := yearSum.Add(amount)
	if total.LessThanOrEqual(capacity) {
		return nil
	}
	return []Violation{newViolation(ExceedsCapacity, SeverityHigh,
		"offsets for the year would total %s kg, above %s kg for %s ha", total, capacity, areaHectares)}
}
