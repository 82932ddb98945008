package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/trazo/internal/registry"
)

// RegistryLookup confirms a project ID against the certification registries.
type RegistryLookup interface {
	VerifyAny(ctx context.Context, projectID string) registry.Result
}

// Verifier evaluates claims against a Policy using a Ledger and a registry
// lookup. It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	ledger   Ledger
	registry RegistryLookup
	policy   Policy
	now      func() time.Time
}

// Option customises a Verifier.
type Option func(*Verifier)

// WithClock overrides the clock used for the year check and for claims
// without a creation time.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier builds a Verifier. registry may be nil, in which case every
// certified claim fails registry validation.
func NewVerifier(ledger Ledger, lookup RegistryLookup, policy Policy, opts ...Option) *Verifier {
	v := &Verifier{
		ledger:   ledger,
		registry: lookup,
		policy:   policy,
		now:      time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Policy returns the rule set in use.
func (v *Verifier) Policy() Policy { return v.policy }

// Evaluate runs every check against claim. Aggregation windows end at the
// claim's creation time and exclude the claim's own ID, so evaluating a
// stored claim again yields the same result while the ledger is unchanged.
func (v *Verifier) Evaluate(ctx context.Context, claim Claim) (*Result, error) {
	c := claim.View()
	now := v.now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	p := v.policy

	r := newResult()
	r.EvaluatedAt = now

	if vs := checkBounds(p, c.Amount); len(vs) > 0 {
		r.add(vs...)
		r.TrustScore = minTrust
		decide(p, c, r)
		r.EffectiveAmount = effectiveAmount(p, c, r.Approved, r.TrustScore)
		return r, nil
	}

	r.add(checkPrecision(p, c.Amount)...)
	r.add(checkYear(p, c.Year, now)...)

	prior, err := v.ledger.CountUserClaims(ctx, c.UserID, Trailing(c.CreatedAt, p.RateLimitWindow), c.ID)
	if err != nil {
		return nil, fmt.Errorf("count recent claims: %w", err)
	}
	r.add(checkRateLimit(p, prior)...)

	if c.Kind == KindOffset {
		if err := v.evaluateOffset(ctx, c, r); err != nil {
			return nil, err
		}
	}

	history, err := v.ledger.UserHistory(ctx, c.UserID, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("user history: %w", err)
	}
	r.TrustScore = scoreTrust(p, c, history, len(r.AntiGamingFlags), r.GamingRiskScore)

	decide(p, c, r)
	r.EffectiveAmount = effectiveAmount(p, c, r.Approved, r.TrustScore)
	return r, nil
}

func (v *Verifier) evaluateOffset(ctx context.Context, c ClaimView, r *Result) error {
	p := v.policy

	if c.Tier == TierSelfReported {
		day, err := v.ledger.SumClaims(ctx, SumQuery{
			UserID: c.UserID, Kind: KindOffset, Tier: TierSelfReported,
			Window: Trailing(c.CreatedAt, p.DailyWindow), ExcludeClaimID: c.ID,
		})
		if err != nil {
			return fmt.Errorf("sum daily offsets: %w", err)
		}
		month, err := v.ledger.SumClaims(ctx, SumQuery{
			UserID: c.UserID, Kind: KindOffset, Tier: TierSelfReported,
			Window: Trailing(c.CreatedAt, p.MonthlyWindow), ExcludeClaimID: c.ID,
		})
		if err != nil {
			return fmt.Errorf("sum monthly offsets: %w", err)
		}
		r.add(checkCaps(p, c.Amount, day, month)...)
	}

	var est *EstablishmentProfile
	if c.EstablishmentID != "" {
		var err error
		if est, err = v.ledger.Establishment(ctx, c.EstablishmentID); err != nil {
			return fmt.Errorf("load establishment: %w", err)
		}
	}

	footprint := c.Footprint
	if !footprint.IsPositive() && est != nil {
		emissions, err := v.ledger.SumClaims(ctx, SumQuery{
			EstablishmentID: c.EstablishmentID, Kind: KindEmission, Year: c.Year,
			Window: Until(c.CreatedAt), ExcludeClaimID: c.ID,
		})
		if err != nil {
			return fmt.Errorf("sum establishment emissions: %w", err)
		}
		footprint = emissions
	}
	r.add(checkFootprint(p, c.Amount, footprint)...)

	r.add(checkTier(p, c)...)

	if additionalityApplies(p, c) {
		var (
			region   string
			adoption Adoption
		)
		if est != nil && est.Region != "" && c.Practice != "" {
			region = est.Region
			var err error
			adoption, err = v.ledger.RegionalAdoption(ctx, region, c.Practice, Trailing(c.CreatedAt, p.AdoptionWindow), c.EstablishmentID)
			if err != nil {
				return fmt.Errorf("regional adoption: %w", err)
			}
		}
		assessment, vs := assessAdditionality(p, c, region, adoption)
		r.Additionality = assessment
		r.add(vs...)
	} else {
		r.Additionality = AdditionalityAssessment{Passed: true}
	}

	recent, err := v.ledger.RecentUserClaims(ctx, c.UserID, Trailing(c.CreatedAt, longest(p.HighFrequencyWindow, p.ProgressionWindow, p.AvoidanceWindow, p.SwitchingWindow)), c.ID)
	if err != nil {
		return fmt.Errorf("recent claims: %w", err)
	}
	r.AntiGamingFlags, r.GamingRiskScore = detectGaming(p, c, recent)
	if r.GamingRiskScore >= p.GamingReviewThreshold {
		r.add(newViolation(GamingDetected, SeverityHigh,
			"gaming risk %.2f (%s) requires manual review", r.GamingRiskScore, joinFlags(r.AntiGamingFlags)))
	}

	if est != nil && est.AreaHectares.IsPositive() {
		yearSum, err := v.ledger.SumClaims(ctx, SumQuery{
			EstablishmentID: c.EstablishmentID, Kind: KindOffset, Year: c.Year,
			Window: Until(c.CreatedAt), ExcludeClaimID: c.ID,
		})
		if err != nil {
			return fmt.Errorf("sum establishment offsets: %w", err)
		}
		r.add(checkCapacity(p, c.Amount, yearSum, est.AreaHectares)...)
	}

	mv, vs := checkMethodology(p, c)
	r.Methodology = mv
	r.add(vs...)

	if c.Tier == TierCertifiedProject {
		r.Registry = v.validateRegistry(ctx, c)
		if !r.Registry.Verified {
			viol := newViolation(RegistryVerificationFailed, SeverityHigh,
				"registry validation failed for %q: %s", c.RegistryID, r.Registry.Error)
			if strings.TrimSpace(c.RegistryID) == "" {
				viol = viol.require(ReqRegistryID)
			}
			r.add(viol)
		}
	}
	return nil
}

func (v *Verifier) validateRegistry(ctx context.Context, c ClaimView) RegistryValidation {
	rv := RegistryValidation{Checked: true}
	id := strings.TrimSpace(c.RegistryID)
	switch {
	case id == "":
		rv.Error = "no registry verification ID supplied"
	case v.registry == nil:
		rv.ProjectID = id
		rv.Error = "no registry configured"
	default:
		ctx, cancel := context.WithTimeout(ctx, v.policy.RegistryTimeout)
		defer cancel()
		rv.Result = v.registry.VerifyAny(ctx, id)
	}
	return rv
}

func longest(ds ...time.Duration) time.Duration {
	var m time.Duration
	for _, d := range ds {
		if d > m {
			m = d
		}
	}
	return m
}

func joinFlags(flags []GamingFlag) string {
	s := make([]string, len(flags))
	for i, f := range flags {
		s[i] = string(f)
	}
	return strings.Join(s, ", ")
}

// Summarise returns a compact, human-readable decision line for logs.
func Summarise(r *Result) string {
	kinds := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		kinds = append(kinds, string(v.Kind))
	}
	return fmt.Sprintf("approved=%t trust=%.4f effective=%s audit=%t violations=[%s]",
		r.Approved, r.TrustScore, r.EffectiveAmount.StringFixed(2), r.AuditRequired, strings.Join(kinds, ","))
}
