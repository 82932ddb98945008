package verification

import (
	"math"
	"strings"
	"time"
)

// detectGaming looks for manipulation patterns across the claim and the
// user's recent claims (newest first, the claim itself excluded). It returns
// the flags in a fixed order and the clamped risk score.
func detectGaming(p Policy, c ClaimView, recent []ClaimSummary) ([]GamingFlag, float64) {
	flags := []GamingFlag{}

	if c.Tier != TierCertifiedProject &&
		c.Amount.GreaterThanOrEqual(p.RoundNumberMin) &&
		c.Amount.Mod(p.RoundNumberStep).IsZero() {
		flags = append(flags, FlagRoundNumber)
	}

	if countSince(recent, c.CreatedAt, p.HighFrequencyWindow, nil)+1 > p.HighFrequencyMax {
		flags = append(flags, FlagHighFrequency)
	}

	if isLinearProgression(c, recent, p.ProgressionWindow) {
		flags = append(flags, FlagLinearProgression)
	}

	avoiding := func(s ClaimSummary) bool {
		return s.Kind == KindOffset && s.Tier == TierSelfReported && s.Amount.GreaterThanOrEqual(p.AvoidanceMinAmount)
	}
	if c.Tier == TierSelfReported && c.Amount.GreaterThanOrEqual(p.AvoidanceMinAmount) &&
		countSince(recent, c.CreatedAt, p.AvoidanceWindow, avoiding)+1 >= p.AvoidanceMinCount {
		flags = append(flags, FlagVerificationAvoidance)
	}

	if distinctCombos(c, recent, p.SwitchingWindow) >= p.SwitchingMinCombos {
		flags = append(flags, FlagProductionSwitching)
	}

	var risk float64
	for _, f := range flags {
		risk += p.GamingWeights[f]
	}
	risk = math.Round(math.Min(math.Max(risk, 0), 1)*1e4) / 1e4
	return flags, risk
}

func countSince(recent []ClaimSummary, anchor time.Time, d time.Duration, keep func(ClaimSummary) bool) int {
	w := Trailing(anchor, d)
	n := 0
	for _, s := range recent {
		if w.Contains(s.CreatedAt) && (keep == nil || keep(s)) {
			n++
		}
	}
	return n
}

// isLinearProgression checks whether the two latest prior offsets and the
// claim form an arithmetic progression with a non-zero step.
func isLinearProgression(c ClaimView, recent []ClaimSummary, d time.Duration) bool {
	w := Trailing(c.CreatedAt, d)
	var prev []ClaimSummary
	for _, s := range recent {
		if s.Kind == KindOffset && w.Contains(s.CreatedAt) {
			prev = append(prev, s)
			if len(prev) == 2 {
				break
			}
		}
	}
	if len(prev) < 2 {
		return false
	}
	step := c.Amount.Sub(prev[0].Amount)
	return !step.IsZero() && prev[0].Amount.Sub(prev[1].Amount).Equal(step)
}

func distinctCombos(c ClaimView, recent []ClaimSummary, d time.Duration) int {
	w := Trailing(c.CreatedAt, d)
	seen := map[string]struct{}{
		comboKey(c.EstablishmentID, c.ProductionID): {},
	}
	for _, s := range recent {
		if w.Contains(s.CreatedAt) {
			seen[comboKey(s.EstablishmentID, s.ProductionID)] = struct{}{}
		}
	}
	return len(seen)
}

func comboKey(establishmentID, productionID string) string {
	return strings.Join([]string{establishmentID, productionID}, "/")
}
