package verification

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func summary(id, amount string, ago time.Duration) ClaimSummary {
	return ClaimSummary{
		ID: id, Kind: KindOffset, Tier: TierSelfReported, Amount: dec(amount),
		EstablishmentID: "est-1", ProductionID: "prod-1", CreatedAt: t0.Add(-ago),
	}
}

func TestDetectGaming_RoundNumber(t *testing.T) {
	p := DefaultPolicy()

	flags, risk := detectGaming(p, ClaimView{Tier: TierSelfReported, Amount: dec("150"), CreatedAt: t0}, nil)
	assert.Equal(t, []GamingFlag{FlagRoundNumber}, flags)
	assert.InDelta(t, 0.20, risk, 1e-9)

	flags, _ = detectGaming(p, ClaimView{Tier: TierCertifiedProject, Amount: dec("150"), CreatedAt: t0}, nil)
	assert.Empty(t, flags, "certified projects are exempt")

	flags, _ = detectGaming(p, ClaimView{Tier: TierSelfReported, Amount: dec("50"), CreatedAt: t0}, nil)
	assert.NotContains(t, flags, FlagRoundNumber, "below the minimum")

	flags, _ = detectGaming(p, ClaimView{Tier: TierCommunityVerified, Amount: dec("175"), CreatedAt: t0}, nil)
	assert.NotContains(t, flags, FlagRoundNumber)
}

func TestDetectGaming_HighFrequency(t *testing.T) {
	p := DefaultPolicy()
	c := ClaimView{Tier: TierCommunityVerified, Amount: dec("3"), CreatedAt: t0, EstablishmentID: "est-1", ProductionID: "prod-1"}

	var recent []ClaimSummary
	for i := 0; i < 10; i++ {
		recent = append(recent, summary(fmt.Sprint(i), "1", time.Duration(i+1)*time.Hour))
	}
	flags, _ := detectGaming(p, c, recent)
	assert.Contains(t, flags, FlagHighFrequency)

	flags, _ = detectGaming(p, c, recent[:9])
	assert.NotContains(t, flags, FlagHighFrequency)

	recent[9].CreatedAt = t0.Add(-25 * time.Hour)
	flags, _ = detectGaming(p, c, recent)
	assert.NotContains(t, flags, FlagHighFrequency, "outside the 24h window")
}

func TestDetectGaming_LinearProgression(t *testing.T) {
	p := DefaultPolicy()
	c := ClaimView{Tier: TierCommunityVerified, Amount: dec("30"), CreatedAt: t0}

	flags, _ := detectGaming(p, c, []ClaimSummary{summary("b", "20", time.Hour), summary("a", "10", 2*time.Hour)})
	assert.Contains(t, flags, FlagLinearProgression)

	flags, _ = detectGaming(p, c, []ClaimSummary{summary("b", "20", time.Hour), summary("a", "11", 2*time.Hour)})
	assert.NotContains(t, flags, FlagLinearProgression)

	flat := ClaimView{Tier: TierCommunityVerified, Amount: dec("20"), CreatedAt: t0}
	flags, _ = detectGaming(p, flat, []ClaimSummary{summary("b", "20", time.Hour), summary("a", "20", 2*time.Hour)})
	assert.NotContains(t, flags, FlagLinearProgression, "zero step is not a progression")

	flags, _ = detectGaming(p, c, []ClaimSummary{summary("b", "20", time.Hour)})
	assert.NotContains(t, flags, FlagLinearProgression)
}

func TestDetectGaming_VerificationAvoidance(t *testing.T) {
	p := DefaultPolicy()
	c := ClaimView{Tier: TierSelfReported, Amount: dec("60"), CreatedAt: t0}

	recent := []ClaimSummary{summary("b", "70", 24*time.Hour), summary("a", "55", 10*24*time.Hour)}
	flags, _ := detectGaming(p, c, recent)
	assert.Contains(t, flags, FlagVerificationAvoidance)

	recent[1].Amount = dec("49")
	flags, _ = detectGaming(p, c, recent)
	assert.NotContains(t, flags, FlagVerificationAvoidance)
}

func TestDetectGaming_ProductionSwitching(t *testing.T) {
	p := DefaultPolicy()
	c := ClaimView{Tier: TierCommunityVerified, Amount: dec("7"), CreatedAt: t0, EstablishmentID: "est-1", ProductionID: "p0"}

	var recent []ClaimSummary
	for i := 1; i <= 4; i++ {
		s := summary(fmt.Sprint(i), fmt.Sprint(i*13), time.Duration(i)*24*time.Hour)
		s.ProductionID = fmt.Sprintf("p%d", i)
		recent = append(recent, s)
	}
	flags, _ := detectGaming(p, c, recent)
	assert.Contains(t, flags, FlagProductionSwitching)

	recent[3].ProductionID = "p0"
	flags, _ = detectGaming(p, c, recent)
	assert.NotContains(t, flags, FlagProductionSwitching)
}

func TestDetectGaming_RiskIsClamped(t *testing.T) {
	p := DefaultPolicy()
	c := ClaimView{Tier: TierSelfReported, Amount: dec("300"), CreatedAt: t0, EstablishmentID: "est-1", ProductionID: "p0"}

	var recent []ClaimSummary
	for i := 1; i <= 10; i++ {
		s := summary(fmt.Sprint(i), fmt.Sprint(300-i*50), time.Duration(i)*time.Hour)
		s.ProductionID = fmt.Sprintf("p%d", i)
		recent = append(recent, s)
	}
	recent[0].Amount = dec("250")
	recent[1].Amount = dec("200")

	flags, risk := detectGaming(p, c, recent)
	assert.Len(t, flags, 5)
	assert.Equal(t, 1.0, risk)
}
