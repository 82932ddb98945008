// Package automation decides which sensor-sourced claims skip manual review.
package automation

import (
	"math/rand/v2"
	"strings"

	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// PracticeIoT tags claims reported by field sensors.
const PracticeIoT = "iot"

// Gate auto-approves a random share of clean IoT claims. Threshold is the
// minimum trust score; TargetRate is the share of eligible claims approved
// without review.
type Gate struct {
	threshold  float64
	targetRate float64
	draw       func() float64
}

type Option func(*Gate)

// WithRand replaces the random source; draw must return values in [0, 1).
func WithRand(draw func() float64) Option {
	return func(g *Gate) { g.draw = draw }
}

func NewGate(threshold, targetRate float64, opts ...Option) *Gate {
	g := &Gate{threshold: threshold, targetRate: targetRate, draw: rand.Float64}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Status maps an evaluation result to the stored claim status.
//
// Rejected results are rejected. Audit-required results wait for review.
// IoT claims are auto-approved when the trust score reaches the threshold
// and the draw falls under the target rate, and wait for review otherwise.
// Every other approved claim is approved.
func (g *Gate) Status(practice string, r *verification.Result) models.ClaimStatus {
	switch {
	case !r.Approved:
		return models.StatusRejected
	case r.AuditRequired:
		return models.StatusPendingReview
	case !strings.EqualFold(practice, PracticeIoT):
		return models.StatusApproved
	case g != nil && r.TrustScore >= g.threshold && g.draw() < g.targetRate:
		return models.StatusAutoApproved
	default:
		return models.StatusPendingReview
	}
}
