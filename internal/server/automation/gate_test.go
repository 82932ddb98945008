package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

func fixed(v float64) Option {
	return WithRand(func() float64 { return v })
}

func TestGate_Status(t *testing.T) {
	approved := &verification.Result{Approved: true, TrustScore: 0.9}

	tests := []struct {
		name     string
		gate     *Gate
		practice string
		result   *verification.Result
		want     models.ClaimStatus
	}{
		{"rejected", NewGate(0.8, 0.7, fixed(0)), "iot", &verification.Result{Approved: false}, models.StatusRejected},
		{"audit required", NewGate(0.8, 0.7, fixed(0)), "no_till", &verification.Result{Approved: true, AuditRequired: true}, models.StatusPendingReview},
		{"manual practice approved", NewGate(0.8, 0.7, fixed(0.99)), "no_till", approved, models.StatusApproved},
		{"iot under target rate", NewGate(0.8, 0.7, fixed(0.69)), "iot", approved, models.StatusAutoApproved},
		{"iot case insensitive", NewGate(0.8, 0.7, fixed(0.1)), "IoT", approved, models.StatusAutoApproved},
		{"iot draw above rate", NewGate(0.8, 0.7, fixed(0.7)), "iot", approved, models.StatusPendingReview},
		{"iot low trust", NewGate(0.95, 0.7, fixed(0)), "iot", approved, models.StatusPendingReview},
		{"nil gate keeps iot for review", nil, "iot", approved, models.StatusPendingReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gate.Status(tt.practice, tt.result))
		})
	}
}

func TestGate_DrawOnlyForEligible(t *testing.T) {
	calls := 0
	g := NewGate(0.8, 0.7, WithRand(func() float64 { calls++; return 0 }))

	g.Status("no_till", &verification.Result{Approved: true, TrustScore: 1})
	g.Status("iot", &verification.Result{Approved: true, TrustScore: 0.5})
	assert.Equal(t, 0, calls)

	g.Status("iot", &verification.Result{Approved: true, TrustScore: 0.9})
	assert.Equal(t, 1, calls)
}

func TestNewGate_DefaultRandInRange(t *testing.T) {
	g := NewGate(0, 1)
	for i := 0; i < 100; i++ {
		v := g.draw()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
