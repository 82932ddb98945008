package verification

import (
	"time"

	"github.com/dmitrijs2005/trazo/internal/registry"
	"github.com/shopspring/decimal"
)

// GamingFlag names a detected gaming pattern.
type GamingFlag string

const (
	FlagRoundNumber           GamingFlag = "round_number"
	FlagHighFrequency         GamingFlag = "high_frequency"
	FlagLinearProgression     GamingFlag = "linear_progression"
	FlagVerificationAvoidance GamingFlag = "verification_avoidance"
	FlagProductionSwitching   GamingFlag = "production_switching"
)

// AdditionalityAssessment reports the additionality test for self-reported
// offsets.
type AdditionalityAssessment struct {
	Required           bool     `json:"required"`
	Passed             bool     `json:"passed"`
	Region             string   `json:"region,omitempty"`
	CommonPracticeRate float64  `json:"common_practice_rate"`
	BaselineRequired   bool     `json:"baseline_required"`
	BaselineProvided   bool     `json:"baseline_provided"`
	Reasons            []string `json:"reasons,omitempty"`
}

// RegistryValidation wraps the registry lookup for certified projects.
type RegistryValidation struct {
	Checked bool `json:"checked"`
	registry.Result
}

// MethodologyValidation reports the practice template check.
type MethodologyValidation struct {
	Checked         bool            `json:"checked"`
	Methodology     string          `json:"methodology,omitempty"`
	MissingFields   []string        `json:"missing_fields,omitempty"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	Ratio           float64         `json:"ratio"`
	WithinTolerance bool            `json:"within_tolerance"`
}

// Result is the outcome of evaluating one claim.
type Result struct {
	Approved        bool            `json:"approved"`
	Violations      []Violation     `json:"violations"`
	AntiGamingFlags []GamingFlag    `json:"anti_gaming_flags"`
	GamingRiskScore float64         `json:"gaming_risk_score"`
	Requirements    []string        `json:"requirements"`
	TrustScore      float64         `json:"trust_score"`
	EffectiveAmount decimal.Decimal `json:"effective_amount"`
	AuditRequired   bool            `json:"audit_required"`
	Recommendations []string        `json:"recommendations"`

	Additionality AdditionalityAssessment `json:"additionality_assessment"`
	Registry      RegistryValidation      `json:"registry_validation"`
	Methodology   MethodologyValidation   `json:"methodology_validation"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

func newResult() *Result {
	return &Result{
		Violations:      []Violation{},
		AntiGamingFlags: []GamingFlag{},
		Requirements:    []string{},
		Recommendations: []string{},
	}
}

// Has reports whether a violation of kind was raised.
func (r *Result) Has(kind ViolationKind) bool {
	for _, v := range r.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// HighSeverity returns the blocking violations.
func (r *Result) HighSeverity() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityHigh {
			out = append(out, v)
		}
	}
	return out
}

func (r *Result) add(vs ...Violation) {
	r.Violations = append(r.Violations, vs...)
}
