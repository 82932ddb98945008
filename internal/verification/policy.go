package verification

import (
	"time"

	"github.com/shopspring/decimal"
)

// Methodology is a practice template: the baseline fields it needs and the
// factor applied per unit of its basis field to estimate sequestration.
type Methodology struct {
	Name           string
	BasisField     string
	Factor         decimal.Decimal
	RequiredFields []string
}

// Policy holds every threshold the evaluators use.
type Policy struct {
	MinAmount         decimal.Decimal // exclusive
	MaxAmount         decimal.Decimal // inclusive
	MaxFractionDigits int32
	MinYear           int

	RateLimitWindow   time.Duration
	RateLimitMax      int
	RateLimitCooldown time.Duration

	// Self-reported offset caps, inclusive of the claim itself.
	DailyCap      decimal.Decimal
	MonthlyCap    decimal.Decimal
	DailyWindow   time.Duration
	MonthlyWindow time.Duration

	MaxFootprintRatio decimal.Decimal

	CertifiedThreshold      decimal.Decimal
	AdditionalityEvidenceAt decimal.Decimal
	PhotoThreshold          decimal.Decimal
	MinDescriptionLength    int

	AdditionalityThreshold decimal.Decimal
	CommonPracticeMax      float64
	ExtraEvidenceLength    int
	BaselineThreshold      decimal.Decimal
	AdoptionWindow         time.Duration

	RoundNumberMin        decimal.Decimal
	RoundNumberStep       decimal.Decimal
	HighFrequencyWindow   time.Duration
	HighFrequencyMax      int
	ProgressionWindow     time.Duration
	AvoidanceWindow       time.Duration
	AvoidanceMinAmount    decimal.Decimal
	AvoidanceMinCount     int
	SwitchingWindow       time.Duration
	SwitchingMinCombos    int
	GamingWeights         map[GamingFlag]float64
	GamingReviewThreshold float64

	CapacityPerHectare decimal.Decimal

	MethodologyTolerance decimal.Decimal
	Methodologies        map[string]Methodology

	RegistryTimeout time.Duration

	BaseTrust map[Tier]float64
	Buffer    map[Tier]decimal.Decimal

	AuditAmount             decimal.Decimal
	AuditSelfReportedAmount decimal.Decimal
	AuditMaxViolationKinds  int
	AuditAdoptionRate       float64
}

// DefaultPolicy returns the canonical rule set.
func DefaultPolicy() Policy {
	return Policy{
		MinAmount:         decimal.RequireFromString("0.001"),
		MaxAmount:         decimal.NewFromInt(100000),
		MaxFractionDigits: 6,
		MinYear:           2020,

		RateLimitWindow:   10 * time.Minute,
		RateLimitMax:      5,
		RateLimitCooldown: 600 * time.Second,

		DailyCap:      decimal.NewFromInt(500),
		MonthlyCap:    decimal.NewFromInt(10000),
		DailyWindow:   24 * time.Hour,
		MonthlyWindow: 30 * 24 * time.Hour,

		MaxFootprintRatio: decimal.NewFromInt(2),

		CertifiedThreshold:      decimal.NewFromInt(1000),
		AdditionalityEvidenceAt: decimal.NewFromInt(100),
		PhotoThreshold:          decimal.NewFromInt(25),
		MinDescriptionLength:    50,

		AdditionalityThreshold: decimal.NewFromInt(50),
		CommonPracticeMax:      0.30,
		ExtraEvidenceLength:    200,
		BaselineThreshold:      decimal.NewFromInt(100),
		AdoptionWindow:         365 * 24 * time.Hour,

		RoundNumberMin:      decimal.NewFromInt(100),
		RoundNumberStep:     decimal.NewFromInt(50),
		HighFrequencyWindow: 24 * time.Hour,
		HighFrequencyMax:    10,
		ProgressionWindow:   30 * 24 * time.Hour,
		AvoidanceWindow:     30 * 24 * time.Hour,
		AvoidanceMinAmount:  decimal.NewFromInt(50),
		AvoidanceMinCount:   3,
		SwitchingWindow:     7 * 24 * time.Hour,
		SwitchingMinCombos:  5,
		GamingWeights: map[GamingFlag]float64{
			FlagRoundNumber:           0.20,
			FlagHighFrequency:         0.30,
			FlagLinearProgression:     0.25,
			FlagVerificationAvoidance: 0.30,
			FlagProductionSwitching:   0.20,
		},
		GamingReviewThreshold: 0.75,

		CapacityPerHectare: decimal.NewFromInt(5000),

		MethodologyTolerance: decimal.RequireFromString("1.5"),
		Methodologies:        DefaultMethodologies(),

		RegistryTimeout: 15 * time.Second,

		BaseTrust: map[Tier]float64{
			TierSelfReported:      0.5,
			TierCommunityVerified: 0.75,
			TierCertifiedProject:  1.0,
		},
		Buffer: map[Tier]decimal.Decimal{
			TierSelfReported:      decimal.RequireFromString("0.20"),
			TierCommunityVerified: decimal.RequireFromString("0.15"),
			TierCertifiedProject:  decimal.RequireFromString("0.10"),
		},

		AuditAmount:             decimal.NewFromInt(200),
		AuditSelfReportedAmount: decimal.NewFromInt(100),
		AuditMaxViolationKinds:  2,
		AuditAdoptionRate:       0.25,
	}
}

// DefaultMethodologies returns the built-in practice templates, keyed by
// practice tag. Factors are kg CO2e per basis unit per year.
func DefaultMethodologies() map[string]Methodology {
	return map[string]Methodology{
		"no_till": {
			Name:           "no_till",
			BasisField:     "area_hectares",
			Factor:         decimal.NewFromInt(500),
			RequiredFields: []string{"area_hectares", "previous_tillage", "soil_type"},
		},
		"cover_crop": {
			Name:           "cover_crop",
			BasisField:     "area_hectares",
			Factor:         decimal.NewFromInt(400),
			RequiredFields: []string{"area_hectares", "cover_species"},
		},
		"rotational_grazing": {
			Name:           "rotational_grazing",
			BasisField:     "area_hectares",
			Factor:         decimal.NewFromInt(300),
			RequiredFields: []string{"area_hectares", "herd_size", "grazing_days"},
		},
		"agroforestry": {
			Name:           "agroforestry",
			BasisField:     "tree_count",
			Factor:         decimal.NewFromInt(25),
			RequiredFields: []string{"tree_count", "tree_species"},
		},
		"biochar": {
			Name:           "biochar",
			BasisField:     "biochar_tonnes",
			Factor:         decimal.NewFromInt(2500),
			RequiredFields: []string{"biochar_tonnes", "feedstock"},
		},
	}
}
