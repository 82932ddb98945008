package verification

import "fmt"

// Severity of a violation. Only high blocks approval.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ViolationKind is a stable tag identifying the check that fired.
type ViolationKind string

const (
	AmountOutOfBounds            ViolationKind = "amount-out-of-bounds"
	SuspiciousPrecision          ViolationKind = "suspicious-precision"
	InvalidYear                  ViolationKind = "invalid-year"
	RapidSubmission              ViolationKind = "rapid-submission"
	CumulativeExceeded           ViolationKind = "cumulative-exceeded"
	UnrealisticRatio             ViolationKind = "unrealistic-ratio"
	TierInsufficient             ViolationKind = "tier-insufficient"
	MissingPermanencePlan        ViolationKind = "missing-permanence-plan"
	MissingRegistryID            ViolationKind = "missing-registry-id"
	MissingAdditionalityEvidence ViolationKind = "missing-additionality-evidence"
	MissingPhotoEvidence         ViolationKind = "missing-photo-evidence"
	DescriptionTooShort          ViolationKind = "description-too-short"
	FailsAdditionality           ViolationKind = "fails-additionality"
	GamingDetected               ViolationKind = "gaming-detected"
	ExceedsCapacity              ViolationKind = "exceeds-capacity"
	MethodologyIncomplete        ViolationKind = "methodology-incomplete"
	BaselineTooOptimistic        ViolationKind = "baseline-too-optimistic"
	RegistryVerificationFailed   ViolationKind = "registry-verification-failed"
)

// Requirement strings surfaced to the submitter.
const (
	ReqCertifiedProject      = "certified_project required"
	ReqPermanencePlan        = "permanence_plan required"
	ReqRegistryID            = "registry_verification_id required"
	ReqAdditionalityEvidence = "additionality_evidence required"
	ReqEvidencePhoto         = "evidence_photo required"
	ReqDescriptionLength     = "description_min_length required"
	ReqBaselineData          = "baseline_data required"
)

// alwaysHigh kinds block approval regardless of how they were raised.
var alwaysHigh = map[ViolationKind]bool{
	CumulativeExceeded:         true,
	RapidSubmission:            true,
	UnrealisticRatio:           true,
	ExceedsCapacity:            true,
	FailsAdditionality:         true,
	BaselineTooOptimistic:      true,
	RegistryVerificationFailed: true,
}

// Violation is one failed check.
type Violation struct {
	Kind        ViolationKind `json:"kind"`
	Severity    Severity      `json:"severity"`
	Message     string        `json:"message"`
	Requirement string        `json:"requirement,omitempty"`
}

func newViolation(kind ViolationKind, sev Severity, format string, args ...any) Violation {
	if alwaysHigh[kind] {
		sev = SeverityHigh
	}
	return Violation{Kind: kind, Severity: sev, Message: fmt.Sprintf(format, args...)}
}

func (v Violation) require(req string) Violation {
	v.Requirement = req
	return v
}
