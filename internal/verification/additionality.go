package verification

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// additionalityApplies reports whether c is subject to the additionality
// test: self-reported offsets above the threshold.
func additionalityApplies(p Policy, c ClaimView) bool {
	return c.Kind == KindOffset && c.Tier == TierSelfReported && c.Amount.GreaterThan(p.AdditionalityThreshold)
}

// assessAdditionality tests whether the claimed activity goes beyond common
// practice in the region. adoption is ignored when region is empty.
func assessAdditionality(p Policy, c ClaimView, region string, adoption Adoption) (AdditionalityAssessment, []Violation) {
	a := AdditionalityAssessment{
		Required:         true,
		Passed:           true,
		Region:           region,
		BaselineRequired: c.Amount.GreaterThan(p.BaselineThreshold),
		BaselineProvided: len(c.BaselineData) > 0,
	}
	var out []Violation

	evidence := strings.TrimSpace(c.AdditionalityEvidence)
	if evidence == "" {
		a.Reasons = append(a.Reasons, "no additionality evidence")
		out = append(out, newViolation(FailsAdditionality, SeverityHigh,
			"self-reported offsets above %s kg must explain why the practice is additional", p.AdditionalityThreshold).
			require(ReqAdditionalityEvidence))
	}

	if region != "" {
		a.CommonPracticeRate = adoption.Rate()
		extra := utf8.RuneCountInString(evidence) >= p.ExtraEvidenceLength || len(c.EvidenceDocuments) > 0
		if a.CommonPracticeRate > p.CommonPracticeMax && !extra {
			reason := fmt.Sprintf("practice %q is common in %s (%.0f%% adoption)", c.Practice, region, a.CommonPracticeRate*100)
			a.Reasons = append(a.Reasons, reason)
			out = append(out, newViolation(FailsAdditionality, SeverityHigh,
				"%s; provide supporting documents or evidence of at least %d characters", reason, p.ExtraEvidenceLength))
		}
	}

	if a.BaselineRequired && !a.BaselineProvided {
		a.Reasons = append(a.Reasons, "no baseline data")
		out = append(out, newViolation(FailsAdditionality, SeverityHigh,
			"self-reported offsets above %s kg need baseline data", p.BaselineThreshold).require(ReqBaselineData))
	}

	a.Passed = len(out) == 0
	return a, out
}
