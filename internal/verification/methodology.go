package verification

import (
	"strings"

	"github.com/shopspring/decimal"
)

// checkMethodology validates the claim against its practice template.
// Unknown practices are not checked.
func checkMethodology(p Policy, c ClaimView) (MethodologyValidation, []Violation) {
	m, ok := p.Methodologies[strings.ToLower(strings.TrimSpace(c.Practice))]
	if !ok {
		return MethodologyValidation{}, nil
	}

	mv := MethodologyValidation{Checked: true, Methodology: m.Name, WithinTolerance: true}
	var out []Violation

	for _, f := range m.RequiredFields {
		if strings.TrimSpace(c.BaselineData[f]) == "" {
			mv.MissingFields = append(mv.MissingFields, f)
		}
	}
	if len(mv.MissingFields) > 0 {
		out = append(out, newViolation(MethodologyIncomplete, SeverityMedium,
			"%s baseline is missing %s", m.Name, strings.Join(mv.MissingFields, ", ")).require(ReqBaselineData))
	}

	basis, err := decimal.NewFromString(strings.TrimSpace(c.BaselineData[m.BasisField]))
	if err != nil || !basis.IsPositive() {
		return mv, out
	}

	mv.EstimatedAmount = basis.Mul(m.Factor)
	mv.Ratio = c.Amount.Div(mv.EstimatedAmount).Round(4).InexactFloat64()
	if c.Amount.GreaterThan(mv.EstimatedAmount.Mul(p.MethodologyTolerance)) {
		mv.WithinTolerance = false
		out = append(out, newViolation(BaselineTooOptimistic, SeverityHigh,
			"%s kg exceeds %s x the %s estimate of %s kg", c.Amount, p.MethodologyTolerance, m.Name, mv.EstimatedAmount))
	}
	return mv, out
}
