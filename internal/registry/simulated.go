package registry

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Simulated is a deterministic registry that confirms any project ID
// matching its pattern. It stands in for registries without a public API.
type Simulated struct {
	name        string
	pattern     *regexp.Regexp
	methodology string
	body        string
	urlPrefix   string
}

func (s *Simulated) Name() string { return s.name }

func (s *Simulated) Lookup(ctx context.Context, projectID string) Result {
	res := Result{Registry: s.name, ProjectID: projectID}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	id := strings.ToUpper(strings.TrimSpace(projectID))
	m := s.pattern.FindStringSubmatch(id)
	if m == nil {
		res.Error = fmt.Sprintf("project id %q does not match %s format", projectID, s.name)
		return res
	}

	serial, _ := strconv.ParseInt(m[1], 10, 64)
	res.Verified = true
	res.Status = "registered"
	res.Methodology = s.methodology
	res.VerificationBody = s.body
	res.CreditsAvailable = decimal.NewFromInt(serial%1000*100 + 1000)
	res.ProjectURL = s.urlPrefix + m[1]
	return res
}

// NewGoldStandard matches GS-1234 style IDs.
func NewGoldStandard() *Simulated {
	return &Simulated{
		name:        GoldStandard,
		pattern:     regexp.MustCompile(`^GS-?(\d{3,6})$`),
		methodology: "GS Soil Organic Carbon Framework",
		body:        "Gold Standard Foundation",
		urlPrefix:   "https://registry.goldstandard.org/projects/details/",
	}
}

// NewClimateActionReserve matches CAR-123 style IDs.
func NewClimateActionReserve() *Simulated {
	return &Simulated{
		name:        ClimateActionReserve,
		pattern:     regexp.MustCompile(`^CAR-?(\d{3,5})$`),
		methodology: "Soil Enrichment Protocol",
		body:        "Climate Action Reserve",
		urlPrefix:   "https://thereserve2.apx.com/mymodule/reg/prjView.asp?id1=",
	}
}

// NewAmericanCarbonRegistry matches ACR-123 style IDs.
func NewAmericanCarbonRegistry() *Simulated {
	return &Simulated{
		name:        AmericanCarbonRegistry,
		pattern:     regexp.MustCompile(`^ACR-?(\d{3,5})$`),
		methodology: "Grazing Land and Livestock Management",
		body:        "American Carbon Registry",
		urlPrefix:   "https://acr2.apx.com/mymodule/reg/prjView.asp?id1=",
	}
}
