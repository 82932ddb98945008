package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trazo/internal/api"
	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

func TestParseClaim_Defaults(t *testing.T) {
	c, err := ParseClaim(api.ClaimPayload{Amount: "12.5", Year: 2026}, t0)
	require.NoError(t, err)

	assert.Equal(t, verification.KindOffset, c.Type)
	assert.Equal(t, verification.TierSelfReported, c.VerificationLevel)
	assert.Equal(t, "12.5", c.Amount.String())
	assert.True(t, c.Footprint.IsZero())
	assert.Empty(t, c.EvidencePhotos)
}

func TestParseClaim_FromJSON(t *testing.T) {
	raw := `{
		"amount": 150,
		"year": 2027,
		"type": "Offset",
		"verification_level": "certified_project",
		"practice": " No_Till ",
		"baseline_data": {"area_hectares": 2.5, "previous_tillage": "conventional", "irrigated": false, "notes": null},
		"evidence_photos": ["https://example.org/a.jpg"],
		"evidence_documents": ["http://example.org/plan.pdf"],
		"footprint": "300.5"
	}`
	var p api.ClaimPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	c, err := ParseClaim(p, t0)
	require.NoError(t, err)

	assert.Equal(t, "150", c.Amount.String())
	assert.Equal(t, "no_till", c.Practice)
	assert.Equal(t, verification.TierCertifiedProject, c.VerificationLevel)
	assert.Equal(t, "300.5", c.Footprint.String())
	if diff := cmp.Diff(map[string]string{
		"area_hectares":    "2.5",
		"previous_tillage": "conventional",
		"irrigated":        "false",
		"notes":            "",
	}, c.BaselineData); diff != "" {
		t.Errorf("baseline mismatch (-want +got):\n%s", diff)
	}
}

func TestParseClaim_NonPositiveAmountReachesEvaluation(t *testing.T) {
	c, err := ParseClaim(api.ClaimPayload{Amount: "-5", Year: 2026}, t0)
	require.NoError(t, err)
	assert.True(t, c.Amount.IsNegative())
}

func TestParseClaim_OutOfBoundsAmountsReachEvaluation(t *testing.T) {
	for _, in := range []api.Amount{"1e13", "100000.5", "0.000000000000000001", "12.1234567"} {
		c, err := ParseClaim(api.ClaimPayload{Amount: in, Year: 2026}, t0)
		require.NoError(t, err, string(in))
		assert.True(t, decimal.RequireFromString(string(in)).Equal(c.Amount), "amount kept exactly: %s", c.Amount)
	}
}

func TestParseClaim_InputErrors(t *testing.T) {
	long := "https://example.org/" + strings.Repeat("a", MaxEvidenceURLLen)
	many := make([]string, MaxEvidencePhotos+1)
	for i := range many {
		many[i] = "https://example.org/p.jpg"
	}

	tests := []struct {
		name  string
		p     api.ClaimPayload
		field string
	}{
		{"missing amount", api.ClaimPayload{Year: 2026}, "amount"},
		{"bad amount", api.ClaimPayload{Amount: "ten", Year: 2026}, "amount"},
		{"huge exponent", api.ClaimPayload{Amount: "1e900000000", Year: 2026}, "amount"},
		{"tiny exponent", api.ClaimPayload{Amount: "1e-900000000", Year: 2026}, "amount"},
		{"amount too long", api.ClaimPayload{Amount: api.Amount("1" + strings.Repeat("0", MaxAmountLen)), Year: 2026}, "amount"},
		{"huge footprint exponent", api.ClaimPayload{Amount: "1", Year: 2026, Footprint: "9e99999999"}, "footprint"},
		{"year too old", api.ClaimPayload{Amount: "1", Year: 2019}, "year"},
		{"year too far", api.ClaimPayload{Amount: "1", Year: 2028}, "year"},
		{"bad type", api.ClaimPayload{Amount: "1", Year: 2026, Type: "removal"}, "type"},
		{"bad level", api.ClaimPayload{Amount: "1", Year: 2026, VerificationLevel: "gold"}, "verification_level"},
		{"nested baseline", api.ClaimPayload{Amount: "1", Year: 2026, BaselineData: map[string]any{"x": map[string]any{}}}, "baseline_data"},
		{"too many photos", api.ClaimPayload{Amount: "1", Year: 2026, EvidencePhotos: many}, "evidence_photos"},
		{"photo not url", api.ClaimPayload{Amount: "1", Year: 2026, EvidencePhotos: []string{"ftp://x/y"}}, "evidence_photos"},
		{"photo too long", api.ClaimPayload{Amount: "1", Year: 2026, EvidencePhotos: []string{long}}, "evidence_photos"},
		{"too many docs", api.ClaimPayload{Amount: "1", Year: 2026, EvidenceDocuments: many[:6]}, "evidence_documents"},
		{"bad footprint", api.ClaimPayload{Amount: "1", Year: 2026, Footprint: "x"}, "footprint"},
		{"negative footprint", api.ClaimPayload{Amount: "1", Year: 2026, Footprint: "-1"}, "footprint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseClaim(tt.p, t0)
			var ie *common.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestPayloadOf_RoundTrip(t *testing.T) {
	in := api.ClaimPayload{
		Amount:                 "150",
		Year:                   2026,
		Type:                   "offset",
		VerificationLevel:      "certified_project",
		RegistryVerificationID: "GS-1234",
		BaselineData:           map[string]any{"area_hectares": "3"},
		EvidencePhotos:         []string{"https://example.org/a.jpg"},
		EvidenceDocuments:      []string{},
		Practice:               "no_till",
		Footprint:              "400",
	}
	c, err := ParseClaim(in, t0)
	require.NoError(t, err)

	if diff := cmp.Diff(in, PayloadOf(c)); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}
