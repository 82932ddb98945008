// Package registry looks up carbon-offset project IDs against external
// certification registries.
//
// Registries are consulted in a fixed priority order: the Verra HTTP API
// first, then the simulated Gold Standard, Climate Action Reserve and
// American Carbon Registry lookups. A lookup never returns a Go error;
// failures are reported through Result.Error and Result.Verified=false.
package registry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Registry names in priority order.
const (
	Verra                  = "verra"
	GoldStandard           = "gold_standard"
	ClimateActionReserve   = "climate_action_reserve"
	AmericanCarbonRegistry = "american_carbon_registry"
)

// Result is the outcome of a single registry lookup.
type Result struct {
	Verified         bool            `json:"verified"`
	Registry         string          `json:"registry,omitempty"`
	ProjectID        string          `json:"project_id,omitempty"`
	Methodology      string          `json:"methodology,omitempty"`
	Status           string          `json:"status,omitempty"`
	CreditsAvailable decimal.Decimal `json:"credits_available"`
	VerificationBody string          `json:"verification_body,omitempty"`
	ProjectURL       string          `json:"project_url,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Registry is a single certification registry.
type Registry interface {
	Name() string
	Lookup(ctx context.Context, projectID string) Result
}

// Config configures the registry chain and its HTTP registry.
type Config struct {
	// BaseURL of the Verra-compatible API. Empty disables the HTTP registry.
	BaseURL string
	// Token is sent as "Authorization: Bearer <token>".
	Token string
	// Timeout bounds a whole VerifyAny call.
	Timeout time.Duration
	// Retries is the number of attempts per HTTP lookup.
	Retries int
	// RequestsPerSecond and Burst configure the per-registry token bucket.
	RequestsPerSecond float64
	Burst             int
	// CacheTTL keeps lookup results; zero disables caching.
	CacheTTL time.Duration
}

// DefaultConfig returns conservative defaults for outbound lookups.
func DefaultConfig() Config {
	return Config{
		Timeout:           15 * time.Second,
		Retries:           3,
		RequestsPerSecond: 5,
		Burst:             5,
		CacheTTL:          10 * time.Minute,
	}
}
