package verification

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Window is a half-open time range (Start, End]. A zero bound is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Trailing returns the window of length d ending at anchor.
func Trailing(anchor time.Time, d time.Duration) Window {
	return Window{Start: anchor.Add(-d), End: anchor}
}

// Until returns the window of everything up to and including anchor.
func Until(anchor time.Time) Window {
	return Window{End: anchor}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && !t.After(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// SumQuery filters the claims summed by Ledger.SumClaims. Zero-valued
// fields do not filter.
type SumQuery struct {
	UserID          string
	EstablishmentID string
	Kind            Kind
	Tier            Tier
	Year            int
	Window          Window
	ExcludeClaimID  string
}

// ClaimSummary is the ledger's compact view of a recorded claim.
type ClaimSummary struct {
	ID              string
	Kind            Kind
	Tier            Tier
	Amount          decimal.Decimal
	EstablishmentID string
	ProductionID    string
	CreatedAt       time.Time
}

// UserHistory summarises a user's verification track record.
type UserHistory struct {
	VerifiedClaims int
	AuditsTotal    int
	AuditsPassed   int
}

// PassRate returns AuditsPassed/AuditsTotal, or 0 with no audits.
func (h UserHistory) PassRate() float64 {
	if h.AuditsTotal == 0 {
		return 0
	}
	return float64(h.AuditsPassed) / float64(h.AuditsTotal)
}

// EstablishmentProfile is the part of an establishment the evaluators use.
type EstablishmentProfile struct {
	ID           string
	Region       string
	AreaHectares decimal.Decimal
}

// Adoption counts establishments in a region (Total) and how many of them
// already recorded an offset for the same practice (Adopters).
type Adoption struct {
	Adopters int
	Total    int
}

// Rate returns the common-practice rate.
func (a Adoption) Rate() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Adopters) / float64(a.Total)
}

// Ledger is the read-only view of recorded claims the evaluators consult.
// Implementations must only see committed claims.
type Ledger interface {
	// SumClaims totals claim amounts matching q.
	SumClaims(ctx context.Context, q SumQuery) (decimal.Decimal, error)
	// CountUserClaims counts a user's claims of any kind in w.
	CountUserClaims(ctx context.Context, userID string, w Window, excludeID string) (int, error)
	// RecentUserClaims lists a user's claims in w, newest first.
	RecentUserClaims(ctx context.Context, userID string, w Window, excludeID string) ([]ClaimSummary, error)
	// UserHistory reports verified claims and audit outcomes before t.
	UserHistory(ctx context.Context, userID string, before time.Time) (UserHistory, error)
	// Establishment returns nil, nil for an unknown establishment.
	Establishment(ctx context.Context, id string) (*EstablishmentProfile, error)
	// RegionalAdoption counts establishments in region other than
	// excludeEstablishmentID and those with a practice offset in w.
	RegionalAdoption(ctx context.Context, region, practice string, w Window, excludeEstablishmentID string) (Adoption, error)
}
