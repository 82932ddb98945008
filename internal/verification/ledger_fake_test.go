package verification

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// memLedger is an in-memory Ledger over recorded claim views.
type memLedger struct {
	claims         []ClaimView
	establishments map[string]*EstablishmentProfile
	history        UserHistory
	adoption       Adoption
	err            error

	adoptionCalls int
}

func (m *memLedger) record(cs ...ClaimView) { m.claims = append(m.claims, cs...) }

func (m *memLedger) SumClaims(_ context.Context, q SumQuery) (decimal.Decimal, error) {
	if m.err != nil {
		return decimal.Zero, m.err
	}
	sum := decimal.Zero
	for _, c := range m.claims {
		switch {
		case q.UserID != "" && c.UserID != q.UserID,
			q.EstablishmentID != "" && c.EstablishmentID != q.EstablishmentID,
			q.Kind != "" && c.Kind != q.Kind,
			q.Tier != "" && c.Tier != q.Tier,
			q.Year != 0 && c.Year != q.Year,
			q.ExcludeClaimID != "" && c.ID == q.ExcludeClaimID,
			!q.Window.Contains(c.CreatedAt):
			continue
		}
		sum = sum.Add(c.Amount)
	}
	return sum, nil
}

func (m *memLedger) CountUserClaims(ctx context.Context, userID string, w Window, excludeID string) (int, error) {
	recent, err := m.RecentUserClaims(ctx, userID, w, excludeID)
	return len(recent), err
}

func (m *memLedger) RecentUserClaims(_ context.Context, userID string, w Window, excludeID string) ([]ClaimSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []ClaimSummary
	for _, c := range m.claims {
		if c.UserID != userID || c.ID == excludeID || !w.Contains(c.CreatedAt) {
			continue
		}
		out = append(out, ClaimSummary{
			ID: c.ID, Kind: c.Kind, Tier: c.Tier, Amount: c.Amount,
			EstablishmentID: c.EstablishmentID, ProductionID: c.ProductionID, CreatedAt: c.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memLedger) UserHistory(context.Context, string, time.Time) (UserHistory, error) {
	return m.history, m.err
}

func (m *memLedger) Establishment(_ context.Context, id string) (*EstablishmentProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.establishments[id], nil
}

func (m *memLedger) RegionalAdoption(context.Context, string, string, Window, string) (Adoption, error) {
	m.adoptionCalls++
	return m.adoption, m.err
}
