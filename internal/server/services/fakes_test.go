package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/audits"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/claims"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/establishments"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// memStore backs every fake repository; the DBTX handed in is ignored.
type memStore struct {
	claims         map[string]*models.Claim
	audits         []*models.AuditEntry
	establishments map[string]*models.Establishment
	createErr      error
}

func newMemStore() *memStore {
	return &memStore{
		claims:         map[string]*models.Claim{},
		establishments: map[string]*models.Establishment{},
	}
}

type fakeRepoMgr struct{ store *memStore }

func (m fakeRepoMgr) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m fakeRepoMgr) Claims(dbx.DBTX) claims.Repository            { return memClaims{m.store} }
func (m fakeRepoMgr) Audits(dbx.DBTX) audits.Repository            { return memAudits{m.store} }

func (m fakeRepoMgr) Establishments(dbx.DBTX) establishments.Repository {
	return memEstablishments{m.store}
}

type memClaims struct{ s *memStore }

func (r memClaims) Create(_ context.Context, c *models.Claim) error {
	if r.s.createErr != nil {
		return r.s.createErr
	}
	cp := *c
	r.s.claims[c.ID] = &cp
	return nil
}

func (r memClaims) GetByID(_ context.Context, id string) (*models.Claim, error) {
	c, ok := r.s.claims[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memClaims) SaveVerification(_ context.Context, id string, v models.Verification) error {
	c, ok := r.s.claims[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.Apply(v)
	return nil
}

func (r memClaims) SumAmounts(_ context.Context, q verification.SumQuery) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range r.s.claims {
		switch {
		case c.Status == models.StatusRejected,
			q.UserID != "" && c.UserID != q.UserID,
			q.EstablishmentID != "" && c.EstablishmentID != q.EstablishmentID,
			q.Kind != "" && c.Type != q.Kind,
			q.Tier != "" && c.VerificationLevel != q.Tier,
			q.Year != 0 && c.Year != q.Year,
			c.ID == q.ExcludeClaimID,
			!q.Window.Contains(c.CreatedAt):
			continue
		}
		sum = sum.Add(c.Amount)
	}
	return sum, nil
}

func (r memClaims) CountByUser(ctx context.Context, userID string, w verification.Window, excludeID string) (int, error) {
	recent, err := r.RecentByUser(ctx, userID, w, excludeID)
	return len(recent), err
}

func (r memClaims) RecentByUser(_ context.Context, userID string, w verification.Window, excludeID string) ([]verification.ClaimSummary, error) {
	var out []verification.ClaimSummary
	for _, c := range r.s.claims {
		if c.UserID != userID || c.ID == excludeID || !w.Contains(c.CreatedAt) {
			continue
		}
		out = append(out, verification.ClaimSummary{
			ID: c.ID, Kind: c.Type, Tier: c.VerificationLevel, Amount: c.Amount,
			EstablishmentID: c.EstablishmentID, ProductionID: c.ProductionID, CreatedAt: c.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memClaims) CountVerified(_ context.Context, userID string, before time.Time) (int, error) {
	n := 0
	for _, c := range r.s.claims {
		if c.UserID == userID && c.CreatedAt.Before(before) &&
			(c.Status == models.StatusApproved || c.Status == models.StatusAutoApproved) {
			n++
		}
	}
	return n, nil
}

type memAudits struct{ s *memStore }

func (r memAudits) Create(_ context.Context, e *models.AuditEntry) error {
	cp := *e
	r.s.audits = append(r.s.audits, &cp)
	return nil
}

func (r memAudits) ListByClaim(_ context.Context, claimID string) ([]*models.AuditEntry, error) {
	var out []*models.AuditEntry
	for _, e := range r.s.audits {
		if e.ClaimID == claimID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memAudits) Stats(_ context.Context, userID string, before time.Time) (int, int, error) {
	var total, passed int
	for _, e := range r.s.audits {
		if e.UserID != userID || !e.CreatedAt.Before(before) || e.Action == models.ActionSecurityAbort {
			continue
		}
		total++
		if e.Approved {
			passed++
		}
	}
	return total, passed, nil
}

type memEstablishments struct{ s *memStore }

func (r memEstablishments) GetByID(_ context.Context, id string) (*models.Establishment, error) {
	e, ok := r.s.establishments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (r memEstablishments) RegionalAdoption(context.Context, string, string, verification.Window, string) (verification.Adoption, error) {
	return verification.Adoption{}, nil
}

// fakeArchiver records archived entries and can fail on demand.
type fakeArchiver struct {
	entries []*models.AuditEntry
	err     error
}

func (a *fakeArchiver) Archive(_ context.Context, e *models.AuditEntry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

var errDBDown = errors.New("db is down")
