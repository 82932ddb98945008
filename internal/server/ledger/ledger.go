// Package ledger exposes the server's repositories as the read-only
// verification.Ledger the verifier consults.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/audits"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/claims"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/establishments"
	"github.com/dmitrijs2005/trazo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// Ledger implements verification.Ledger. Bind it to the submission's
// transaction so reads see only committed claims plus the caller's own.
type Ledger struct {
	claims         claims.Repository
	audits         audits.Repository
	establishments establishments.Repository
}

var _ verification.Ledger = (*Ledger)(nil)

// New binds the repositories vended by rm to db.
func New(rm repomanager.RepositoryManager, db dbx.DBTX) *Ledger {
	return &Ledger{
		claims:         rm.Claims(db),
		audits:         rm.Audits(db),
		establishments: rm.Establishments(db),
	}
}

func (l *Ledger) SumClaims(ctx context.Context, q verification.SumQuery) (decimal.Decimal, error) {
	return l.claims.SumAmounts(ctx, q)
}

func (l *Ledger) CountUserClaims(ctx context.Context, userID string, w verification.Window, excludeID string) (int, error) {
	return l.claims.CountByUser(ctx, userID, w, excludeID)
}

func (l *Ledger) RecentUserClaims(ctx context.Context, userID string, w verification.Window, excludeID string) ([]verification.ClaimSummary, error) {
	return l.claims.RecentByUser(ctx, userID, w, excludeID)
}

func (l *Ledger) UserHistory(ctx context.Context, userID string, before time.Time) (verification.UserHistory, error) {
	verified, err := l.claims.CountVerified(ctx, userID, before)
	if err != nil {
		return verification.UserHistory{}, err
	}
	total, passed, err := l.audits.Stats(ctx, userID, before)
	if err != nil {
		return verification.UserHistory{}, err
	}
	return verification.UserHistory{VerifiedClaims: verified, AuditsTotal: total, AuditsPassed: passed}, nil
}

// Establishment maps common.ErrorNotFound to nil, nil.
func (l *Ledger) Establishment(ctx context.Context, id string) (*verification.EstablishmentProfile, error) {
	e, err := l.establishments.GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &verification.EstablishmentProfile{ID: e.ID, Region: e.Region, AreaHectares: e.AreaHectares}, nil
}

func (l *Ledger) RegionalAdoption(ctx context.Context, region, practice string, w verification.Window, excludeEstablishmentID string) (verification.Adoption, error) {
	return l.establishments.RegionalAdoption(ctx, region, practice, w, excludeEstablishmentID)
}
