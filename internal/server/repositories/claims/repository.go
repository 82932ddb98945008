package claims

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

type Repository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	SaveVerification(ctx context.Context, id string, v models.Verification) error

	SumAmounts(ctx context.Context, q verification.SumQuery) (decimal.Decimal, error)
	CountByUser(ctx context.Context, userID string, w verification.Window, excludeID string) (int, error)
	RecentByUser(ctx context.Context, userID string, w verification.Window, excludeID string) ([]verification.ClaimSummary, error)
	CountVerified(ctx context.Context, userID string, before time.Time) (int, error)
}
