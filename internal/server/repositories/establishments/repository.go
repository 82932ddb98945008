package establishments

import (
	"context"

	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Establishment, error)
	RegionalAdoption(ctx context.Context, region, practice string, w verification.Window, excludeID string) (verification.Adoption, error)
}
