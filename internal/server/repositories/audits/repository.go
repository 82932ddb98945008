package audits

import (
	"context"
	"time"

	"github.com/dmitrijs2005/trazo/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	ListByClaim(ctx context.Context, claimID string) ([]*models.AuditEntry, error)
	Stats(ctx context.Context, userID string, before time.Time) (total, passed int, err error)
}
