// Package establishments reads establishment profiles. Rows are owned by
// other systems; this package never writes them.
package establishments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns common.ErrorNotFound for an unknown establishment. A NULL
// area is reported as zero.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Establishment, error) {
	query := `SELECT id, name, region, area_hectares, created_at FROM establishments WHERE id = $1`

	var (
		e    models.Establishment
		area decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Region, &area, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if area.Valid {
		e.AreaHectares = area.Decimal
	}
	return &e, nil
}

// RegionalAdoption counts the establishments in region other than
// excludeID, and how many of them recorded a non-rejected offset for
// practice inside w.
func (r *PostgresRepository) RegionalAdoption(ctx context.Context, region, practice string, w verification.Window, excludeID string) (verification.Adoption, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE EXISTS (
				SELECT 1 FROM claims c
				WHERE c.establishment_id = e.id AND c.type = 'offset' AND c.practice = $2
					AND c.status <> 'rejected' AND c.created_at > $3 AND c.created_at <= $4
			))
		FROM establishments e
		WHERE e.region = $1 AND e.id <> $5
	`
	var a verification.Adoption
	err := r.db.QueryRowContext(ctx, query, region, practice, w.Start, w.End, excludeID).Scan(&a.Total, &a.Adopters)
	if err != nil {
		return verification.Adoption{}, fmt.Errorf("regional adoption: %w", err)
	}
	return a, nil
}
