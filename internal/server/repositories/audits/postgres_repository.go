// Package audits provides the append-only PostgreSQL audit log.
package audits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// PostgresRepository implements audit storage over a dbx.DBTX. It only
// inserts and reads; rows are never updated or deleted.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends an entry. An empty ClaimID is stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, e *models.AuditEntry) error {
	violations := e.Violations
	if violations == nil {
		violations = []verification.Violation{}
	}
	vb, err := json.Marshal(violations)
	if err != nil {
		return fmt.Errorf("marshal violations: %w", err)
	}
	snapshot := []byte(e.Snapshot)
	if len(snapshot) == 0 {
		snapshot = []byte("{}")
	}

	query := `
		INSERT INTO audit_log (id, claim_id, user_id, action, approved, trust_score,
			effective_amount, audit_required, violations, snapshot, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.ClaimID, e.UserID, string(e.Action), e.Approved, e.TrustScore,
		e.EffectiveAmount, e.AuditRequired, vb, snapshot, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByClaim returns a claim's entries, oldest first.
func (r *PostgresRepository) ListByClaim(ctx context.Context, claimID string) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, COALESCE(claim_id::text, ''), user_id, action, approved, trust_score,
			effective_amount, audit_required, violations, snapshot, created_at
		FROM audit_log WHERE claim_id = $1 ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit entries: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var (
			e        models.AuditEntry
			action   string
			vb, snap []byte
		)
		if err := rows.Scan(&e.ID, &e.ClaimID, &e.UserID, &action, &e.Approved, &e.TrustScore,
			&e.EffectiveAmount, &e.AuditRequired, &vb, &snap, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Action = models.AuditAction(action)
		if len(vb) > 0 {
			if err := json.Unmarshal(vb, &e.Violations); err != nil {
				return nil, fmt.Errorf("violations: %w", err)
			}
		}
		e.Snapshot = snap
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Stats counts a user's evaluate and reaudit entries created before the
// given time, and how many of them were approved.
func (r *PostgresRepository) Stats(ctx context.Context, userID string, before time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE approved)
		FROM audit_log
		WHERE user_id = $1 AND action IN ($2, $3) AND created_at < $4
	`
	var total, passed int
	err := r.db.QueryRowContext(ctx, query,
		userID, string(models.ActionEvaluate), string(models.ActionReaudit), before).Scan(&total, &passed)
	if err != nil {
		return 0, 0, fmt.Errorf("audit stats: %w", err)
	}
	return total, passed, nil
}
