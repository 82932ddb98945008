// Package claims provides the PostgreSQL-backed claim store and the
// aggregate queries the verifier's ledger is built on.
package claims

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/dbx"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

const claimColumns = `id, user_id, COALESCE(establishment_id, ''), production_id, practice, type, amount, year,
	verification_level, description, additionality_evidence, permanence_plan, baseline_data,
	registry_verification_id, evidence_photos, evidence_documents, footprint,
	status, trust_score, effective_amount, audit_required, gaming_risk_score, verified_at, created_at`

// PostgresRepository implements claim storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new claim. An empty establishment ID is stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Claim) error {
	baseline, err := json.Marshal(nonNilMap(c.BaselineData))
	if err != nil {
		return fmt.Errorf("marshal baseline data: %w", err)
	}
	photos, err := json.Marshal(nonNilSlice(c.EvidencePhotos))
	if err != nil {
		return fmt.Errorf("marshal evidence photos: %w", err)
	}
	docs, err := json.Marshal(nonNilSlice(c.EvidenceDocuments))
	if err != nil {
		return fmt.Errorf("marshal evidence documents: %w", err)
	}

	query := `
		INSERT INTO claims (id, user_id, establishment_id, production_id, practice, type, amount, year,
			verification_level, description, additionality_evidence, permanence_plan, baseline_data,
			registry_verification_id, evidence_photos, evidence_documents, footprint, status, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.UserID, c.EstablishmentID, c.ProductionID, c.Practice, string(c.Type), c.Amount, c.Year,
		string(c.VerificationLevel), c.Description, c.AdditionalityEvidence, c.PermanencePlan, baseline,
		c.RegistryVerificationID, photos, docs, c.Footprint, string(c.Status), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID loads a claim or returns common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`

	c, err := scanClaim(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// SaveVerification writes back the evaluation outcome. It is the only
// statement that updates a stored claim.
func (r *PostgresRepository) SaveVerification(ctx context.Context, id string, v models.Verification) error {
	query := `
		UPDATE claims SET status = $2, trust_score = $3, effective_amount = $4,
			audit_required = $5, gaming_risk_score = $6, verified_at = $7
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		id, string(v.Status), v.TrustScore, v.EffectiveAmount, v.AuditRequired, v.GamingRiskScore, v.VerifiedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SumAmounts totals the amounts of non-rejected claims matching q.
func (r *PostgresRepository) SumAmounts(ctx context.Context, q verification.SumQuery) (decimal.Decimal, error) {
	var f filter
	f.add("status <> $%d", string(models.StatusRejected))
	if q.UserID != "" {
		f.add("user_id = $%d", q.UserID)
	}
	if q.EstablishmentID != "" {
		f.add("establishment_id = $%d", q.EstablishmentID)
	}
	if q.Kind != "" {
		f.add("type = $%d", string(q.Kind))
	}
	if q.Tier != "" {
		f.add("verification_level = $%d", string(q.Tier))
	}
	if q.Year != 0 {
		f.add("year = $%d", q.Year)
	}
	if q.ExcludeClaimID != "" {
		f.add("id <> $%d", q.ExcludeClaimID)
	}
	f.window(q.Window)

	query := `SELECT COALESCE(SUM(amount), 0) FROM claims WHERE ` + f.where()

	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, f.args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum claims: %w", err)
	}
	return sum, nil
}

// CountByUser counts a user's claims of any kind and status in w.
func (r *PostgresRepository) CountByUser(ctx context.Context, userID string, w verification.Window, excludeID string) (int, error) {
	f := userFilter(userID, w, excludeID)
	query := `SELECT COUNT(*) FROM claims WHERE ` + f.where()

	var n int
	if err := r.db.QueryRowContext(ctx, query, f.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return n, nil
}

// RecentByUser lists a user's claims in w, newest first.
func (r *PostgresRepository) RecentByUser(ctx context.Context, userID string, w verification.Window, excludeID string) ([]verification.ClaimSummary, error) {
	f := userFilter(userID, w, excludeID)
	query := `SELECT id, type, verification_level, amount, COALESCE(establishment_id, ''), production_id, created_at
		FROM claims WHERE ` + f.where() + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select claims: %w", err)
	}
	defer rows.Close()

	var result []verification.ClaimSummary
	for rows.Next() {
		var (
			item       verification.ClaimSummary
			kind, tier string
		)
		if err := rows.Scan(&item.ID, &kind, &tier, &item.Amount, &item.EstablishmentID, &item.ProductionID, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Kind = verification.Kind(kind)
		item.Tier = verification.Tier(tier)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountVerified counts a user's approved or auto-approved claims created
// before the given time.
func (r *PostgresRepository) CountVerified(ctx context.Context, userID string, before time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM claims
		WHERE user_id = $1 AND status IN ($2, $3) AND created_at < $4`

	var n int
	err := r.db.QueryRowContext(ctx, query,
		userID, string(models.StatusApproved), string(models.StatusAutoApproved), before).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count verified claims: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var (
		c                      models.Claim
		kind, tier, status     string
		baseline, photos, docs []byte
		verifiedAt             sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.EstablishmentID, &c.ProductionID, &c.Practice, &kind, &c.Amount, &c.Year,
		&tier, &c.Description, &c.AdditionalityEvidence, &c.PermanencePlan, &baseline,
		&c.RegistryVerificationID, &photos, &docs, &c.Footprint,
		&status, &c.TrustScore, &c.EffectiveAmount, &c.AuditRequired, &c.GamingRiskScore, &verifiedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Type = verification.Kind(kind)
	c.VerificationLevel = verification.Tier(tier)
	c.Status = models.ClaimStatus(status)
	if verifiedAt.Valid {
		t := verifiedAt.Time
		c.VerifiedAt = &t
	}
	if err := unmarshalJSONB(baseline, &c.BaselineData); err != nil {
		return nil, fmt.Errorf("baseline data: %w", err)
	}
	if err := unmarshalJSONB(photos, &c.EvidencePhotos); err != nil {
		return nil, fmt.Errorf("evidence photos: %w", err)
	}
	if err := unmarshalJSONB(docs, &c.EvidenceDocuments); err != nil {
		return nil, fmt.Errorf("evidence documents: %w", err)
	}
	return &c, nil
}

func unmarshalJSONB(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// filter accumulates AND-ed conditions with numbered placeholders.
type filter struct {
	conds []string
	args  []any
}

// add appends cond, whose single %d is replaced by the argument's position.
func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

func (f *filter) window(w verification.Window) {
	if !w.Start.IsZero() {
		f.add("created_at > $%d", w.Start)
	}
	if !w.End.IsZero() {
		f.add("created_at <= $%d", w.End)
	}
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(f.conds, " AND ")
}

func userFilter(userID string, w verification.Window, excludeID string) *filter {
	f := &filter{}
	f.add("user_id = $%d", userID)
	if excludeID != "" {
		f.add("id <> $%d", excludeID)
	}
	f.window(w)
	return f
}
