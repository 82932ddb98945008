package claims

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

var created = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func sampleClaim() *models.Claim {
	return &models.Claim{
		ID:                "c1",
		UserID:            "u1",
		Practice:          "no_till",
		Type:              verification.KindOffset,
		Amount:            decimal.NewFromInt(20),
		Year:              2026,
		VerificationLevel: verification.TierSelfReported,
		Description:       "cover crops",
		BaselineData:      map[string]string{"area_hectares": "2"},
		EvidencePhotos:    []string{"https://example.org/a.jpg"},
		Footprint:         decimal.Zero,
		Status:            models.StatusPendingReview,
		CreatedAt:         created,
	}
}

func claimRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "establishment_id", "production_id", "practice", "type", "amount", "year",
		"verification_level", "description", "additionality_evidence", "permanence_plan", "baseline_data",
		"registry_verification_id", "evidence_photos", "evidence_documents", "footprint",
		"status", "trust_score", "effective_amount", "audit_required", "gaming_risk_score", "verified_at", "created_at",
	})
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)INSERT INTO claims .* VALUES \(\$1, \$2, NULLIF\(\$3, ''\)`).
		WithArgs(
			"c1", "u1", "", "", "no_till", "offset", decimal.NewFromInt(20), 2026,
			"self_reported", "cover crops", "", "", []byte(`{"area_hectares":"2"}`),
			"", []byte(`["https://example.org/a.jpg"]`), []byte(`[]`), decimal.Zero, "pending_review", created,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), sampleClaim()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_StoresAmountsExactly(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	c := sampleClaim()
	c.Amount = decimal.RequireFromString("1e13")
	c.Footprint = decimal.RequireFromString("12.123456789012")
	c.EstablishmentID = "est-unknown"

	mock.ExpectExec(`INSERT INTO claims`).
		WithArgs(
			"c1", "u1", "est-unknown", "", "no_till", "offset", "10000000000000", 2026,
			"self_reported", "cover crops", "", "", sqlmock.AnyArg(),
			"", sqlmock.AnyArg(), sqlmock.AnyArg(), "12.123456789012", "pending_review", created,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO claims`).WillReturnError(errors.New("db is down"))

	err := repo.Create(context.Background(), sampleClaim())
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db is down`, err.Error())
}

func TestGetByID_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	verified := created.Add(time.Second)

	mock.ExpectQuery(`(?s)SELECT id, user_id, COALESCE\(establishment_id, ''\).* FROM claims WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(claimRows().AddRow(
			"c1", "u1", "e1", "p1", "no_till", "offset", "150.5", int64(2026),
			"certified_project", "desc", "evidence", "plan", []byte(`{"area_hectares":"3"}`),
			"GS-1234", []byte(`["https://example.org/a.jpg"]`), []byte(`[]`), "0",
			"approved", 1.0, "135.45", false, 0.0, verified, created,
		))

	c, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "e1", c.EstablishmentID)
	assert.Equal(t, verification.KindOffset, c.Type)
	assert.Equal(t, verification.TierCertifiedProject, c.VerificationLevel)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, map[string]string{"area_hectares": "3"}, c.BaselineData)
	assert.Equal(t, []string{"https://example.org/a.jpg"}, c.EvidencePhotos)
	assert.Empty(t, c.EvidenceDocuments)
	assert.Equal(t, models.StatusApproved, c.Status)
	assert.Equal(t, "135.45", c.EffectiveAmount.String())
	require.NotNil(t, c.VerifiedAt)
	assert.Equal(t, verified, *c.VerifiedAt)
	assert.Equal(t, created, c.CreatedAt)
}

func TestGetByID_NullVerifiedAt(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM claims WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(claimRows().AddRow(
			"c1", "u1", "", "", "", "emission", "10", int64(2026),
			"self_reported", "", "", "", []byte(`{}`),
			"", []byte(`[]`), []byte(`[]`), "0",
			"pending_review", 0.0, "0", false, 0.0, nil, created,
		))

	c, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, c.VerifiedAt)
	assert.Equal(t, verification.KindEmission, c.Type)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM claims WHERE id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM claims WHERE id = \$1`).WithArgs("c1").WillReturnError(errors.New("boom"))

	_, err := repo.GetByID(context.Background(), "c1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestSaveVerification(t *testing.T) {
	v := models.Verification{
		Status:          models.StatusApproved,
		TrustScore:      0.55,
		EffectiveAmount: decimal.RequireFromString("8.8"),
		GamingRiskScore: 0.2,
		VerifiedAt:      created,
	}
	q := `UPDATE claims SET status = \$2, trust_score = \$3, effective_amount = \$4,\s+audit_required = \$5, gaming_risk_score = \$6, verified_at = \$7\s+WHERE id = \$1`

	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"updated", 1, nil},
		{"missing", 0, common.ErrorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectExec(q).
				WithArgs("c1", "approved", 0.55, decimal.RequireFromString("8.8"), false, 0.2, created).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.SaveVerification(context.Background(), "c1", v)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSumAmounts_BuildsFilter(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	w := verification.Trailing(created, 24*time.Hour)

	q := regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) FROM claims WHERE status <> $1 AND user_id = $2 AND type = $3 AND verification_level = $4 AND id <> $5 AND created_at > $6 AND created_at <= $7`)
	mock.ExpectQuery(q).
		WithArgs("rejected", "u1", "offset", "self_reported", "c9", w.Start, w.End).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("480.5"))

	sum, err := repo.SumAmounts(context.Background(), verification.SumQuery{
		UserID: "u1", Kind: verification.KindOffset, Tier: verification.TierSelfReported,
		Window: w, ExcludeClaimID: "c9",
	})
	require.NoError(t, err)
	assert.Equal(t, "480.5", sum.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumAmounts_EstablishmentYearUntil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := regexp.QuoteMeta(`WHERE status <> $1 AND establishment_id = $2 AND type = $3 AND year = $4 AND created_at <= $5`)
	mock.ExpectQuery(q).
		WithArgs("rejected", "e1", "emission", 2026, created).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("0"))

	sum, err := repo.SumAmounts(context.Background(), verification.SumQuery{
		EstablishmentID: "e1", Kind: verification.KindEmission, Year: 2026, Window: verification.Until(created),
	})
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestSumAmounts_Error(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT COALESCE`).WillReturnError(errors.New("boom"))

	_, err := repo.SumAmounts(context.Background(), verification.SumQuery{UserID: "u1"})
	assert.ErrorContains(t, err, "sum claims")
}

func TestCountByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	w := verification.Trailing(created, 10*time.Minute)

	q := regexp.QuoteMeta(`SELECT COUNT(*) FROM claims WHERE user_id = $1 AND id <> $2 AND created_at > $3 AND created_at <= $4`)
	mock.ExpectQuery(q).
		WithArgs("u1", "c1", w.Start, w.End).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	n, err := repo.CountByUser(context.Background(), "u1", w, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestRecentByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	w := verification.Trailing(created, 30*24*time.Hour)

	q := regexp.QuoteMeta(`FROM claims WHERE user_id = $1 AND created_at > $2 AND created_at <= $3 ORDER BY created_at DESC, id DESC`)
	mock.ExpectQuery(q).
		WithArgs("u1", w.Start, w.End).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "verification_level", "amount", "establishment_id", "production_id", "created_at"}).
			AddRow("c2", "offset", "self_reported", "60", "e1", "p1", created.Add(-time.Hour)).
			AddRow("c1", "emission", "community_verified", "40", "", "", created.Add(-2*time.Hour)))

	got, err := repo.RecentByUser(context.Background(), "u1", w, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	assert.Equal(t, verification.KindOffset, got[0].Kind)
	assert.Equal(t, "e1", got[0].EstablishmentID)
	assert.Equal(t, verification.TierCommunityVerified, got[1].Tier)
	assert.True(t, got[1].Amount.Equal(decimal.NewFromInt(40)))
}

func TestRecentByUser_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM claims WHERE user_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))

	_, err := repo.RecentByUser(context.Background(), "u1", verification.Window{}, "")
	require.Error(t, err)
}

func TestCountVerified(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM claims\s+WHERE user_id = \$1 AND status IN \(\$2, \$3\) AND created_at < \$4`).
		WithArgs("u1", "approved", "auto_approved", created).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(11)))

	n, err := repo.CountVerified(context.Background(), "u1", created)
	require.NoError(t, err)
	assert.Equal(t, 11, n)
}

func TestFilter_EmptyWhere(t *testing.T) {
	var f filter
	assert.Equal(t, "TRUE", f.where())

	f.window(verification.Window{})
	assert.Empty(t, f.args)
}
