package establishments

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/trazo/internal/common"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

var at = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, name, region, area_hectares, created_at FROM establishments WHERE id = \$1`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "region", "area_hectares", "created_at"}).
			AddRow("e1", "Finca", "uy-north", "12.5", at))

	e, err := repo.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "uy-north", e.Region)
	assert.Equal(t, "12.5", e.AreaHectares.String())
}

func TestGetByID_NullArea(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM establishments WHERE id = \$1`).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "region", "area_hectares", "created_at"}).
			AddRow("e1", "", "", nil, at))

	e, err := repo.GetByID(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, e.AreaHectares.IsZero())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM establishments`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRegionalAdoption(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	w := verification.Trailing(at, 365*24*time.Hour)

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\),.*FROM establishments e\s+WHERE e.region = \$1 AND e.id <> \$5`).
		WithArgs("uy-north", "no_till", w.Start, w.End, "e1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "adopters"}).AddRow(int64(10), int64(4)))

	a, err := repo.RegionalAdoption(context.Background(), "uy-north", "no_till", w, "e1")
	require.NoError(t, err)
	assert.Equal(t, verification.Adoption{Adopters: 4, Total: 10}, a)
	assert.InDelta(t, 0.4, a.Rate(), 1e-9)
}

func TestRegionalAdoption_Error(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM establishments e`).WillReturnError(errors.New("boom"))

	_, err := repo.RegionalAdoption(context.Background(), "r", "p", verification.Window{}, "")
	assert.ErrorContains(t, err, "regional adoption")
}
