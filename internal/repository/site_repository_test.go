package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

func newSite(fields models.SiteFields) *models.Site {
	return &models.Site{
		ID:        5,
		Name:      "Riverside",
		AreaID:    2,
		ClientID:  3,
		Location:  "55.75, 37.61",
		RiskLevel: models.RiskLevelMedium,
		Fields:    fields,
	}
}

func TestSiteRepositoryUpdateChangesType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT type FROM site WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"type"}).AddRow("road"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE site SET area_id = $1, client_id = $2, description = $3, location = $4, name = $5, risk_level = $6, type = $7 WHERE id = $8")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM road WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO park (id,area,has_lighting,has_playground) VALUES ($1,$2,$3,$4)")).
		WithArgs(int64(5), 1200.5, true, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	site := newSite(&models.ParkFields{Area: 1200.5, HasLighting: true})
	require.NoError(t, repo.Update(context.Background(), site))
	assert.Equal(t, models.SiteTypePark, site.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteRepositoryUpdateSameType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT type FROM site WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"type"}).AddRow("road"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE site SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE road SET lanes = $1, length = $2, surface = $3 WHERE id = $4")).
		WithArgs(4, 12.5, "asphalt", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	site := newSite(&models.RoadFields{Length: 12.5, Lanes: 4, Surface: "asphalt"})
	require.NoError(t, repo.Update(context.Background(), site))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteRepositoryUpdateRollsBackOnSatelliteFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT type FROM site WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"type"}).AddRow("road"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE site SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM road WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bridge")).
		WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	site := newSite(&models.BridgeFields{Length: 80, RoadMaterial: "concrete", MaxLoad: 40})
	err := repo.Update(context.Background(), site)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert bridge")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteRepositoryCreateRollsBackOnSatelliteFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO site (area_id,client_id,description,location,name,risk_level,type) VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO housing")).
		WithArgs(int64(9), "A", "apartment", 2, 9).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	site := newSite(&models.HousingFields{NumberOfFloors: 9, NumberOfEntrances: 2, HousingType: "apartment", EnergyEfficiency: "A"})
	site.ID = 0
	err := repo.Create(context.Background(), site)
	require.Error(t, err)
	assert.Zero(t, site.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteRepositoryDeleteRefusedWithTasks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT type FROM site WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"type"}).AddRow("bridge"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM task WHERE site_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 5)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Cannot delete site: it has 4 tasks", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteRepositoryDeleteRemovesSatellite(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSiteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT type FROM site WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"type"}).AddRow("power_plant"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM task WHERE site_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM equipment_allocation WHERE site_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM power_plant WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM site WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
