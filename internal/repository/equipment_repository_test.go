package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

func expectEquipmentLock(mock sqlmock.Sqlmock, amount, allocated int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT amount FROM equipment WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow(amount))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(ea.amount), 0) FROM equipment_allocation ea WHERE ea.equipment_id = $1")).
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(allocated))
}

func TestEquipmentRepositoryAllocateInsufficient(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	mock.ExpectBegin()
	expectEquipmentLock(mock, 10, 7)
	mock.ExpectRollback()

	err := repo.Allocate(context.Background(), &models.Allocation{EquipmentID: 6, DepartmentID: 1, Amount: 5, PeriodStart: time.Now()})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Not enough available equipment. Available: 3, Requested: 5", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryAllocate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	siteID := int64(9)
	mock.ExpectBegin()
	expectEquipmentLock(mock, 10, 7)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO equipment_allocation (equipment_id, department_id, site_id, amount, period_start, period_end)")).
		WithArgs(int64(6), int64(1), &siteID, 3, start, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))
	mock.ExpectCommit()

	allocation := &models.Allocation{EquipmentID: 6, DepartmentID: 1, SiteID: &siteID, Amount: 3, PeriodStart: start}
	require.NoError(t, repo.Allocate(context.Background(), allocation))
	assert.Equal(t, int64(41), allocation.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryUpdateBelowAllocated(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	mock.ExpectBegin()
	expectEquipmentLock(mock, 10, 7)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Equipment{ID: 6, Name: "Crane", Amount: 4})
	assert.Equal(t, "Cannot set amount less than allocated amount (7)", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEquipmentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEquipmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT amount FROM equipment WHERE id = $1 FOR UPDATE")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Equipment{ID: 6, Amount: 4})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
