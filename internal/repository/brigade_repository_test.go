package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

func TestBrigadeRepositoryDeleteRefusedWithActiveTasks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBrigadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brigade WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM task WHERE brigade_id = $1 AND actual_period_end IS NULL")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 3)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Cannot delete brigade with active tasks", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrigadeRepositoryDeleteReleasesMembers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBrigadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brigade WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM task WHERE brigade_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignment WHERE brigade_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE task SET brigade_id = NULL WHERE brigade_id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM brigade WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrigadeRepositoryRemoveBrigadierRefused(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBrigadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT brigadier_id FROM brigade WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"brigadier_id"}).AddRow(12))
	mock.ExpectRollback()

	err := repo.RemoveWorker(context.Background(), 3, 12)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrigadeRepositoryAddAssignedWorkerRefused(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBrigadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brigade WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM worker WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT brigade_id FROM assignment WHERE worker_id = $1")).
		WithArgs(int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"brigade_id"}).AddRow(8))
	mock.ExpectRollback()

	err := repo.AddWorker(context.Background(), 3, 15)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Worker is already assigned to brigade 8", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrigadeRepositoryAddMissingWorker(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBrigadeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brigade WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM worker WHERE id = $1 FOR UPDATE")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.AddWorker(context.Background(), 3, 99)
	assert.True(t, appErrors.Is(err, appErrors.ErrReferenceNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
