package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

func expectWorkerLock(mock sqlmock.Sqlmock, profession string, brigadeID interface{}, brigadier bool) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM worker w LEFT JOIN assignment asg ON asg.worker_id = w.id")).
		WithArgs(int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"profession", "brigade_id", "is_brigadier"}).
			AddRow(profession, brigadeID, brigadier))
}

func TestWorkerRepositoryDeleteBrigadierRefused(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkerRepository(db)

	mock.ExpectBegin()
	expectWorkerLock(mock, "welder", 4, true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brigade WHERE brigadier_id = $1")).
		WithArgs(int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 15)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Cannot delete worker: they are the brigadier of brigade 4", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerRepositoryDeleteRemovesEveryRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWorkerRepository(db)

	mock.ExpectBegin()
	expectWorkerLock(mock, "driver", nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM brigade WHERE brigadier_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignment WHERE worker_id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM driver WHERE id = $1")).
		WithArgs(int64(15)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM worker WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employee WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 15))
	assert.NoError(t, mock.ExpectationsWereMet())
}
