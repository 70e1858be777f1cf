package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

func TestSelectorRepositoryOptions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSelectorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.id AS id, s.name AS label, COALESCE(a.name, '') AS hint FROM site s JOIN area a ON a.id = s.area_id WHERE (s.name ILIKE $1) AND a.department_id = $2 ORDER BY label ASC, s.id ASC LIMIT 50")).
		WithArgs("%bridge%", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "hint"}).
			AddRow(4, "Old bridge", "North").
			AddRow(7, "River bridge", "South"))

	filter := models.SelectorFilter{Name: optional.Some("bridge"), DepartmentID: optional.Some(int64(2))}
	options, err := repo.Options(context.Background(), SelectorSites, filter, 50)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "Old bridge", options[0].Label)
	assert.Equal(t, "South", options[1].Hint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectorRepositoryUnassignedWorkers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSelectorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE NOT EXISTS (SELECT 1 FROM assignment asg WHERE asg.worker_id = w.id) ORDER BY label ASC, w.id ASC LIMIT 20")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "hint"}))

	options, err := repo.Options(context.Background(), SelectorWorkers, models.SelectorFilter{Unassigned: optional.Some(true)}, 20)
	require.NoError(t, err)
	assert.Empty(t, options)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectorRepositoryUnknown(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSelectorRepository(db)

	assert.False(t, HasSelector("users"))
	_, err := repo.Options(context.Background(), "users", models.SelectorFilter{}, 10)
	assert.Error(t, err)
}

func TestReferenceRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM "department" WHERE id = $1)`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), TableDepartment, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Exists(context.Background(), "pg_user", 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
