package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const isBrigadier = "EXISTS (SELECT 1 FROM brigade b WHERE b.brigadier_id = w.id)"

// WorkerRepository manages workers, their employee rows, their
// profession-specific rows and their brigade assignment.
type WorkerRepository struct {
	db *sqlx.DB
}

// NewWorkerRepository constructs a WorkerRepository.
func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func workerListQuery(filter models.WorkerFilter) listQuery {
	q := listQuery{
		name: "workers",
		columns: []string{
			"w.id", "e.first_name", "e.last_name", "w.profession", "asg.brigade_id",
			isBrigadier + " AS is_brigadier",
		},
		from: "worker w",
		joins: []string{
			"JOIN employee e ON e.id = w.id",
			"LEFT JOIN assignment asg ON asg.worker_id = w.id",
		},
		sorts: map[string]string{
			"name":       "e.last_name, e.first_name",
			"profession": "w.profession",
			"brigade_id": "asg.brigade_id",
		},
		key: "w.id",
	}
	if name, ok := filter.Name.Get(); ok {
		q.filter(nameLike(name))
	}
	q.filter(eq("w.profession", filter.Profession))
	q.filter(eq("asg.brigade_id", filter.BrigadeID))
	q.filter(when(isBrigadier, filter.IsBrigadier))
	return q
}

// List returns workers matching the filter.
func (r *WorkerRepository) List(ctx context.Context, filter models.WorkerFilter, params models.ListParams) ([]models.WorkerListItem, int, error) {
	return runList[models.WorkerListItem](ctx, r.db, workerListQuery(filter), params)
}

// FindByID fetches a worker with their profession-specific fields.
func (r *WorkerRepository) FindByID(ctx context.Context, id int64) (*models.Worker, error) {
	query := `SELECT e.id, e.first_name, e.last_name, e.middle_name, e.gender, e.photo, e.phone_number, e.salary,
        w.profession, w.union_name, asg.brigade_id, ` + isBrigadier + ` AS is_brigadier
        FROM worker w
        JOIN employee e ON e.id = w.id
        LEFT JOIN assignment asg ON asg.worker_id = w.id
        WHERE w.id = $1`
	var worker models.Worker
	if err := r.db.GetContext(ctx, &worker, query, id); err != nil {
		return nil, err
	}
	fields, err := models.NewProfessionFields(worker.Profession)
	if err != nil {
		return nil, err
	}
	if err := loadSatellite(ctx, r.db, id, fields); err != nil {
		return nil, err
	}
	worker.Fields = fields
	return &worker, nil
}

func workerValues(worker *models.Worker) map[string]any {
	return map[string]any{
		"profession": worker.Fields.Profession(),
		"union_name": worker.UnionName,
	}
}

// Create inserts the employee, worker and profession rows and the optional
// brigade assignment in one transaction.
func (r *WorkerRepository) Create(ctx context.Context, worker *models.Worker) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin worker create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id, err := insertRow(ctx, tx, "employee", worker.Employee.Values())
	if err != nil {
		return err
	}
	if err = insertWithID(ctx, tx, "worker", id, workerValues(worker)); err != nil {
		return err
	}
	if err = insertSatellite(ctx, tx, id, worker.Fields); err != nil {
		return err
	}
	if worker.BrigadeID != nil {
		if _, err = tx.ExecContext(ctx, `INSERT INTO assignment (brigade_id, worker_id) VALUES ($1, $2)`, *worker.BrigadeID, id); err != nil {
			return fmt.Errorf("assign worker: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit worker create: %w", err)
	}
	worker.ID = id
	worker.Profession = worker.Fields.Profession()
	return nil
}

type workerState struct {
	Profession  models.Profession `db:"profession"`
	BrigadeID   *int64            `db:"brigade_id"`
	IsBrigadier bool              `db:"is_brigadier"`
}

func lockWorker(ctx context.Context, tx *sqlx.Tx, id int64) (workerState, error) {
	var state workerState
	query := `SELECT w.profession, asg.brigade_id, ` + isBrigadier + ` AS is_brigadier
        FROM worker w LEFT JOIN assignment asg ON asg.worker_id = w.id
        WHERE w.id = $1 FOR UPDATE OF w`
	if err := tx.GetContext(ctx, &state, query, id); err != nil {
		return state, fmt.Errorf("lock worker: %w", err)
	}
	return state, nil
}

func sameBrigade(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Update rewrites the worker, replacing the profession row when the
// profession changed. A brigadier cannot leave their brigade.
func (r *WorkerRepository) Update(ctx context.Context, worker *models.Worker) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin worker update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	state, err := lockWorker(ctx, tx, worker.ID)
	if err != nil {
		return err
	}
	if state.IsBrigadier && !sameBrigade(state.BrigadeID, worker.BrigadeID) {
		return appErrors.Clone(appErrors.ErrConflict, "Cannot change the brigade of a brigadier")
	}
	previous, err := models.NewProfessionFields(state.Profession)
	if err != nil {
		return err
	}
	if err = updateRow(ctx, tx, "employee", worker.ID, worker.Employee.Values()); err != nil {
		return err
	}
	if err = updateRow(ctx, tx, "worker", worker.ID, workerValues(worker)); err != nil {
		return err
	}
	if err = replaceSatellite(ctx, tx, worker.ID, previous.Table(), worker.Fields); err != nil {
		return err
	}
	if !sameBrigade(state.BrigadeID, worker.BrigadeID) {
		if _, err = tx.ExecContext(ctx, `DELETE FROM assignment WHERE worker_id = $1`, worker.ID); err != nil {
			return fmt.Errorf("unassign worker: %w", err)
		}
		if worker.BrigadeID != nil {
			if _, err = tx.ExecContext(ctx, `INSERT INTO assignment (brigade_id, worker_id) VALUES ($1, $2)`, *worker.BrigadeID, worker.ID); err != nil {
				return fmt.Errorf("assign worker: %w", err)
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit worker update: %w", err)
	}
	worker.Profession = worker.Fields.Profession()
	return nil
}

// Delete removes a worker who is not a brigadier.
func (r *WorkerRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin worker delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	state, err := lockWorker(ctx, tx, id)
	if err != nil {
		return err
	}
	var brigadeID int64
	err = tx.GetContext(ctx, &brigadeID, `SELECT id FROM brigade WHERE brigadier_id = $1`, id)
	switch {
	case err == nil:
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete worker: they are the brigadier of brigade %d", brigadeID))
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check brigadier: %w", err)
	}
	fields, err := models.NewProfessionFields(state.Profession)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM assignment WHERE worker_id = $1`, id); err != nil {
		return fmt.Errorf("unassign worker: %w", err)
	}
	if err = deleteSatellite(ctx, tx, fields.Table(), id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM worker WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM employee WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit worker delete: %w", err)
	}
	return nil
}
