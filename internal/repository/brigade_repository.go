package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const (
	brigadierName = "be.last_name || ' ' || be.first_name"

	// currentTask is the earliest unfinished task of brigade b.
	currentTask = `LEFT JOIN LATERAL (
        SELECT t.id AS task_id, t.name AS task_name, t.site_id, s.name AS site_name
        FROM task t JOIN site s ON s.id = t.site_id
        WHERE t.brigade_id = b.id AND t.actual_period_end IS NULL
        ORDER BY t.period_start ASC, t.id ASC LIMIT 1
    ) cur ON TRUE`

	errNotEligibleBrigadier = "Worker does not exist or is already a brigadier"
)

// BrigadeRepository manages brigades and their worker assignments.
type BrigadeRepository struct {
	db *sqlx.DB
}

// NewBrigadeRepository constructs a BrigadeRepository.
func NewBrigadeRepository(db *sqlx.DB) *BrigadeRepository {
	return &BrigadeRepository{db: db}
}

func brigadeListQuery(filter models.BrigadeFilter) listQuery {
	q := listQuery{
		name: "brigades",
		columns: []string{
			"b.id", "b.brigadier_id", brigadierName + " AS brigadier_name",
			"(SELECT COUNT(*) FROM assignment x WHERE x.brigade_id = b.id) AS worker_count",
			"cur.site_id AS current_site_id", "cur.site_name AS current_site_name",
		},
		from: "brigade b",
		joins: []string{
			"JOIN employee be ON be.id = b.brigadier_id",
			currentTask,
		},
		sorts: map[string]string{
			"brigadier_name": "be.last_name, be.first_name",
			"worker_count":   "worker_count",
		},
		key: "b.id",
	}
	q.filter(eq("b.brigadier_id", filter.BrigadierID))
	if siteID, ok := filter.SiteID.Get(); ok {
		q.filter(squirrel.Expr("EXISTS (SELECT 1 FROM task t WHERE t.brigade_id = b.id AND t.site_id = ?)", siteID))
	}
	if name, ok := filter.TaskName.Get(); ok {
		q.filter(squirrel.Expr("EXISTS (SELECT 1 FROM task t WHERE t.brigade_id = b.id AND t.name ILIKE ?)", substring(name)))
	}
	return q
}

// List returns brigades matching the filter.
func (r *BrigadeRepository) List(ctx context.Context, filter models.BrigadeFilter, params models.ListParams) ([]models.BrigadeListItem, int, error) {
	return runList[models.BrigadeListItem](ctx, r.db, brigadeListQuery(filter), params)
}

// FindByID fetches a brigade with its current task.
func (r *BrigadeRepository) FindByID(ctx context.Context, id int64) (*models.Brigade, error) {
	query := `SELECT b.id, b.brigadier_id, ` + brigadierName + ` AS brigadier_name,
        (SELECT COUNT(*) FROM assignment x WHERE x.brigade_id = b.id) AS worker_count,
        cur.task_id AS current_task_id, cur.task_name AS current_task_name,
        cur.site_id AS current_site_id, cur.site_name AS current_site_name
        FROM brigade b
        JOIN employee be ON be.id = b.brigadier_id
        ` + currentTask + `
        WHERE b.id = $1`
	var brigade models.Brigade
	if err := r.db.GetContext(ctx, &brigade, query, id); err != nil {
		return nil, err
	}
	return &brigade, nil
}

// claimBrigadier locks the worker and verifies they lead no other brigade.
func claimBrigadier(ctx context.Context, tx *sqlx.Tx, workerID, brigadeID int64) error {
	var locked int64
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM worker WHERE id = $1 FOR UPDATE`, workerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, errNotEligibleBrigadier)
		}
		return fmt.Errorf("lock brigadier: %w", err)
	}
	leads, err := exists(ctx, tx, `SELECT 1 FROM brigade WHERE brigadier_id = $1 AND id <> $2`, workerID, brigadeID)
	if err != nil {
		return fmt.Errorf("check brigadier: %w", err)
	}
	if leads {
		return appErrors.Clone(appErrors.ErrConflict, errNotEligibleBrigadier)
	}
	return nil
}

// moveAssignment makes the worker a member of the brigade only.
func moveAssignment(ctx context.Context, tx *sqlx.Tx, brigadeID, workerID int64) error {
	const query = `INSERT INTO assignment (brigade_id, worker_id) VALUES ($1, $2)
        ON CONFLICT (worker_id) DO UPDATE SET brigade_id = EXCLUDED.brigade_id`
	if _, err := tx.ExecContext(ctx, query, brigadeID, workerID); err != nil {
		return fmt.Errorf("assign brigadier: %w", err)
	}
	return nil
}

// Create inserts a brigade led by an eligible worker who becomes its member.
func (r *BrigadeRepository) Create(ctx context.Context, brigade *models.Brigade) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin brigade create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = claimBrigadier(ctx, tx, brigade.BrigadierID, 0); err != nil {
		return err
	}
	var id int64
	if err = tx.GetContext(ctx, &id, `INSERT INTO brigade (brigadier_id) VALUES ($1) RETURNING id`, brigade.BrigadierID); err != nil {
		return fmt.Errorf("create brigade: %w", err)
	}
	if err = moveAssignment(ctx, tx, id, brigade.BrigadierID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit brigade create: %w", err)
	}
	brigade.ID = id
	return nil
}

// Update changes the brigadier. The previous brigadier stays a member.
func (r *BrigadeRepository) Update(ctx context.Context, brigade *models.Brigade) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin brigade update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current int64
	if err = tx.GetContext(ctx, &current, `SELECT brigadier_id FROM brigade WHERE id = $1 FOR UPDATE`, brigade.ID); err != nil {
		return fmt.Errorf("lock brigade: %w", err)
	}
	if current != brigade.BrigadierID {
		if err = claimBrigadier(ctx, tx, brigade.BrigadierID, brigade.ID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `UPDATE brigade SET brigadier_id = $1 WHERE id = $2`, brigade.BrigadierID, brigade.ID); err != nil {
			return fmt.Errorf("update brigade: %w", err)
		}
		if err = moveAssignment(ctx, tx, brigade.ID, brigade.BrigadierID); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit brigade update: %w", err)
	}
	return nil
}

// Delete removes a brigade without unfinished tasks. Its members are
// released and its finished tasks are detached.
func (r *BrigadeRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin brigade delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "brigade", id); err != nil {
		return err
	}
	active, err := count(ctx, tx, `SELECT COUNT(*) FROM task WHERE brigade_id = $1 AND actual_period_end IS NULL`, id)
	if err != nil {
		return fmt.Errorf("count brigade tasks: %w", err)
	}
	if active > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "Cannot delete brigade with active tasks")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM assignment WHERE brigade_id = $1`, id); err != nil {
		return fmt.Errorf("release brigade workers: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE task SET brigade_id = NULL WHERE brigade_id = $1`, id); err != nil {
		return fmt.Errorf("detach brigade tasks: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM brigade WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete brigade: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit brigade delete: %w", err)
	}
	return nil
}

// AddWorker assigns an unassigned worker to the brigade.
func (r *BrigadeRepository) AddWorker(ctx context.Context, brigadeID, workerID int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add worker: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "brigade", brigadeID); err != nil {
		return err
	}
	if err = lockRow(ctx, tx, "worker", workerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrReferenceNotFound, "Worker does not exist")
		}
		return err
	}
	var assigned int64
	err = tx.GetContext(ctx, &assigned, `SELECT brigade_id FROM assignment WHERE worker_id = $1`, workerID)
	switch {
	case err == nil:
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Worker is already assigned to brigade %d", assigned))
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check assignment: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO assignment (brigade_id, worker_id) VALUES ($1, $2)`, brigadeID, workerID); err != nil {
		return fmt.Errorf("assign worker: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit add worker: %w", err)
	}
	return nil
}

// RemoveWorker releases a member other than the brigadier.
func (r *BrigadeRepository) RemoveWorker(ctx context.Context, brigadeID, workerID int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove worker: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var brigadier int64
	if err = tx.GetContext(ctx, &brigadier, `SELECT brigadier_id FROM brigade WHERE id = $1 FOR UPDATE`, brigadeID); err != nil {
		return fmt.Errorf("lock brigade: %w", err)
	}
	if brigadier == workerID {
		return appErrors.Clone(appErrors.ErrConflict, "Cannot remove the brigadier from the brigade")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM assignment WHERE brigade_id = $1 AND worker_id = $2`, brigadeID, workerID)
	if err != nil {
		return fmt.Errorf("remove worker: %w", err)
	}
	if err = requireAffected(res); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit remove worker: %w", err)
	}
	return nil
}
