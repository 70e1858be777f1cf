package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
)

const (
	taskStatus = `CASE
        WHEN t.actual_period_end IS NOT NULL THEN 'completed'
        WHEN t.period_start > CURRENT_DATE THEN 'planned'
        ELSE 'in_progress'
    END`
	deadlineExceeded = "COALESCE(t.actual_period_end, CURRENT_DATE) > t.expected_period_end"
)

// TaskRepository manages tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func taskListQuery(filter models.TaskFilter) listQuery {
	q := listQuery{
		name: "tasks",
		columns: []string{
			"t.id", "t.name", "t.site_id", "s.name AS site_name",
			"t.brigade_id", brigadierName + " AS brigadier_name",
			"t.period_start", "t.expected_period_end", "t.actual_period_end",
			taskStatus + " AS status",
			deadlineExceeded + " AS deadline_exceeded",
		},
		from: "task t",
		joins: []string{
			"JOIN site s ON s.id = t.site_id",
			"LEFT JOIN brigade b ON b.id = t.brigade_id",
			"LEFT JOIN employee be ON be.id = b.brigadier_id",
		},
		sorts: map[string]string{
			"name":                "t.name",
			"site_name":           "s.name",
			"period_start":        "t.period_start",
			"expected_period_end": "t.expected_period_end",
			"status":              "status",
		},
		key: "t.id",
	}
	q.filter(contains("t.name", filter.Name))
	q.filter(eq("t.site_id", filter.SiteID))
	q.filter(eq("t.brigade_id", filter.BrigadeID))
	if status, ok := filter.Status.Get(); ok {
		q.filter(squirrel.Expr("("+taskStatus+") = ?", status))
	}
	if from, ok := filter.DateFrom.Get(); ok {
		q.filter(squirrel.GtOrEq{"t.period_start": from})
	}
	if to, ok := filter.DateTo.Get(); ok {
		q.filter(squirrel.LtOrEq{"t.expected_period_end": to})
	}
	q.filter(when(deadlineExceeded, filter.ExceededDeadline))
	return q
}

// List returns tasks matching the filter.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter, params models.ListParams) ([]models.TaskListItem, int, error) {
	return runList[models.TaskListItem](ctx, r.db, taskListQuery(filter), params)
}

// FindByID fetches a task.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT t.id, t.name, t.description, t.site_id, s.name AS site_name,
        t.brigade_id, ` + brigadierName + ` AS brigadier_name,
        t.period_start, t.expected_period_end, t.actual_period_end,
        ` + taskStatus + ` AS status,
        ` + deadlineExceeded + ` AS deadline_exceeded
        FROM task t
        JOIN site s ON s.id = t.site_id
        LEFT JOIN brigade b ON b.id = t.brigade_id
        LEFT JOIN employee be ON be.id = b.brigadier_id
        WHERE t.id = $1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create inserts a task and sets its id.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	const query = `INSERT INTO task (name, description, site_id, brigade_id, period_start, expected_period_end)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &task.ID, query,
		task.Name, task.Description, task.SiteID, task.BrigadeID, task.PeriodStart, task.ExpectedPeriodEnd); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update modifies a task. It returns sql.ErrNoRows when the id is unknown.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	const query = `UPDATE task SET name = $1, description = $2, site_id = $3, brigade_id = $4,
        period_start = $5, expected_period_end = $6 WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		task.Name, task.Description, task.SiteID, task.BrigadeID, task.PeriodStart, task.ExpectedPeriodEnd, task.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return requireAffected(res)
}

// Complete sets the actual end of the task.
func (r *TaskRepository) Complete(ctx context.Context, id int64, end time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE task SET actual_period_end = $1 WHERE id = $2`, end, id)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a task and its material expenditures.
func (r *TaskRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin task delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "task", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM expenditure WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("delete task expenditures: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM task WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit task delete: %w", err)
	}
	return nil
}
