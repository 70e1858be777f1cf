package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

// ExpenditureRepository manages the materials planned for and used by tasks.
type ExpenditureRepository struct {
	db *sqlx.DB
}

// NewExpenditureRepository constructs an ExpenditureRepository.
func NewExpenditureRepository(db *sqlx.DB) *ExpenditureRepository {
	return &ExpenditureRepository{db: db}
}

func expenditureListQuery(filter models.ExpenditureFilter) listQuery {
	q := listQuery{
		name: "expenditures",
		columns: []string{
			"e.task_id", "t.name AS task_name", "t.site_id", "s.name AS site_name",
			"e.material_id", "m.name AS material_name", "m.units", "m.cost",
			"e.expected_amount", "e.actual_amount",
			"GREATEST(COALESCE(e.actual_amount, 0) - e.expected_amount, 0) AS excess_amount",
			"COALESCE(e.actual_amount, e.expected_amount) * m.cost AS total_cost",
		},
		from: "expenditure e",
		joins: []string{
			"JOIN task t ON t.id = e.task_id",
			"JOIN site s ON s.id = t.site_id",
			"JOIN material m ON m.id = e.material_id",
		},
		sorts: map[string]string{
			"task_name":       "t.name",
			"site_name":       "s.name",
			"material_name":   "m.name",
			"expected_amount": "e.expected_amount",
			"actual_amount":   "e.actual_amount",
			"total_cost":      "total_cost",
		},
		key: "e.task_id, e.material_id",
	}
	q.filter(eq("e.task_id", filter.TaskID))
	q.filter(eq("e.material_id", filter.MaterialID))
	return q
}

// List returns expenditures of one task or one material.
func (r *ExpenditureRepository) List(ctx context.Context, filter models.ExpenditureFilter, params models.ListParams) ([]models.Expenditure, int, error) {
	return runList[models.Expenditure](ctx, r.db, expenditureListQuery(filter), params)
}

// Add plans an amount of a material for a task. A material appears at most
// once per task.
func (r *ExpenditureRepository) Add(ctx context.Context, taskID, materialID int64, expected decimal.Decimal) error {
	const query = `INSERT INTO expenditure (task_id, material_id, expected_amount) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, taskID, materialID, expected); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return appErrors.Clone(appErrors.ErrConflict, "Material is already added to this task")
		}
		return fmt.Errorf("add expenditure: %w", err)
	}
	return nil
}

// SetActual records the amount actually used. It returns sql.ErrNoRows when
// the material is not planned for the task.
func (r *ExpenditureRepository) SetActual(ctx context.Context, taskID, materialID int64, actual decimal.Decimal) error {
	const query = `UPDATE expenditure SET actual_amount = $1 WHERE task_id = $2 AND material_id = $3`
	res, err := r.db.ExecContext(ctx, query, actual, taskID, materialID)
	if err != nil {
		return fmt.Errorf("set actual expenditure: %w", err)
	}
	return requireAffected(res)
}
