package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const (
	estimatedSpendings = "(SELECT COALESCE(SUM(e.expected_amount), 0) FROM expenditure e WHERE e.material_id = m.id) * m.cost"
	actualSpendings    = "(SELECT COALESCE(SUM(e.actual_amount), 0) FROM expenditure e WHERE e.material_id = m.id) * m.cost"
)

// MaterialRepository manages materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs a MaterialRepository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func materialListQuery(filter models.MaterialFilter) listQuery {
	q := listQuery{
		name: "materials",
		columns: []string{
			"m.id", "m.name", "m.cost", "m.units",
			estimatedSpendings + " AS estimated_spendings",
			actualSpendings + " AS actual_spendings",
			"(" + actualSpendings + ") > (" + estimatedSpendings + ") AS excess",
		},
		from: "material m",
		sorts: map[string]string{
			"name":                "m.name",
			"cost":                "m.cost",
			"units":               "m.units",
			"estimated_spendings": "estimated_spendings",
			"actual_spendings":    "actual_spendings",
		},
		key: "m.id",
	}
	q.filter(contains("m.name", filter.Name))
	if lo, ok := filter.CostMin.Get(); ok {
		q.filter(squirrel.GtOrEq{"m.cost": lo})
	}
	if hi, ok := filter.CostMax.Get(); ok {
		q.filter(squirrel.LtOrEq{"m.cost": hi})
	}
	q.filter(when("("+actualSpendings+") > ("+estimatedSpendings+")", filter.ExcessUsage))
	return q
}

// List returns materials matching the filter.
func (r *MaterialRepository) List(ctx context.Context, filter models.MaterialFilter, params models.ListParams) ([]models.MaterialListItem, int, error) {
	return runList[models.MaterialListItem](ctx, r.db, materialListQuery(filter), params)
}

// FindByID fetches a material with its spendings.
func (r *MaterialRepository) FindByID(ctx context.Context, id int64) (*models.Material, error) {
	query := `SELECT m.id, m.name, m.cost, m.units,
        ` + estimatedSpendings + ` AS estimated_spendings,
        ` + actualSpendings + ` AS actual_spendings,
        (SELECT COUNT(*) FROM expenditure e WHERE e.material_id = m.id) AS usage_count
        FROM material m WHERE m.id = $1`
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// Create inserts a material and sets its id.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	const query = `INSERT INTO material (name, cost, units) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &material.ID, query, material.Name, material.Cost, material.Units); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Update modifies a material. It returns sql.ErrNoRows when the id is unknown.
func (r *MaterialRepository) Update(ctx context.Context, material *models.Material) error {
	const query = `UPDATE material SET name = $1, cost = $2, units = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, material.Name, material.Cost, material.Units, material.ID)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a material no task uses.
func (r *MaterialRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin material delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "material", id); err != nil {
		return err
	}
	uses, err := count(ctx, tx, `SELECT COUNT(*) FROM expenditure WHERE material_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count material usage: %w", err)
	}
	if uses > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete material: it is used in %d tasks", uses))
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM material WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit material delete: %w", err)
	}
	return nil
}
