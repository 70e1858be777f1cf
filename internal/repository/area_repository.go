package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

// AreaRepository manages persistence for areas.
type AreaRepository struct {
	db *sqlx.DB
}

// NewAreaRepository constructs an AreaRepository.
func NewAreaRepository(db *sqlx.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

func areaListQuery(filter models.AreaFilter) listQuery {
	q := listQuery{
		name: "areas",
		columns: []string{
			"a.id", "a.name", "a.department_id", "d.name AS department_name",
			"a.supervisor_id", supervisorName + " AS supervisor_name",
		},
		from: "area a",
		joins: []string{
			"JOIN department d ON d.id = a.department_id",
			"LEFT JOIN employee se ON se.id = a.supervisor_id",
		},
		sorts: map[string]string{
			"name":            "a.name",
			"department_name": "d.name",
			"supervisor_name": "se.last_name, se.first_name",
		},
		key: "a.id",
	}
	q.filter(contains("a.name", filter.Name))
	q.filter(eq("a.department_id", filter.DepartmentID))
	q.filter(eq("a.supervisor_id", filter.SupervisorID))
	return q
}

// List returns areas matching the filter.
func (r *AreaRepository) List(ctx context.Context, filter models.AreaFilter, params models.ListParams) ([]models.AreaListItem, int, error) {
	return runList[models.AreaListItem](ctx, r.db, areaListQuery(filter), params)
}

// FindByID fetches an area with its site and personnel counts.
func (r *AreaRepository) FindByID(ctx context.Context, id int64) (*models.Area, error) {
	query := `SELECT a.id, a.name, a.department_id, d.name AS department_name,
        a.supervisor_id, ` + supervisorName + ` AS supervisor_name,
        (SELECT COUNT(*) FROM site s WHERE s.area_id = a.id) AS site_count,
        (SELECT COUNT(*) FROM technical_personnel tp WHERE tp.area_id = a.id) AS personnel_count
        FROM area a
        JOIN department d ON d.id = a.department_id
        LEFT JOIN employee se ON se.id = a.supervisor_id
        WHERE a.id = $1`
	var area models.Area
	if err := r.db.GetContext(ctx, &area, query, id); err != nil {
		return nil, err
	}
	return &area, nil
}

// Create inserts an area and sets its id.
func (r *AreaRepository) Create(ctx context.Context, area *models.Area) error {
	const query = `INSERT INTO area (name, department_id, supervisor_id) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &area.ID, query, area.Name, area.DepartmentID, area.SupervisorID); err != nil {
		return fmt.Errorf("create area: %w", err)
	}
	return nil
}

// Update modifies an area. It returns sql.ErrNoRows when the id is unknown.
func (r *AreaRepository) Update(ctx context.Context, area *models.Area) error {
	const query = `UPDATE area SET name = $1, department_id = $2, supervisor_id = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, area.Name, area.DepartmentID, area.SupervisorID, area.ID)
	if err != nil {
		return fmt.Errorf("update area: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an area without sites. Personnel assigned to it are detached.
func (r *AreaRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin area delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "area", id); err != nil {
		return err
	}
	sites, err := count(ctx, tx, `SELECT COUNT(*) FROM site WHERE area_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count area sites: %w", err)
	}
	if sites > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete area: it has %d sites", sites))
	}
	if _, err = tx.ExecContext(ctx, `UPDATE technical_personnel SET area_id = NULL WHERE area_id = $1`, id); err != nil {
		return fmt.Errorf("detach area personnel: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM area WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit area delete: %w", err)
	}
	return nil
}
