package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const supervisorName = "se.last_name || ' ' || se.first_name"

// DepartmentRepository manages persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func departmentListQuery(filter models.DepartmentFilter) listQuery {
	q := listQuery{
		name: "departments",
		columns: []string{
			"d.id", "d.name", "d.supervisor_id",
			supervisorName + " AS supervisor_name",
			"(SELECT COUNT(*) FROM area a WHERE a.department_id = d.id) AS area_count",
		},
		from:  "department d",
		joins: []string{"LEFT JOIN employee se ON se.id = d.supervisor_id"},
		sorts: map[string]string{
			"name":            "d.name",
			"supervisor_name": "se.last_name, se.first_name",
			"area_count":      "area_count",
		},
		key: "d.id",
	}
	q.filter(contains("d.name", filter.Name))
	q.filter(eq("d.supervisor_id", filter.SupervisorID))
	return q
}

// List returns departments matching the filter.
func (r *DepartmentRepository) List(ctx context.Context, filter models.DepartmentFilter, params models.ListParams) ([]models.DepartmentListItem, int, error) {
	return runList[models.DepartmentListItem](ctx, r.db, departmentListQuery(filter), params)
}

// FindByID fetches a department with its area and site counts.
func (r *DepartmentRepository) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	query := `SELECT d.id, d.name, d.supervisor_id, ` + supervisorName + ` AS supervisor_name,
        (SELECT COUNT(*) FROM area a WHERE a.department_id = d.id) AS area_count,
        (SELECT COUNT(*) FROM site s JOIN area a ON a.id = s.area_id WHERE a.department_id = d.id) AS site_count
        FROM department d
        LEFT JOIN employee se ON se.id = d.supervisor_id
        WHERE d.id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// Create inserts a department and sets its id.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	const query = `INSERT INTO department (name, supervisor_id) VALUES ($1, $2) RETURNING id`
	if err := r.db.GetContext(ctx, &department.ID, query, department.Name, department.SupervisorID); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Update modifies a department. It returns sql.ErrNoRows when the id is unknown.
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	const query = `UPDATE department SET name = $1, supervisor_id = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, department.Name, department.SupervisorID, department.ID)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a department that has neither areas nor equipment allocations.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin department delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "department", id); err != nil {
		return err
	}
	areas, err := count(ctx, tx, `SELECT COUNT(*) FROM area WHERE department_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count department areas: %w", err)
	}
	if areas > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete department: it has %d areas", areas))
	}
	allocations, err := count(ctx, tx, `SELECT COUNT(*) FROM equipment_allocation WHERE department_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count department allocations: %w", err)
	}
	if allocations > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot delete department: it has %d equipment allocations", allocations))
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM department WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit department delete: %w", err)
	}
	return nil
}

// lockRow takes a row lock on table.id, returning sql.ErrNoRows when absent.
func lockRow(ctx context.Context, tx *sqlx.Tx, table string, id int64) error {
	var locked int64
	query := fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR UPDATE", table)
	if err := tx.GetContext(ctx, &locked, query, id); err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	return nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
