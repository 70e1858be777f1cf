package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

// TechnicalPersonnelRepository manages technical personnel, their employee
// rows and their qualification-specific rows.
type TechnicalPersonnelRepository struct {
	db *sqlx.DB
}

// NewTechnicalPersonnelRepository constructs a TechnicalPersonnelRepository.
func NewTechnicalPersonnelRepository(db *sqlx.DB) *TechnicalPersonnelRepository {
	return &TechnicalPersonnelRepository{db: db}
}

// nameLike matches either the first or the last name of employee e.
func nameLike(name string) squirrel.Sqlizer {
	pattern := substring(name)
	return squirrel.Or{
		squirrel.ILike{"e.first_name": pattern},
		squirrel.ILike{"e.last_name": pattern},
	}
}

func technicalPersonnelListQuery(filter models.TechnicalPersonnelFilter) listQuery {
	q := listQuery{
		name: "technical personnel",
		columns: []string{
			"tp.id", "e.first_name", "e.last_name", "tp.qualification", "tp.position",
			"tp.area_id", "a.name AS area_name",
		},
		from: "technical_personnel tp",
		joins: []string{
			"JOIN employee e ON e.id = tp.id",
			"LEFT JOIN area a ON a.id = tp.area_id",
		},
		sorts: map[string]string{
			"name":          "e.last_name, e.first_name",
			"qualification": "tp.qualification",
			"position":      "tp.position",
			"area_name":     "a.name",
		},
		key: "tp.id",
	}
	if name, ok := filter.Name.Get(); ok {
		q.filter(nameLike(name))
	}
	q.filter(eq("tp.qualification", filter.Qualification))
	q.filter(eq("tp.position", filter.Position))
	q.filter(eq("a.department_id", filter.DepartmentID))
	q.filter(eq("tp.area_id", filter.AreaID))
	return q
}

// List returns technical personnel matching the filter.
func (r *TechnicalPersonnelRepository) List(ctx context.Context, filter models.TechnicalPersonnelFilter, params models.ListParams) ([]models.TechnicalPersonnelListItem, int, error) {
	return runList[models.TechnicalPersonnelListItem](ctx, r.db, technicalPersonnelListQuery(filter), params)
}

// FindByID fetches a person with their qualification-specific fields.
func (r *TechnicalPersonnelRepository) FindByID(ctx context.Context, id int64) (*models.TechnicalPersonnel, error) {
	const query = `SELECT e.id, e.first_name, e.last_name, e.middle_name, e.gender, e.photo, e.phone_number, e.salary,
        tp.qualification, tp.position, tp.education_level, tp.software_skills, tp.is_project_manager,
        tp.area_id, a.name AS area_name, a.department_id, d.name AS department_name
        FROM technical_personnel tp
        JOIN employee e ON e.id = tp.id
        LEFT JOIN area a ON a.id = tp.area_id
        LEFT JOIN department d ON d.id = a.department_id
        WHERE tp.id = $1`
	var person models.TechnicalPersonnel
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, err
	}
	fields, err := models.NewQualificationFields(person.Qualification)
	if err != nil {
		return nil, err
	}
	if err := loadSatellite(ctx, r.db, id, fields); err != nil {
		return nil, err
	}
	person.Fields = fields
	return &person, nil
}

func technicalPersonnelValues(person *models.TechnicalPersonnel) map[string]any {
	return map[string]any{
		"qualification":      person.Fields.Qualification(),
		"position":           person.Position,
		"education_level":    person.EducationLevel,
		"software_skills":    person.SoftwareSkills,
		"is_project_manager": person.IsProjectManager,
		"area_id":            person.AreaID,
	}
}

// Create inserts the employee, personnel and qualification rows in one transaction.
func (r *TechnicalPersonnelRepository) Create(ctx context.Context, person *models.TechnicalPersonnel) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin technical personnel create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id, err := insertRow(ctx, tx, "employee", person.Employee.Values())
	if err != nil {
		return err
	}
	if err = insertWithID(ctx, tx, "technical_personnel", id, technicalPersonnelValues(person)); err != nil {
		return err
	}
	if err = insertSatellite(ctx, tx, id, person.Fields); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit technical personnel create: %w", err)
	}
	person.ID = id
	person.Qualification = person.Fields.Qualification()
	return nil
}

// Update rewrites the person, replacing the qualification row when the
// qualification changed.
func (r *TechnicalPersonnelRepository) Update(ctx context.Context, person *models.TechnicalPersonnel) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin technical personnel update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Qualification
	if err = tx.GetContext(ctx, &current, `SELECT qualification FROM technical_personnel WHERE id = $1 FOR UPDATE`, person.ID); err != nil {
		return fmt.Errorf("lock technical personnel: %w", err)
	}
	previous, err := models.NewQualificationFields(current)
	if err != nil {
		return err
	}
	if err = updateRow(ctx, tx, "employee", person.ID, person.Employee.Values()); err != nil {
		return err
	}
	if err = updateRow(ctx, tx, "technical_personnel", person.ID, technicalPersonnelValues(person)); err != nil {
		return err
	}
	if err = replaceSatellite(ctx, tx, person.ID, previous.Table(), person.Fields); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit technical personnel update: %w", err)
	}
	person.Qualification = person.Fields.Qualification()
	return nil
}

// Delete removes a person who supervises neither a department nor an area.
func (r *TechnicalPersonnelRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin technical personnel delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Qualification
	if err = tx.GetContext(ctx, &current, `SELECT qualification FROM technical_personnel WHERE id = $1 FOR UPDATE`, id); err != nil {
		return fmt.Errorf("lock technical personnel: %w", err)
	}
	supervising, err := exists(ctx, tx,
		`SELECT 1 FROM department WHERE supervisor_id = $1 UNION ALL SELECT 1 FROM area WHERE supervisor_id = $1`, id)
	if err != nil {
		return fmt.Errorf("check supervision: %w", err)
	}
	if supervising {
		return appErrors.Clone(appErrors.ErrConflict, "Cannot delete technical personnel: they are supervising a department or area")
	}
	fields, err := models.NewQualificationFields(current)
	if err != nil {
		return err
	}
	if err = deleteSatellite(ctx, tx, fields.Table(), id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM technical_personnel WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete technical personnel: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM employee WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit technical personnel delete: %w", err)
	}
	return nil
}
