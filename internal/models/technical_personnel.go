package models

import (
	"github.com/lib/pq"

	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// TechnicalPersonnel is an engineering employee with a qualification.
type TechnicalPersonnel struct {
	Employee
	Qualification    Qualification  `db:"qualification"`
	Position         *Position      `db:"position"`
	EducationLevel   *string        `db:"education_level"`
	SoftwareSkills   pq.StringArray `db:"software_skills"`
	IsProjectManager bool           `db:"is_project_manager"`
	AreaID           *int64         `db:"area_id"`
	AreaName         *string        `db:"area_name"`
	DepartmentID     *int64         `db:"department_id"`
	DepartmentName   *string        `db:"department_name"`

	Fields QualificationFields `db:"-"`
}

// TechnicalPersonnelListItem is a technical personnel list row.
type TechnicalPersonnelListItem struct {
	ID            int64         `db:"id"`
	FirstName     string        `db:"first_name"`
	LastName      string        `db:"last_name"`
	Qualification Qualification `db:"qualification"`
	Position      *Position     `db:"position"`
	AreaID        *int64        `db:"area_id"`
	AreaName      *string       `db:"area_name"`
}

// TechnicalPersonnelFilter narrows the technical personnel list.
type TechnicalPersonnelFilter struct {
	Name          optional.Value[string]        `form:"name"`
	Qualification optional.Value[Qualification] `form:"qualification"`
	Position      optional.Value[Position]      `form:"position"`
	DepartmentID  optional.Value[int64]         `form:"department_id"`
	AreaID        optional.Value[int64]         `form:"area_id"`
}
