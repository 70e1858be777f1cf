package models

import "github.com/meliosu/onyx-core-builders/pkg/optional"

// Area belongs to a department and groups sites.
type Area struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	DepartmentID   int64   `db:"department_id"`
	DepartmentName string  `db:"department_name"`
	SupervisorID   *int64  `db:"supervisor_id"`
	SupervisorName *string `db:"supervisor_name"`
	SiteCount      int     `db:"site_count"`
	PersonnelCount int     `db:"personnel_count"`
}

// AreaListItem is an area list row.
type AreaListItem struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	DepartmentID   int64   `db:"department_id"`
	DepartmentName string  `db:"department_name"`
	SupervisorID   *int64  `db:"supervisor_id"`
	SupervisorName *string `db:"supervisor_name"`
}

// AreaFilter narrows the area list.
type AreaFilter struct {
	Name         optional.Value[string] `form:"name"`
	DepartmentID optional.Value[int64]  `form:"department_id"`
	SupervisorID optional.Value[int64]  `form:"supervisor_id"`
}

var AreaTabs = []Tab{
	{Key: "sites", Label: "Sites"},
	{Key: "personnel", Label: "Personnel"},
}
