package models

import "github.com/meliosu/onyx-core-builders/pkg/optional"

// Department is the top-level organisational unit.
type Department struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	SupervisorID   *int64  `db:"supervisor_id"`
	SupervisorName *string `db:"supervisor_name"`
	AreaCount      int     `db:"area_count"`
	SiteCount      int     `db:"site_count"`
}

// DepartmentListItem is a department list row.
type DepartmentListItem struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	SupervisorID   *int64  `db:"supervisor_id"`
	SupervisorName *string `db:"supervisor_name"`
	AreaCount      int     `db:"area_count"`
}

// DepartmentFilter narrows the department list.
type DepartmentFilter struct {
	Name         optional.Value[string] `form:"name"`
	SupervisorID optional.Value[int64]  `form:"supervisor_id"`
}

var DepartmentTabs = []Tab{
	{Key: "areas", Label: "Areas"},
	{Key: "equipment", Label: "Equipment"},
	{Key: "sites", Label: "Sites"},
	{Key: "personnel", Label: "Personnel"},
}
