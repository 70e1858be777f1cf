package models

import "github.com/meliosu/onyx-core-builders/pkg/optional"

// Brigade is a team of workers led by a brigadier.
type Brigade struct {
	ID              int64   `db:"id"`
	BrigadierID     int64   `db:"brigadier_id"`
	BrigadierName   string  `db:"brigadier_name"`
	WorkerCount     int     `db:"worker_count"`
	CurrentTaskID   *int64  `db:"current_task_id"`
	CurrentTaskName *string `db:"current_task_name"`
	CurrentSiteID   *int64  `db:"current_site_id"`
	CurrentSiteName *string `db:"current_site_name"`
}

// BrigadeListItem is a brigade list row.
type BrigadeListItem struct {
	ID              int64   `db:"id"`
	BrigadierID     int64   `db:"brigadier_id"`
	BrigadierName   string  `db:"brigadier_name"`
	WorkerCount     int     `db:"worker_count"`
	CurrentSiteID   *int64  `db:"current_site_id"`
	CurrentSiteName *string `db:"current_site_name"`
}

// BrigadeFilter narrows the brigade list.
type BrigadeFilter struct {
	BrigadierID optional.Value[int64]  `form:"brigadier_id"`
	SiteID      optional.Value[int64]  `form:"site_id"`
	TaskName    optional.Value[string] `form:"task_name"`
}

var BrigadeTabs = []Tab{
	{Key: "workers", Label: "Workers"},
	{Key: "tasks", Label: "Tasks"},
}
