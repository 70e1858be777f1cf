package models

import (
	"time"

	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// Task is a unit of work on a site, optionally given to a brigade.
type Task struct {
	ID                int64      `db:"id"`
	Name              string     `db:"name"`
	Description       *string    `db:"description"`
	SiteID            int64      `db:"site_id"`
	SiteName          string     `db:"site_name"`
	BrigadeID         *int64     `db:"brigade_id"`
	BrigadierName     *string    `db:"brigadier_name"`
	PeriodStart       time.Time  `db:"period_start"`
	ExpectedPeriodEnd time.Time  `db:"expected_period_end"`
	ActualPeriodEnd   *time.Time `db:"actual_period_end"`
	Status            Status     `db:"status"`
	DeadlineExceeded  bool       `db:"deadline_exceeded"`
}

// Progress reports elapsed days against the planned duration, capped at 100.
func (t Task) Progress(now time.Time) int {
	if t.ActualPeriodEnd != nil {
		return 100
	}
	total := t.ExpectedPeriodEnd.Sub(t.PeriodStart).Hours() / 24
	elapsed := now.Sub(t.PeriodStart).Hours() / 24
	if elapsed <= 0 {
		return 0
	}
	if total <= 0 || elapsed >= total {
		return 100
	}
	return int(elapsed * 100 / total)
}

// TaskListItem is a task list row.
type TaskListItem struct {
	ID                int64      `db:"id"`
	Name              string     `db:"name"`
	SiteID            int64      `db:"site_id"`
	SiteName          string     `db:"site_name"`
	BrigadeID         *int64     `db:"brigade_id"`
	BrigadierName     *string    `db:"brigadier_name"`
	PeriodStart       time.Time  `db:"period_start"`
	ExpectedPeriodEnd time.Time  `db:"expected_period_end"`
	ActualPeriodEnd   *time.Time `db:"actual_period_end"`
	Status            Status     `db:"status"`
	DeadlineExceeded  bool       `db:"deadline_exceeded"`
}

// TaskFilter narrows the task list. DateFrom and DateTo bound the planned period.
type TaskFilter struct {
	Name             optional.Value[string]    `form:"name"`
	SiteID           optional.Value[int64]     `form:"site_id"`
	BrigadeID        optional.Value[int64]     `form:"brigade_id"`
	Status           optional.Value[Status]    `form:"status"`
	DateFrom         optional.Value[time.Time] `form:"date_from"`
	DateTo           optional.Value[time.Time] `form:"date_to"`
	ExceededDeadline optional.Value[bool]      `form:"exceeded_deadline"`
}

var TaskTabs = []Tab{
	{Key: "materials", Label: "Materials"},
	{Key: "progress", Label: "Progress"},
}
