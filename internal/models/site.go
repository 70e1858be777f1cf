package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// Site is a construction site with its type-specific fields.
type Site struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	Type           SiteType  `db:"type"`
	AreaID         int64     `db:"area_id"`
	AreaName       string    `db:"area_name"`
	DepartmentID   int64     `db:"department_id"`
	DepartmentName string    `db:"department_name"`
	ClientID       int64     `db:"client_id"`
	ClientName     string    `db:"client_name"`
	Location       string    `db:"location"`
	RiskLevel      RiskLevel `db:"risk_level"`
	Description    *string   `db:"description"`
	Status         Status    `db:"status"`
	TaskCount      int       `db:"task_count"`

	Fields SiteFields `db:"-"`
}

// SiteListItem is a site list row.
type SiteListItem struct {
	ID             int64    `db:"id"`
	Name           string   `db:"name"`
	Type           SiteType `db:"type"`
	AreaID         int64    `db:"area_id"`
	AreaName       string   `db:"area_name"`
	DepartmentID   int64    `db:"department_id"`
	DepartmentName string   `db:"department_name"`
	ClientID       int64    `db:"client_id"`
	ClientName     string   `db:"client_name"`
	Status         Status   `db:"status"`
}

// SiteFilter narrows the site list.
type SiteFilter struct {
	Name         optional.Value[string]   `form:"name"`
	AreaID       optional.Value[int64]    `form:"area_id"`
	DepartmentID optional.Value[int64]    `form:"department_id"`
	ClientID     optional.Value[int64]    `form:"client_id"`
	Type         optional.Value[SiteType] `form:"type"`
	Status       optional.Value[Status]   `form:"status"`
}

// SiteMaterial aggregates material expenditures over a site's tasks.
type SiteMaterial struct {
	ID             int64               `db:"id"`
	Name           string              `db:"name"`
	Units          string              `db:"units"`
	Cost           decimal.Decimal     `db:"cost"`
	ExpectedAmount decimal.Decimal     `db:"expected_amount"`
	ActualAmount   decimal.NullDecimal `db:"actual_amount"`
	TotalCost      decimal.Decimal     `db:"total_cost"`
}

// SiteReport is one row of the site delay report.
type SiteReport struct {
	TaskID            int64      `db:"task_id"`
	TaskName          string     `db:"task_name"`
	PeriodStart       time.Time  `db:"period_start"`
	ExpectedPeriodEnd time.Time  `db:"expected_period_end"`
	ActualPeriodEnd   *time.Time `db:"actual_period_end"`
	DelayDays         int        `db:"delay_days"`
}

var SiteTabs = []Tab{
	{Key: "schedule", Label: "Schedule"},
	{Key: "materials", Label: "Materials"},
	{Key: "equipment", Label: "Equipment"},
	{Key: "brigades", Label: "Brigades"},
	{Key: "reports", Label: "Reports"},
}
