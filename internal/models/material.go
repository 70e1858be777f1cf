package models

import (
	"github.com/shopspring/decimal"

	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// Material is a consumable priced per unit.
type Material struct {
	ID                 int64           `db:"id"`
	Name               string          `db:"name"`
	Cost               decimal.Decimal `db:"cost"`
	Units              string          `db:"units"`
	EstimatedSpendings decimal.Decimal `db:"estimated_spendings"`
	ActualSpendings    decimal.Decimal `db:"actual_spendings"`
	UsageCount         int             `db:"usage_count"`
}

// MaterialListItem is a material list row.
type MaterialListItem struct {
	ID                 int64           `db:"id"`
	Name               string          `db:"name"`
	Cost               decimal.Decimal `db:"cost"`
	Units              string          `db:"units"`
	EstimatedSpendings decimal.Decimal `db:"estimated_spendings"`
	ActualSpendings    decimal.Decimal `db:"actual_spendings"`
	Excess             bool            `db:"excess"`
}

// MaterialFilter narrows the material list. ExcessUsage matches materials
// whose actual spendings exceed the estimate.
type MaterialFilter struct {
	Name        optional.Value[string]          `form:"name"`
	CostMin     optional.Value[decimal.Decimal] `form:"cost_min"`
	CostMax     optional.Value[decimal.Decimal] `form:"cost_max"`
	ExcessUsage optional.Value[bool]            `form:"excess_usage"`
}

// Expenditure is a material planned for and consumed by a task.
type Expenditure struct {
	TaskID         int64               `db:"task_id"`
	TaskName       string              `db:"task_name"`
	SiteID         int64               `db:"site_id"`
	SiteName       string              `db:"site_name"`
	MaterialID     int64               `db:"material_id"`
	MaterialName   string              `db:"material_name"`
	Units          string              `db:"units"`
	Cost           decimal.Decimal     `db:"cost"`
	ExpectedAmount decimal.Decimal     `db:"expected_amount"`
	ActualAmount   decimal.NullDecimal `db:"actual_amount"`
	ExcessAmount   decimal.Decimal     `db:"excess_amount"`
	TotalCost      decimal.Decimal     `db:"total_cost"`
}

// ExpenditureFilter selects expenditures of one task or one material.
type ExpenditureFilter struct {
	TaskID     optional.Value[int64] `form:"task_id"`
	MaterialID optional.Value[int64] `form:"material_id"`
}

var MaterialTabs = []Tab{
	{Key: "usage", Label: "Usage"},
}
