package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// Equipment is a pool of identical machines shared through allocations.
type Equipment struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	Amount          int             `db:"amount"`
	AllocatedAmount int             `db:"allocated_amount"`
	PurchaseDate    time.Time       `db:"purchase_date"`
	PurchaseCost    decimal.Decimal `db:"purchase_cost"`
	FuelType        *FuelType       `db:"fuel_type"`
}

// AvailableAmount is what can still be allocated.
func (e Equipment) AvailableAmount() int {
	return e.Amount - e.AllocatedAmount
}

// EquipmentListItem is an equipment list row.
type EquipmentListItem struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	TotalAmount     int             `db:"total_amount"`
	AvailableAmount int             `db:"available_amount"`
	PurchaseDate    time.Time       `db:"purchase_date"`
	PurchaseCost    decimal.Decimal `db:"purchase_cost"`
}

// EquipmentFilter narrows the equipment list. DepartmentID and SiteID match
// equipment with a current allocation there.
type EquipmentFilter struct {
	Name         optional.Value[string] `form:"name"`
	DepartmentID optional.Value[int64]  `form:"department_id"`
	SiteID       optional.Value[int64]  `form:"site_id"`
	Available    optional.Value[bool]   `form:"available"`
}

// Allocation hands some amount of equipment to a department, optionally for a site.
type Allocation struct {
	ID             int64      `db:"id"`
	EquipmentID    int64      `db:"equipment_id"`
	EquipmentName  string     `db:"equipment_name"`
	DepartmentID   int64      `db:"department_id"`
	DepartmentName string     `db:"department_name"`
	SiteID         *int64     `db:"site_id"`
	SiteName       *string    `db:"site_name"`
	Amount         int        `db:"amount"`
	PeriodStart    time.Time  `db:"period_start"`
	PeriodEnd      *time.Time `db:"period_end"`
	IsCurrent      bool       `db:"is_current"`
}

// AllocationFilter selects allocations of one equipment, department or site.
type AllocationFilter struct {
	EquipmentID  optional.Value[int64] `form:"equipment_id"`
	DepartmentID optional.Value[int64] `form:"department_id"`
	SiteID       optional.Value[int64] `form:"site_id"`
	CurrentOnly  optional.Value[bool]  `form:"current_only"`
}

var EquipmentTabs = []Tab{
	{Key: "allocations", Label: "Allocations"},
}
