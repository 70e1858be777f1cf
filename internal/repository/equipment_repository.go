package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const (
	currentAllocation = "(ea.period_end IS NULL OR ea.period_end >= CURRENT_DATE)"

	// allocatedAmount sums current allocations of equipment eqp.
	allocatedAmount = "(SELECT COALESCE(SUM(ea.amount), 0) FROM equipment_allocation ea WHERE ea.equipment_id = eqp.id AND " + currentAllocation + ")"
)

// EquipmentRepository manages equipment and its allocations.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository constructs an EquipmentRepository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func equipmentListQuery(filter models.EquipmentFilter) listQuery {
	q := listQuery{
		name: "equipment",
		columns: []string{
			"eqp.id", "eqp.name", "eqp.amount AS total_amount",
			"eqp.amount - " + allocatedAmount + " AS available_amount",
			"eqp.purchase_date", "eqp.purchase_cost",
		},
		from: "equipment eqp",
		sorts: map[string]string{
			"name":             "eqp.name",
			"amount":           "eqp.amount",
			"available_amount": "available_amount",
			"purchase_date":    "eqp.purchase_date",
			"purchase_cost":    "eqp.purchase_cost",
		},
		key: "eqp.id",
	}
	q.filter(contains("eqp.name", filter.Name))
	if departmentID, ok := filter.DepartmentID.Get(); ok {
		q.filter(squirrel.Expr("EXISTS (SELECT 1 FROM equipment_allocation ea WHERE ea.equipment_id = eqp.id AND ea.department_id = ? AND "+currentAllocation+")", departmentID))
	}
	if siteID, ok := filter.SiteID.Get(); ok {
		q.filter(squirrel.Expr("EXISTS (SELECT 1 FROM equipment_allocation ea WHERE ea.equipment_id = eqp.id AND ea.site_id = ? AND "+currentAllocation+")", siteID))
	}
	q.filter(when(allocatedAmount+" < eqp.amount", filter.Available))
	return q
}

// List returns equipment matching the filter.
func (r *EquipmentRepository) List(ctx context.Context, filter models.EquipmentFilter, params models.ListParams) ([]models.EquipmentListItem, int, error) {
	return runList[models.EquipmentListItem](ctx, r.db, equipmentListQuery(filter), params)
}

// FindByID fetches equipment with its currently allocated amount.
func (r *EquipmentRepository) FindByID(ctx context.Context, id int64) (*models.Equipment, error) {
	query := `SELECT eqp.id, eqp.name, eqp.amount, ` + allocatedAmount + ` AS allocated_amount,
        eqp.purchase_date, eqp.purchase_cost, eqp.fuel_type
        FROM equipment eqp WHERE eqp.id = $1`
	var equipment models.Equipment
	if err := r.db.GetContext(ctx, &equipment, query, id); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// Create inserts equipment and sets its id.
func (r *EquipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	const query = `INSERT INTO equipment (name, amount, purchase_date, purchase_cost, fuel_type)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &equipment.ID, query,
		equipment.Name, equipment.Amount, equipment.PurchaseDate, equipment.PurchaseCost, equipment.FuelType); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

func lockedAllocated(ctx context.Context, tx *sqlx.Tx, id int64) (amount, allocated int, err error) {
	if err = tx.GetContext(ctx, &amount, `SELECT amount FROM equipment WHERE id = $1 FOR UPDATE`, id); err != nil {
		return 0, 0, fmt.Errorf("lock equipment: %w", err)
	}
	allocated, err = count(ctx, tx,
		`SELECT COALESCE(SUM(ea.amount), 0) FROM equipment_allocation ea WHERE ea.equipment_id = $1 AND `+currentAllocation, id)
	if err != nil {
		return 0, 0, fmt.Errorf("sum allocations: %w", err)
	}
	return amount, allocated, nil
}

// Update modifies equipment. The amount cannot drop below what is allocated.
func (r *EquipmentRepository) Update(ctx context.Context, equipment *models.Equipment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin equipment update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, allocated, err := lockedAllocated(ctx, tx, equipment.ID)
	if err != nil {
		return err
	}
	if equipment.Amount < allocated {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("Cannot set amount less than allocated amount (%d)", allocated))
	}
	const query = `UPDATE equipment SET name = $1, amount = $2, purchase_date = $3, purchase_cost = $4, fuel_type = $5 WHERE id = $6`
	if _, err = tx.ExecContext(ctx, query,
		equipment.Name, equipment.Amount, equipment.PurchaseDate, equipment.PurchaseCost, equipment.FuelType, equipment.ID); err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit equipment update: %w", err)
	}
	equipment.AllocatedAmount = allocated
	return nil
}

// Delete removes equipment that has never been allocated.
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin equipment delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockRow(ctx, tx, "equipment", id); err != nil {
		return err
	}
	allocations, err := count(ctx, tx, `SELECT COUNT(*) FROM equipment_allocation WHERE equipment_id = $1`, id)
	if err != nil {
		return fmt.Errorf("count equipment allocations: %w", err)
	}
	if allocations > 0 {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("Cannot delete equipment: it has %d allocations. Remove allocations first.", allocations))
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit equipment delete: %w", err)
	}
	return nil
}

func allocationListQuery(filter models.AllocationFilter) listQuery {
	q := listQuery{
		name: "allocations",
		columns: []string{
			"ea.id", "ea.equipment_id", "eqp.name AS equipment_name",
			"ea.department_id", "d.name AS department_name",
			"ea.site_id", "s.name AS site_name",
			"ea.amount", "ea.period_start", "ea.period_end",
			currentAllocation + " AS is_current",
		},
		from: "equipment_allocation ea",
		joins: []string{
			"JOIN equipment eqp ON eqp.id = ea.equipment_id",
			"JOIN department d ON d.id = ea.department_id",
			"LEFT JOIN site s ON s.id = ea.site_id",
		},
		sorts: map[string]string{
			"equipment_name":  "eqp.name",
			"department_name": "d.name",
			"site_name":       "s.name",
			"amount":          "ea.amount",
			"period_start":    "ea.period_start",
			"period_end":      "ea.period_end",
		},
		key: "ea.id",
	}
	q.filter(eq("ea.equipment_id", filter.EquipmentID))
	q.filter(eq("ea.department_id", filter.DepartmentID))
	q.filter(eq("ea.site_id", filter.SiteID))
	q.filter(when(currentAllocation, filter.CurrentOnly))
	return q
}

// Allocations lists allocations matching the filter.
func (r *EquipmentRepository) Allocations(ctx context.Context, filter models.AllocationFilter, params models.ListParams) ([]models.Allocation, int, error) {
	return runList[models.Allocation](ctx, r.db, allocationListQuery(filter), params)
}

// Allocate records an allocation if enough equipment is available.
func (r *EquipmentRepository) Allocate(ctx context.Context, allocation *models.Allocation) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin allocation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	amount, allocated, err := lockedAllocated(ctx, tx, allocation.EquipmentID)
	if err != nil {
		return err
	}
	if available := amount - allocated; allocation.Amount > available {
		return appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("Not enough available equipment. Available: %d, Requested: %d", available, allocation.Amount))
	}
	const query = `INSERT INTO equipment_allocation (equipment_id, department_id, site_id, amount, period_start, period_end)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err = tx.GetContext(ctx, &allocation.ID, query,
		allocation.EquipmentID, allocation.DepartmentID, allocation.SiteID, allocation.Amount,
		allocation.PeriodStart, allocation.PeriodEnd); err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	return nil
}

// DeleteAllocation removes one allocation of the equipment.
func (r *EquipmentRepository) DeleteAllocation(ctx context.Context, equipmentID, allocationID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment_allocation WHERE id = $1 AND equipment_id = $2`, allocationID, equipmentID)
	if err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	return requireAffected(res)
}
