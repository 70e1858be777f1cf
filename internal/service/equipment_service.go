package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type equipmentRepository interface {
	List(ctx context.Context, filter models.EquipmentFilter, params models.ListParams) ([]models.EquipmentListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Equipment, error)
	Create(ctx context.Context, equipment *models.Equipment) error
	Update(ctx context.Context, equipment *models.Equipment) error
	Delete(ctx context.Context, id int64) error
	Allocations(ctx context.Context, filter models.AllocationFilter, params models.ListParams) ([]models.Allocation, int, error)
	Allocate(ctx context.Context, allocation *models.Allocation) error
	DeleteAllocation(ctx context.Context, equipmentID, allocationID int64) error
}

// EquipmentRequest is the equipment form.
type EquipmentRequest struct {
	Name         string                          `form:"name" validate:"required,max=200"`
	Amount       int                             `form:"amount" validate:"gte=0"`
	PurchaseDate optional.Value[time.Time]       `form:"purchase_date" validate:"required"`
	PurchaseCost optional.Value[decimal.Decimal] `form:"purchase_cost" validate:"present,gte=0"`
	FuelType     optional.Value[models.FuelType] `form:"fuel_type"`
}

// AllocationRequest is the allocation form of one equipment.
type AllocationRequest struct {
	DepartmentID int64                     `form:"department_id" validate:"required"`
	SiteID       optional.Value[int64]     `form:"site_id"`
	Amount       int                       `form:"amount" validate:"gt=0"`
	PeriodStart  optional.Value[time.Time] `form:"period_start" validate:"required"`
	PeriodEnd    optional.Value[time.Time] `form:"period_end"`
}

// EquipmentService handles equipment and allocation use-cases.
type EquipmentService struct {
	repo      equipmentRepository
	refs      referenceChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEquipmentService constructs the equipment service.
func NewEquipmentService(repo equipmentRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *EquipmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EquipmentService{repo: repo, refs: refs, validator: validate, logger: logger}
}

// List returns one page of equipment.
func (s *EquipmentService) List(ctx context.Context, filter models.EquipmentFilter, params models.ListParams) (models.ListResult[models.EquipmentListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "equipment")
}

// Get returns equipment details with the allocated amount.
func (s *EquipmentService) Get(ctx context.Context, id int64) (*models.Equipment, error) {
	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "equipment", "load")
	}
	return equipment, nil
}

func (req EquipmentRequest) equipment(id int64) *models.Equipment {
	date, _ := req.PurchaseDate.Get()
	cost, _ := req.PurchaseCost.Get()
	return &models.Equipment{
		ID:           id,
		Name:         req.Name,
		Amount:       req.Amount,
		PurchaseDate: date,
		PurchaseCost: cost,
		FuelType:     req.FuelType.Ptr(),
	}
}

// Create registers equipment.
func (s *EquipmentService) Create(ctx context.Context, req EquipmentRequest) (*models.Equipment, error) {
	if err := validate(s.validator, "equipment", &req); err != nil {
		return nil, err
	}
	equipment := req.equipment(0)
	if err := s.repo.Create(ctx, equipment); err != nil {
		s.logger.Error("create equipment", zap.Error(err))
		return nil, storeError(err, "equipment", "create")
	}
	return equipment, nil
}

// Update modifies equipment. The amount cannot drop below the allocated amount.
func (s *EquipmentService) Update(ctx context.Context, id int64, req EquipmentRequest) (*models.Equipment, error) {
	if err := validate(s.validator, "equipment", &req); err != nil {
		return nil, err
	}
	equipment := req.equipment(id)
	if err := s.repo.Update(ctx, equipment); err != nil {
		s.logger.Warn("update equipment", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "equipment", "update")
	}
	return equipment, nil
}

// Delete removes equipment without allocations.
func (s *EquipmentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete equipment", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "equipment", "delete")
	}
	return nil
}

// Allocations lists allocations matching the filter.
func (s *EquipmentService) Allocations(ctx context.Context, filter models.AllocationFilter, params models.ListParams) (models.ListResult[models.Allocation], error) {
	items, total, err := s.repo.Allocations(ctx, filter, params)
	return listResult(items, total, params, err, "allocations")
}

// Allocate hands some of the equipment to a department, optionally for one of its sites.
func (s *EquipmentService) Allocate(ctx context.Context, equipmentID int64, req AllocationRequest) (*models.Allocation, error) {
	if err := validate(s.validator, "allocation", &req); err != nil {
		return nil, err
	}
	start, _ := req.PeriodStart.Get()
	if end, ok := req.PeriodEnd.Get(); ok && end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid allocation: period_end must not be before period_start")
	}
	if err := requireRef(ctx, s.refs, repository.TableEquipment, "equipment", equipmentID); err != nil {
		return nil, err
	}
	if err := requireRef(ctx, s.refs, repository.TableDepartment, "department", req.DepartmentID); err != nil {
		return nil, err
	}
	if err := requireOptionalRef(ctx, s.refs, repository.TableSite, "site", req.SiteID); err != nil {
		return nil, err
	}
	allocation := &models.Allocation{
		EquipmentID:  equipmentID,
		DepartmentID: req.DepartmentID,
		SiteID:       req.SiteID.Ptr(),
		Amount:       req.Amount,
		PeriodStart:  start,
		PeriodEnd:    req.PeriodEnd.Ptr(),
	}
	if err := s.repo.Allocate(ctx, allocation); err != nil {
		s.logger.Warn("allocate equipment", zap.Int64("id", equipmentID), zap.Int("amount", req.Amount), zap.Error(err))
		return nil, storeError(err, "equipment", "allocate")
	}
	return allocation, nil
}

// DeleteAllocation removes one allocation of the equipment.
func (s *EquipmentService) DeleteAllocation(ctx context.Context, equipmentID, allocationID int64) error {
	if err := s.repo.DeleteAllocation(ctx, equipmentID, allocationID); err != nil {
		s.logger.Warn("delete allocation", zap.Int64("id", equipmentID), zap.Int64("allocation_id", allocationID), zap.Error(err))
		return storeError(err, "allocation", "delete")
	}
	return nil
}
