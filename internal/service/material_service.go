package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type materialRepository interface {
	List(ctx context.Context, filter models.MaterialFilter, params models.ListParams) ([]models.MaterialListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id int64) error
}

type expenditureRepository interface {
	List(ctx context.Context, filter models.ExpenditureFilter, params models.ListParams) ([]models.Expenditure, int, error)
	Add(ctx context.Context, taskID, materialID int64, expected decimal.Decimal) error
	SetActual(ctx context.Context, taskID, materialID int64, actual decimal.Decimal) error
}

// MaterialRequest is the material form.
type MaterialRequest struct {
	Name  string                          `form:"name" validate:"required,max=200"`
	Cost  optional.Value[decimal.Decimal] `form:"cost" validate:"present,gte=0"`
	Units string                          `form:"units" validate:"required,max=50"`
}

// MaterialService handles material use-cases.
type MaterialService struct {
	repo         materialRepository
	expenditures expenditureRepository
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewMaterialService constructs the material service.
func NewMaterialService(repo materialRepository, expenditures expenditureRepository, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{repo: repo, expenditures: expenditures, validator: validate, logger: logger}
}

// List returns one page of materials.
func (s *MaterialService) List(ctx context.Context, filter models.MaterialFilter, params models.ListParams) (models.ListResult[models.MaterialListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "materials")
}

// Get returns material details with its spendings.
func (s *MaterialService) Get(ctx context.Context, id int64) (*models.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "material", "load")
	}
	return material, nil
}

func (req MaterialRequest) material(id int64) *models.Material {
	cost, _ := req.Cost.Get()
	return &models.Material{ID: id, Name: req.Name, Cost: cost, Units: req.Units}
}

// Create registers a material.
func (s *MaterialService) Create(ctx context.Context, req MaterialRequest) (*models.Material, error) {
	if err := validate(s.validator, "material", &req); err != nil {
		return nil, err
	}
	material := req.material(0)
	if err := s.repo.Create(ctx, material); err != nil {
		s.logger.Error("create material", zap.Error(err))
		return nil, storeError(err, "material", "create")
	}
	return material, nil
}

// Update modifies a material.
func (s *MaterialService) Update(ctx context.Context, id int64, req MaterialRequest) (*models.Material, error) {
	if err := validate(s.validator, "material", &req); err != nil {
		return nil, err
	}
	material := req.material(id)
	if err := s.repo.Update(ctx, material); err != nil {
		s.logger.Warn("update material", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "material", "update")
	}
	return material, nil
}

// Delete removes a material no task uses.
func (s *MaterialService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete material", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "material", "delete")
	}
	return nil
}

// Usage lists the tasks a material is planned for.
func (s *MaterialService) Usage(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.Expenditure], error) {
	items, total, err := s.expenditures.List(ctx, models.ExpenditureFilter{MaterialID: optional.Some(id)}, params)
	return listResult(items, total, params, err, "material usage")
}
