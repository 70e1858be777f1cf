package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type areaRepository interface {
	List(ctx context.Context, filter models.AreaFilter, params models.ListParams) ([]models.AreaListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Area, error)
	Create(ctx context.Context, area *models.Area) error
	Update(ctx context.Context, area *models.Area) error
	Delete(ctx context.Context, id int64) error
}

// AreaRequest is the area form.
type AreaRequest struct {
	Name         string                `form:"name" validate:"required,max=200"`
	DepartmentID int64                 `form:"department_id" validate:"required"`
	SupervisorID optional.Value[int64] `form:"supervisor_id"`
}

// AreaService handles area use-cases.
type AreaService struct {
	repo      areaRepository
	refs      referenceChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAreaService constructs the area service.
func NewAreaService(repo areaRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *AreaService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AreaService{repo: repo, refs: refs, validator: validate, logger: logger}
}

// List returns one page of areas.
func (s *AreaService) List(ctx context.Context, filter models.AreaFilter, params models.ListParams) (models.ListResult[models.AreaListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "areas")
}

// Get returns area details.
func (s *AreaService) Get(ctx context.Context, id int64) (*models.Area, error) {
	area, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "area", "load")
	}
	return area, nil
}

func (s *AreaService) check(ctx context.Context, req AreaRequest) error {
	if err := validate(s.validator, "area", &req); err != nil {
		return err
	}
	if err := requireRef(ctx, s.refs, repository.TableDepartment, "department", req.DepartmentID); err != nil {
		return err
	}
	return requireOptionalRef(ctx, s.refs, repository.TableTechnicalPersonnel, "supervisor", req.SupervisorID)
}

func (req AreaRequest) area(id int64) *models.Area {
	return &models.Area{ID: id, Name: req.Name, DepartmentID: req.DepartmentID, SupervisorID: req.SupervisorID.Ptr()}
}

// Create registers an area.
func (s *AreaService) Create(ctx context.Context, req AreaRequest) (*models.Area, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	area := req.area(0)
	if err := s.repo.Create(ctx, area); err != nil {
		s.logger.Error("create area", zap.Error(err))
		return nil, storeError(err, "area", "create")
	}
	return area, nil
}

// Update modifies an area.
func (s *AreaService) Update(ctx context.Context, id int64, req AreaRequest) (*models.Area, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	area := req.area(id)
	if err := s.repo.Update(ctx, area); err != nil {
		s.logger.Warn("update area", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "area", "update")
	}
	return area, nil
}

// Delete removes an area without sites.
func (s *AreaService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete area", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "area", "delete")
	}
	return nil
}
