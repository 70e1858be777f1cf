package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter, params models.ListParams) ([]models.DepartmentListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
}

// DepartmentRequest is the department form.
type DepartmentRequest struct {
	Name         string                `form:"name" validate:"required,max=200"`
	SupervisorID optional.Value[int64] `form:"supervisor_id"`
}

// DepartmentService handles department use-cases.
type DepartmentService struct {
	repo      departmentRepository
	refs      referenceChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs the department service.
func NewDepartmentService(repo departmentRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, refs: refs, validator: validate, logger: logger}
}

// List returns one page of departments.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter, params models.ListParams) (models.ListResult[models.DepartmentListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "departments")
}

// Get returns department details.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "department", "load")
	}
	return department, nil
}

func (s *DepartmentService) check(ctx context.Context, req DepartmentRequest) error {
	if err := validate(s.validator, "department", &req); err != nil {
		return err
	}
	return requireOptionalRef(ctx, s.refs, repository.TableTechnicalPersonnel, "supervisor", req.SupervisorID)
}

// Create registers a department.
func (s *DepartmentService) Create(ctx context.Context, req DepartmentRequest) (*models.Department, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	department := &models.Department{Name: req.Name, SupervisorID: req.SupervisorID.Ptr()}
	if err := s.repo.Create(ctx, department); err != nil {
		s.logger.Error("create department", zap.Error(err))
		return nil, storeError(err, "department", "create")
	}
	return department, nil
}

// Update modifies a department.
func (s *DepartmentService) Update(ctx context.Context, id int64, req DepartmentRequest) (*models.Department, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	department := &models.Department{ID: id, Name: req.Name, SupervisorID: req.SupervisorID.Ptr()}
	if err := s.repo.Update(ctx, department); err != nil {
		s.logger.Warn("update department", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "department", "update")
	}
	return department, nil
}

// Delete removes a department that has no areas and no allocations.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete department", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "department", "delete")
	}
	return nil
}
