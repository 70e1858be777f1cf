package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type workerRepository interface {
	List(ctx context.Context, filter models.WorkerFilter, params models.ListParams) ([]models.WorkerListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Worker, error)
	Create(ctx context.Context, worker *models.Worker) error
	Update(ctx context.Context, worker *models.Worker) error
	Delete(ctx context.Context, id int64) error
}

// WorkerRequest is the worker form.
type WorkerRequest struct {
	EmployeeRequest
	Profession models.Profession      `form:"profession" validate:"required"`
	UnionName  optional.Value[string] `form:"union_name" validate:"omitempty,max=200"`
	BrigadeID  optional.Value[int64]  `form:"brigade_id"`

	Fields models.ProfessionFields `form:"-" validate:"-"`
}

// WorkerService handles worker use-cases.
type WorkerService struct {
	repo      workerRepository
	refs      referenceChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkerService constructs the worker service.
func NewWorkerService(repo workerRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *WorkerService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerService{repo: repo, refs: refs, validator: validate, logger: logger}
}

// List returns one page of workers.
func (s *WorkerService) List(ctx context.Context, filter models.WorkerFilter, params models.ListParams) (models.ListResult[models.WorkerListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "workers")
}

// Get returns the worker with the profession-specific fields.
func (s *WorkerService) Get(ctx context.Context, id int64) (*models.Worker, error) {
	worker, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "worker", "load")
	}
	return worker, nil
}

func (s *WorkerService) check(ctx context.Context, req WorkerRequest) error {
	if err := validate(s.validator, "worker", &req, req.Fields); err != nil {
		return err
	}
	if req.Fields.Profession() != req.Profession {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid worker: fields of %s submitted for profession %s",
			req.Fields.Profession().Label(), req.Profession.Label()))
	}
	return requireOptionalRef(ctx, s.refs, repository.TableBrigade, "brigade", req.BrigadeID)
}

func (req WorkerRequest) worker(id int64) *models.Worker {
	return &models.Worker{
		Employee:   req.EmployeeRequest.employee(id),
		Profession: req.Profession,
		UnionName:  req.UnionName.Ptr(),
		BrigadeID:  req.BrigadeID.Ptr(),
		Fields:     req.Fields,
	}
}

// Create registers a worker, the profession-specific row and the optional brigade assignment.
func (s *WorkerService) Create(ctx context.Context, req WorkerRequest) (*models.Worker, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	worker := req.worker(0)
	if err := s.repo.Create(ctx, worker); err != nil {
		s.logger.Error("create worker", zap.String("profession", string(req.Profession)), zap.Error(err))
		return nil, storeError(err, "worker", "create")
	}
	return worker, nil
}

// Update modifies a worker. A brigadier cannot be moved to another brigade.
func (s *WorkerService) Update(ctx context.Context, id int64, req WorkerRequest) (*models.Worker, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	worker := req.worker(id)
	if err := s.repo.Update(ctx, worker); err != nil {
		s.logger.Warn("update worker", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "worker", "update")
	}
	return worker, nil
}

// Delete removes a worker who leads no brigade.
func (s *WorkerService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete worker", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "worker", "delete")
	}
	return nil
}
