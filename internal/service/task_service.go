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

type taskRepository interface {
	List(ctx context.Context, filter models.TaskFilter, params models.ListParams) ([]models.TaskListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Complete(ctx context.Context, id int64, end time.Time) error
	Delete(ctx context.Context, id int64) error
}

// TaskRequest is the task form.
type TaskRequest struct {
	Name              string                    `form:"name" validate:"required,max=200"`
	Description       optional.Value[string]    `form:"description" validate:"omitempty,max=2000"`
	SiteID            int64                     `form:"site_id" validate:"required"`
	BrigadeID         optional.Value[int64]     `form:"brigade_id"`
	PeriodStart       optional.Value[time.Time] `form:"period_start" validate:"required"`
	ExpectedPeriodEnd optional.Value[time.Time] `form:"expected_period_end" validate:"required"`
}

// TaskMaterialRequest plans a material for a task.
type TaskMaterialRequest struct {
	MaterialID     int64                           `form:"material_id" validate:"required"`
	ExpectedAmount optional.Value[decimal.Decimal] `form:"expected_amount" validate:"present,gt=0"`
}

// ActualAmountRequest records the amount of a material actually used.
type ActualAmountRequest struct {
	ActualAmount optional.Value[decimal.Decimal] `form:"actual_amount" validate:"present,gte=0"`
}

// CompleteTaskRequest closes a task.
type CompleteTaskRequest struct {
	ActualPeriodEnd optional.Value[time.Time] `form:"actual_period_end" validate:"required"`
}

// TaskService handles task and task material use-cases.
type TaskService struct {
	repo         taskRepository
	expenditures expenditureRepository
	refs         referenceChecker
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTaskService constructs the task service.
func NewTaskService(repo taskRepository, expenditures expenditureRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{repo: repo, expenditures: expenditures, refs: refs, validator: validate, logger: logger}
}

// List returns one page of tasks.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter, params models.ListParams) (models.ListResult[models.TaskListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "tasks")
}

// Get returns task details.
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "task", "load")
	}
	return task, nil
}

func (s *TaskService) check(ctx context.Context, req TaskRequest) error {
	if err := validate(s.validator, "task", &req); err != nil {
		return err
	}
	start, _ := req.PeriodStart.Get()
	end, _ := req.ExpectedPeriodEnd.Get()
	if end.Before(start) {
		return appErrors.Clone(appErrors.ErrValidation, "Invalid task: expected_period_end must not be before period_start")
	}
	if err := requireRef(ctx, s.refs, repository.TableSite, "site", req.SiteID); err != nil {
		return err
	}
	return requireOptionalRef(ctx, s.refs, repository.TableBrigade, "brigade", req.BrigadeID)
}

func (req TaskRequest) task(id int64) *models.Task {
	start, _ := req.PeriodStart.Get()
	end, _ := req.ExpectedPeriodEnd.Get()
	return &models.Task{
		ID:                id,
		Name:              req.Name,
		Description:       req.Description.Ptr(),
		SiteID:            req.SiteID,
		BrigadeID:         req.BrigadeID.Ptr(),
		PeriodStart:       start,
		ExpectedPeriodEnd: end,
	}
}

// Create registers a task.
func (s *TaskService) Create(ctx context.Context, req TaskRequest) (*models.Task, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	task := req.task(0)
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("create task", zap.Error(err))
		return nil, storeError(err, "task", "create")
	}
	return task, nil
}

// Update modifies a task.
func (s *TaskService) Update(ctx context.Context, id int64, req TaskRequest) (*models.Task, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	task := req.task(id)
	if err := s.repo.Update(ctx, task); err != nil {
		s.logger.Warn("update task", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "task", "update")
	}
	return task, nil
}

// Delete removes a task and its planned materials.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete task", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "task", "delete")
	}
	return nil
}

// Complete records the actual end of a task. It cannot precede the start.
func (s *TaskService) Complete(ctx context.Context, id int64, req CompleteTaskRequest) (*models.Task, error) {
	if err := validate(s.validator, "task completion", &req); err != nil {
		return nil, err
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	end, _ := req.ActualPeriodEnd.Get()
	if end.Before(task.PeriodStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid task completion: actual_period_end must not be before period_start")
	}
	if err := s.repo.Complete(ctx, id, end); err != nil {
		s.logger.Warn("complete task", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "task", "complete")
	}
	task.ActualPeriodEnd = &end
	task.Status = models.StatusCompleted
	return task, nil
}

// Materials lists the materials planned for a task.
func (s *TaskService) Materials(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.Expenditure], error) {
	items, total, err := s.expenditures.List(ctx, models.ExpenditureFilter{TaskID: optional.Some(id)}, params)
	return listResult(items, total, params, err, "task materials")
}

// AddMaterial plans a material for a task. Each material appears once per task.
func (s *TaskService) AddMaterial(ctx context.Context, id int64, req TaskMaterialRequest) error {
	if err := validate(s.validator, "task material", &req); err != nil {
		return err
	}
	if err := requireRef(ctx, s.refs, repository.TableTask, "task", id); err != nil {
		return err
	}
	if err := requireRef(ctx, s.refs, repository.TableMaterial, "material", req.MaterialID); err != nil {
		return err
	}
	expected, _ := req.ExpectedAmount.Get()
	if err := s.expenditures.Add(ctx, id, req.MaterialID, expected); err != nil {
		s.logger.Warn("add task material", zap.Int64("id", id), zap.Int64("material_id", req.MaterialID), zap.Error(err))
		return storeError(err, "task material", "add")
	}
	return nil
}

// SetActualAmount records how much of a planned material was used.
func (s *TaskService) SetActualAmount(ctx context.Context, id, materialID int64, req ActualAmountRequest) error {
	if err := validate(s.validator, "task material", &req); err != nil {
		return err
	}
	actual, _ := req.ActualAmount.Get()
	if err := s.expenditures.SetActual(ctx, id, materialID, actual); err != nil {
		s.logger.Warn("set actual amount", zap.Int64("id", id), zap.Int64("material_id", materialID), zap.Error(err))
		return storeError(err, "task material", "update")
	}
	return nil
}
