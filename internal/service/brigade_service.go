package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
)

type brigadeRepository interface {
	List(ctx context.Context, filter models.BrigadeFilter, params models.ListParams) ([]models.BrigadeListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Brigade, error)
	Create(ctx context.Context, brigade *models.Brigade) error
	Update(ctx context.Context, brigade *models.Brigade) error
	Delete(ctx context.Context, id int64) error
	AddWorker(ctx context.Context, brigadeID, workerID int64) error
	RemoveWorker(ctx context.Context, brigadeID, workerID int64) error
}

// BrigadeRequest is the brigade form.
type BrigadeRequest struct {
	BrigadierID int64 `form:"brigadier_id" validate:"required"`
}

// BrigadeWorkerRequest names a worker to add to a brigade.
type BrigadeWorkerRequest struct {
	WorkerID int64 `form:"worker_id" validate:"required"`
}

// BrigadeService handles brigade use-cases.
type BrigadeService struct {
	repo      brigadeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBrigadeService constructs the brigade service.
func NewBrigadeService(repo brigadeRepository, validate *validator.Validate, logger *zap.Logger) *BrigadeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrigadeService{repo: repo, validator: validate, logger: logger}
}

// List returns one page of brigades.
func (s *BrigadeService) List(ctx context.Context, filter models.BrigadeFilter, params models.ListParams) (models.ListResult[models.BrigadeListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "brigades")
}

// Get returns brigade details.
func (s *BrigadeService) Get(ctx context.Context, id int64) (*models.Brigade, error) {
	brigade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "brigade", "load")
	}
	return brigade, nil
}

// Create forms a brigade around a worker who leads no other brigade.
func (s *BrigadeService) Create(ctx context.Context, req BrigadeRequest) (*models.Brigade, error) {
	if err := validate(s.validator, "brigade", &req); err != nil {
		return nil, err
	}
	brigade := &models.Brigade{BrigadierID: req.BrigadierID}
	if err := s.repo.Create(ctx, brigade); err != nil {
		s.logger.Error("create brigade", zap.Int64("brigadier_id", req.BrigadierID), zap.Error(err))
		return nil, storeError(err, "brigade", "create")
	}
	return brigade, nil
}

// Update hands the brigade to another brigadier.
func (s *BrigadeService) Update(ctx context.Context, id int64, req BrigadeRequest) (*models.Brigade, error) {
	if err := validate(s.validator, "brigade", &req); err != nil {
		return nil, err
	}
	brigade := &models.Brigade{ID: id, BrigadierID: req.BrigadierID}
	if err := s.repo.Update(ctx, brigade); err != nil {
		s.logger.Warn("update brigade", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "brigade", "update")
	}
	return brigade, nil
}

// Delete removes a brigade without active tasks.
func (s *BrigadeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete brigade", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "brigade", "delete")
	}
	return nil
}

// AddWorker assigns an unassigned worker to the brigade.
func (s *BrigadeService) AddWorker(ctx context.Context, id int64, req BrigadeWorkerRequest) error {
	if err := validate(s.validator, "brigade member", &req); err != nil {
		return err
	}
	if err := s.repo.AddWorker(ctx, id, req.WorkerID); err != nil {
		s.logger.Warn("add brigade worker", zap.Int64("id", id), zap.Int64("worker_id", req.WorkerID), zap.Error(err))
		return storeError(err, "brigade", "add worker to")
	}
	return nil
}

// RemoveWorker releases a member who is not the brigadier.
func (s *BrigadeService) RemoveWorker(ctx context.Context, id, workerID int64) error {
	if err := s.repo.RemoveWorker(ctx, id, workerID); err != nil {
		s.logger.Warn("remove brigade worker", zap.Int64("id", id), zap.Int64("worker_id", workerID), zap.Error(err))
		return storeError(err, "brigade member", "remove")
	}
	return nil
}
