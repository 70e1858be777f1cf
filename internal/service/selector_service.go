package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const defaultSelectorLimit = 50

type selectorRepository interface {
	Options(ctx context.Context, name string, filter models.SelectorFilter, limit int) ([]models.SelectorOption, error)
}

// SelectorService serves dropdown options for forms and filters.
type SelectorService struct {
	repo   selectorRepository
	known  func(name string) bool
	limit  int
	logger *zap.Logger
}

// NewSelectorService constructs the selector service. known reports whether
// a selector name exists; limit caps the number of options returned.
func NewSelectorService(repo selectorRepository, known func(string) bool, limit int, logger *zap.Logger) *SelectorService {
	if limit <= 0 {
		limit = defaultSelectorLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectorService{repo: repo, known: known, limit: limit, logger: logger}
}

// Options returns the options of the named selector.
func (s *SelectorService) Options(ctx context.Context, name string, filter models.SelectorFilter) ([]models.SelectorOption, error) {
	if s.known != nil && !s.known(name) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Selector %q not found", name))
	}
	options, err := s.repo.Options(ctx, name, filter, s.limit)
	if err != nil {
		s.logger.Error("load selector", zap.String("selector", name), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to load "+name+" options")
	}
	return options, nil
}
