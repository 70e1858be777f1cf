package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type technicalPersonnelRepository interface {
	List(ctx context.Context, filter models.TechnicalPersonnelFilter, params models.ListParams) ([]models.TechnicalPersonnelListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.TechnicalPersonnel, error)
	Create(ctx context.Context, person *models.TechnicalPersonnel) error
	Update(ctx context.Context, person *models.TechnicalPersonnel) error
	Delete(ctx context.Context, id int64) error
}

// TechnicalPersonnelRequest is the technical personnel form.
type TechnicalPersonnelRequest struct {
	EmployeeRequest
	Qualification    models.Qualification            `form:"qualification" validate:"required"`
	Position         optional.Value[models.Position] `form:"position"`
	EducationLevel   optional.Value[string]          `form:"education_level" validate:"omitempty,max=200"`
	SoftwareSkills   []string                        `form:"software_skills"`
	IsProjectManager bool                            `form:"is_project_manager"`
	AreaID           optional.Value[int64]           `form:"area_id"`

	Fields models.QualificationFields `form:"-" validate:"-"`
}

// TechnicalPersonnelService handles technical personnel use-cases.
type TechnicalPersonnelService struct {
	repo      technicalPersonnelRepository
	refs      referenceChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTechnicalPersonnelService constructs the technical personnel service.
func NewTechnicalPersonnelService(repo technicalPersonnelRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *TechnicalPersonnelService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TechnicalPersonnelService{repo: repo, refs: refs, validator: validate, logger: logger}
}

// List returns one page of technical personnel.
func (s *TechnicalPersonnelService) List(ctx context.Context, filter models.TechnicalPersonnelFilter, params models.ListParams) (models.ListResult[models.TechnicalPersonnelListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "technical personnel")
}

// Get returns the person with the qualification-specific fields.
func (s *TechnicalPersonnelService) Get(ctx context.Context, id int64) (*models.TechnicalPersonnel, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "technical personnel", "load")
	}
	return person, nil
}

func (s *TechnicalPersonnelService) check(ctx context.Context, req TechnicalPersonnelRequest) error {
	if err := validate(s.validator, "technical personnel", &req, req.Fields); err != nil {
		return err
	}
	if req.Fields.Qualification() != req.Qualification {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid technical personnel: fields of %s submitted for qualification %s",
			req.Fields.Qualification().Label(), req.Qualification.Label()))
	}
	return requireOptionalRef(ctx, s.refs, repository.TableArea, "area", req.AreaID)
}

func (req TechnicalPersonnelRequest) person(id int64) *models.TechnicalPersonnel {
	return &models.TechnicalPersonnel{
		Employee:         req.EmployeeRequest.employee(id),
		Qualification:    req.Qualification,
		Position:         req.Position.Ptr(),
		EducationLevel:   req.EducationLevel.Ptr(),
		SoftwareSkills:   pq.StringArray(models.SplitList(req.SoftwareSkills)),
		IsProjectManager: req.IsProjectManager,
		AreaID:           req.AreaID.Ptr(),
		Fields:           req.Fields,
	}
}

// Create registers a person and the qualification-specific row.
func (s *TechnicalPersonnelService) Create(ctx context.Context, req TechnicalPersonnelRequest) (*models.TechnicalPersonnel, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	person := req.person(0)
	if err := s.repo.Create(ctx, person); err != nil {
		s.logger.Error("create technical personnel", zap.String("qualification", string(req.Qualification)), zap.Error(err))
		return nil, storeError(err, "technical personnel", "create")
	}
	return person, nil
}

// Update modifies a person, moving the qualification-specific row when the qualification changes.
func (s *TechnicalPersonnelService) Update(ctx context.Context, id int64, req TechnicalPersonnelRequest) (*models.TechnicalPersonnel, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	person := req.person(id)
	if err := s.repo.Update(ctx, person); err != nil {
		s.logger.Warn("update technical personnel", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "technical personnel", "update")
	}
	return person, nil
}

// Delete removes a person who supervises nothing.
func (s *TechnicalPersonnelService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete technical personnel", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "technical personnel", "delete")
	}
	return nil
}
