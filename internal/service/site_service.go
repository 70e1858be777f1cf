package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/repository"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/export"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

type siteRepository interface {
	List(ctx context.Context, filter models.SiteFilter, params models.ListParams) ([]models.SiteListItem, int, error)
	FindByID(ctx context.Context, id int64) (*models.Site, error)
	Create(ctx context.Context, site *models.Site) error
	Update(ctx context.Context, site *models.Site) error
	Delete(ctx context.Context, id int64) error
	Materials(ctx context.Context, siteID int64, p models.Pagination) ([]models.SiteMaterial, int, error)
	Reports(ctx context.Context, siteID int64, p models.Pagination) ([]models.SiteReport, int, error)
	AllReports(ctx context.Context, siteID int64) ([]models.SiteReport, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// SiteRequest is the site form. Fields holds the inputs of the selected type.
type SiteRequest struct {
	Name        string                 `form:"name" validate:"required,max=200"`
	Type        models.SiteType        `form:"type" validate:"required"`
	AreaID      int64                  `form:"area_id" validate:"required"`
	ClientID    int64                  `form:"client_id" validate:"required"`
	Location    string                 `form:"location" validate:"required,max=500"`
	RiskLevel   models.RiskLevel       `form:"risk_level" validate:"required"`
	Description optional.Value[string] `form:"description" validate:"omitempty,max=2000"`

	Fields models.SiteFields `form:"-" validate:"-"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SiteService handles site use-cases.
type SiteService struct {
	repo      siteRepository
	refs      referenceChecker
	renderers map[export.Format]datasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteService constructs the site service with the CSV and PDF report renderers.
func NewSiteService(repo siteRepository, refs referenceChecker, validate *validator.Validate, logger *zap.Logger) *SiteService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{
		repo: repo,
		refs: refs,
		renderers: map[export.Format]datasetRenderer{
			export.FormatCSV: export.NewCSVExporter(),
			export.FormatPDF: export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
	}
}

// List returns one page of sites.
func (s *SiteService) List(ctx context.Context, filter models.SiteFilter, params models.ListParams) (models.ListResult[models.SiteListItem], error) {
	items, total, err := s.repo.List(ctx, filter, params)
	return listResult(items, total, params, err, "sites")
}

// Get returns site details including the type-specific fields.
func (s *SiteService) Get(ctx context.Context, id int64) (*models.Site, error) {
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "site", "load")
	}
	return site, nil
}

func (s *SiteService) check(ctx context.Context, req SiteRequest) error {
	if err := validate(s.validator, "site", &req, req.Fields); err != nil {
		return err
	}
	if req.Fields.SiteType() != req.Type {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid site: fields of %s submitted for type %s", req.Fields.SiteType().Label(), req.Type.Label()))
	}
	if err := requireRef(ctx, s.refs, repository.TableArea, "area", req.AreaID); err != nil {
		return err
	}
	return requireRef(ctx, s.refs, repository.TableClient, "client", req.ClientID)
}

func (req SiteRequest) site(id int64) *models.Site {
	return &models.Site{
		ID:          id,
		Name:        req.Name,
		Type:        req.Type,
		AreaID:      req.AreaID,
		ClientID:    req.ClientID,
		Location:    req.Location,
		RiskLevel:   req.RiskLevel,
		Description: req.Description.Ptr(),
		Fields:      req.Fields,
	}
}

// Create registers a site and its type-specific row.
func (s *SiteService) Create(ctx context.Context, req SiteRequest) (*models.Site, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	site := req.site(0)
	if err := s.repo.Create(ctx, site); err != nil {
		s.logger.Error("create site", zap.String("type", string(req.Type)), zap.Error(err))
		return nil, storeError(err, "site", "create")
	}
	return site, nil
}

// Update modifies a site, moving its type-specific row when the type changes.
func (s *SiteService) Update(ctx context.Context, id int64, req SiteRequest) (*models.Site, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	site := req.site(id)
	if err := s.repo.Update(ctx, site); err != nil {
		s.logger.Warn("update site", zap.Int64("id", id), zap.Error(err))
		return nil, storeError(err, "site", "update")
	}
	return site, nil
}

// Delete removes a site without tasks or allocations.
func (s *SiteService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete site", zap.Int64("id", id), zap.Error(err))
		return storeError(err, "site", "delete")
	}
	return nil
}

// Materials aggregates the materials used by the site's tasks.
func (s *SiteService) Materials(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.SiteMaterial], error) {
	items, total, err := s.repo.Materials(ctx, id, params.Pagination)
	return listResult(items, total, params, err, "site materials")
}

// Reports lists the site's tasks with their delays.
func (s *SiteService) Reports(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.SiteReport], error) {
	items, total, err := s.repo.Reports(ctx, id, params.Pagination)
	return listResult(items, total, params, err, "site reports")
}

// ExportReports renders every report row of the site in the requested format.
func (s *SiteService) ExportReports(ctx context.Context, id int64, rawFormat string) (*ExportFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "site", "load")
	}
	reports, err := s.repo.AllReports(ctx, id)
	if err != nil {
		return nil, storeError(err, "site reports", "export")
	}
	data, err := s.renderers[format].Render(reportDataset(site, reports))
	if err != nil {
		s.logger.Error("render site report", zap.Int64("id", id), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render site report")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("site-%d-report.%s", id, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func reportDataset(site *models.Site, reports []models.SiteReport) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("%s: task delays", site.Name),
		Headers: []string{"Task", "Start", "Expected end", "Actual end", "Delay (days)"},
		Rows:    make([][]string, 0, len(reports)),
	}
	for _, r := range reports {
		actual := ""
		if r.ActualPeriodEnd != nil {
			actual = r.ActualPeriodEnd.Format(optional.DateLayout)
		}
		data.Rows = append(data.Rows, []string{
			r.TaskName,
			r.PeriodStart.Format(optional.DateLayout),
			r.ExpectedPeriodEnd.Format(optional.DateLayout),
			actual,
			strconv.Itoa(r.DelayDays),
		})
	}
	return data
}
