package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

type siteRepoStub struct {
	site      *models.Site
	reports   []models.SiteReport
	created   []*models.Site
	createErr error
	deleteErr error
}

func (s *siteRepoStub) List(ctx context.Context, filter models.SiteFilter, params models.ListParams) ([]models.SiteListItem, int, error) {
	return nil, 0, nil
}

func (s *siteRepoStub) FindByID(ctx context.Context, id int64) (*models.Site, error) {
	if s.site == nil {
		return nil, sql.ErrNoRows
	}
	return s.site, nil
}

func (s *siteRepoStub) Create(ctx context.Context, site *models.Site) error {
	if s.createErr != nil {
		return s.createErr
	}
	site.ID = int64(len(s.created) + 1)
	s.created = append(s.created, site)
	return nil
}

func (s *siteRepoStub) Update(ctx context.Context, site *models.Site) error { return nil }

func (s *siteRepoStub) Delete(ctx context.Context, id int64) error { return s.deleteErr }

func (s *siteRepoStub) Materials(ctx context.Context, siteID int64, p models.Pagination) ([]models.SiteMaterial, int, error) {
	return nil, 0, nil
}

func (s *siteRepoStub) Reports(ctx context.Context, siteID int64, p models.Pagination) ([]models.SiteReport, int, error) {
	return s.reports, len(s.reports), nil
}

func (s *siteRepoStub) AllReports(ctx context.Context, siteID int64) ([]models.SiteReport, error) {
	return s.reports, nil
}

func roadRequest() SiteRequest {
	return SiteRequest{
		Name:      "Ring road",
		Type:      models.SiteTypeRoad,
		AreaID:    2,
		ClientID:  5,
		Location:  "North",
		RiskLevel: models.RiskLevelMedium,
		Fields:    &models.RoadFields{Length: 12.5, Lanes: 4, Surface: "asphalt"},
	}
}

func TestSiteServiceCreate(t *testing.T) {
	repo := &siteRepoStub{}
	refs := &refStub{}
	svc := NewSiteService(repo, refs, nil, nil)

	site, err := svc.Create(context.Background(), roadRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(1), site.ID)
	assert.Equal(t, models.SiteTypeRoad, site.Type)
	assert.IsType(t, &models.RoadFields{}, site.Fields)
	assert.Equal(t, []string{"area:2", "client:5"}, refs.checked)
}

func TestSiteServiceRejectsFieldsOfAnotherType(t *testing.T) {
	repo := &siteRepoStub{}
	req := roadRequest()
	req.Type = models.SiteTypeBridge

	_, err := NewSiteService(repo, &refStub{}, nil, nil).Create(context.Background(), req)

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, appErrors.FromError(err).Message, "submitted for type")
	assert.Empty(t, repo.created)
}

func TestSiteServiceValidatesTypeFields(t *testing.T) {
	req := roadRequest()
	req.Fields = &models.RoadFields{Length: 0, Lanes: 0}

	_, err := NewSiteService(&siteRepoStub{}, &refStub{}, nil, nil).Create(context.Background(), req)

	require.Error(t, err)
	msg := appErrors.FromError(err).Message
	assert.Contains(t, msg, "length must be greater than 0")
	assert.Contains(t, msg, "lanes must be at least 1")
	assert.Contains(t, msg, "surface is required")
}

func TestSiteServiceMissingClient(t *testing.T) {
	refs := &refStub{missing: map[string]bool{"client:5": true}}

	_, err := NewSiteService(&siteRepoStub{}, refs, nil, nil).Create(context.Background(), roadRequest())

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrReferenceNotFound))
	assert.Equal(t, "Client 5 does not exist", appErrors.FromError(err).Message)
}

func TestSiteServiceDeleteConflictPassesThrough(t *testing.T) {
	repo := &siteRepoStub{deleteErr: appErrors.Clone(appErrors.ErrConflict, "Cannot delete site: it has 3 tasks")}

	err := NewSiteService(repo, &refStub{}, nil, nil).Delete(context.Background(), 7)

	require.Error(t, err)
	assert.Equal(t, "Cannot delete site: it has 3 tasks", appErrors.FromError(err).Message)
}

func TestSiteServiceGetNotFound(t *testing.T) {
	_, err := NewSiteService(&siteRepoStub{}, &refStub{}, nil, nil).Get(context.Background(), 9)

	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "Site not found", appErrors.FromError(err).Message)
}

func TestSiteServiceExportReports(t *testing.T) {
	actual := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	repo := &siteRepoStub{
		site: &models.Site{ID: 3, Name: "Ring road"},
		reports: []models.SiteReport{
			{TaskName: "Earthworks", PeriodStart: date("2024-03-01"), ExpectedPeriodEnd: date("2024-03-10"), ActualPeriodEnd: &actual, DelayDays: 5},
			{TaskName: "Paving", PeriodStart: date("2024-04-01"), ExpectedPeriodEnd: date("2024-04-20")},
		},
	}
	svc := NewSiteService(repo, &refStub{}, nil, nil)

	file, err := svc.ExportReports(context.Background(), 3, "")

	require.NoError(t, err)
	assert.Equal(t, "site-3-report.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t,
		"Task,Start,Expected end,Actual end,Delay (days)\n"+
			"Earthworks,2024-03-01,2024-03-10,2024-03-15,5\n"+
			"Paving,2024-04-01,2024-04-20,,0\n",
		string(file.Data))

	pdf, err := svc.ExportReports(context.Background(), 3, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "site-3-report.pdf", pdf.Filename)
	assert.Equal(t, "%PDF", string(pdf.Data[:4]))
}

func TestSiteServiceExportRejectsUnknownFormat(t *testing.T) {
	repo := &siteRepoStub{site: &models.Site{ID: 3}}

	_, err := NewSiteService(repo, &refStub{}, nil, nil).ExportReports(context.Background(), 3, "xlsx")

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
