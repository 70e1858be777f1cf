package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/service"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/response"
	"github.com/meliosu/onyx-core-builders/web"
)

func newTestRenderer(t *testing.T) *response.Renderer {
	t.Helper()
	templates, err := web.Templates()
	require.NoError(t, err)
	return response.NewRenderer(templates, nil)
}

type areaServiceStub struct {
	listResp   models.ListResult[models.AreaListItem]
	lastFilter models.AreaFilter
	lastParams models.ListParams
	getResp    *models.Area
	getErr     error
	createReq  service.AreaRequest
	createErr  error
	deleteErr  error
	deletedID  int64
}

func (s *areaServiceStub) List(ctx context.Context, filter models.AreaFilter, params models.ListParams) (models.ListResult[models.AreaListItem], error) {
	s.lastFilter = filter
	s.lastParams = params
	return s.listResp, nil
}

func (s *areaServiceStub) Get(ctx context.Context, id int64) (*models.Area, error) {
	return s.getResp, s.getErr
}

func (s *areaServiceStub) Create(ctx context.Context, req service.AreaRequest) (*models.Area, error) {
	s.createReq = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.Area{ID: 7, Name: req.Name, DepartmentID: req.DepartmentID}, nil
}

func (s *areaServiceStub) Update(ctx context.Context, id int64, req service.AreaRequest) (*models.Area, error) {
	return &models.Area{ID: id, Name: req.Name, DepartmentID: req.DepartmentID}, nil
}

func (s *areaServiceStub) Delete(ctx context.Context, id int64) error {
	s.deletedID = id
	return s.deleteErr
}

func newAreaRouter(t *testing.T, svc *areaServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAreaHandler(svc, nil, nil, newTestRenderer(t))
	r := gin.New()
	r.GET("/areas/:id", h.Show)
	r.GET("/api/areas", h.List)
	r.POST("/api/areas", h.Create)
	r.DELETE("/api/areas/:id", h.Delete)
	return r
}

func TestAreaDeleteSuccessRedirectsToList(t *testing.T) {
	svc := &areaServiceStub{}
	r := newAreaRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/areas/3", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), svc.deletedID)
	body := w.Body.String()
	assert.Contains(t, body, `data-result="success"`)
	assert.Contains(t, body, `data-redirect="/areas"`)
	assert.Contains(t, body, "Area deleted successfully")
}

func TestAreaDeleteConflictStillAnswersOK(t *testing.T) {
	svc := &areaServiceStub{deleteErr: appErrors.Clone(appErrors.ErrConflict, "area has 2 sites")}
	r := newAreaRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/areas/3", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `data-result="error"`)
	assert.Contains(t, body, `data-redirect="/areas"`)
	assert.Contains(t, body, "Area has 2 sites")
}

func TestAreaCreateRedirectsToDetails(t *testing.T) {
	svc := &areaServiceStub{}
	r := newAreaRouter(t, svc)

	form := url.Values{"name": {"North"}, "department_id": {"4"}, "supervisor_id": {""}}
	req := httptest.NewRequest(http.MethodPost, "/api/areas", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "North", svc.createReq.Name)
	assert.Equal(t, int64(4), svc.createReq.DepartmentID)
	assert.False(t, svc.createReq.SupervisorID.IsSet())
	assert.Contains(t, w.Body.String(), `data-redirect="/areas/7"`)
	assert.Contains(t, w.Body.String(), "Area &#39;North&#39; created successfully")
}

func TestAreaCreateFailureReturnsToForm(t *testing.T) {
	svc := &areaServiceStub{createErr: appErrors.Clone(appErrors.ErrReferenceNotFound, "department 4 does not exist")}
	r := newAreaRouter(t, svc)

	form := url.Values{"name": {"North"}, "department_id": {"4"}}
	req := httptest.NewRequest(http.MethodPost, "/api/areas", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-result="error"`)
	assert.Contains(t, w.Body.String(), `data-redirect="/areas/new"`)
}

func TestAreaListBindsFilterAndPagination(t *testing.T) {
	items := []models.AreaListItem{{ID: 1, Name: "North", DepartmentID: 2, DepartmentName: "Roads"}}
	svc := &areaServiceStub{
		listResp: models.NewListResult(items, 1, models.Pagination{PageNumber: 1, PageSize: 5}, models.Sort{SortBy: "name"}),
	}
	r := newAreaRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/areas?name=No&department_id=2&page_size=5&sort_by=name", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	name, ok := svc.lastFilter.Name.Get()
	require.True(t, ok)
	assert.Equal(t, "No", name)
	dept, ok := svc.lastFilter.DepartmentID.Get()
	require.True(t, ok)
	assert.Equal(t, int64(2), dept)
	assert.Equal(t, 5, svc.lastParams.PageSize)
	assert.Contains(t, w.Body.String(), `href="/areas/1"`)
	assert.Contains(t, w.Body.String(), "Page 1 of 1")
}

func TestAreaShowMissingRendersErrorPage(t *testing.T) {
	svc := &areaServiceStub{getErr: appErrors.Clone(appErrors.ErrNotFound, "area 9 not found")}
	r := newAreaRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/areas/9", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "area 9 not found")
}

func TestAreaInvalidIDIsNotFoundFragment(t *testing.T) {
	r := newAreaRouter(t, &areaServiceStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/areas/abc", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
