package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

type selectorServiceStub struct {
	name   string
	filter models.SelectorFilter
	resp   []models.SelectorOption
	err    error
}

func (s *selectorServiceStub) Options(ctx context.Context, name string, filter models.SelectorFilter) ([]models.SelectorOption, error) {
	s.name = name
	s.filter = filter
	return s.resp, s.err
}

func newSelectorRouter(t *testing.T, svc *selectorServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSelectorHandler(svc, newTestRenderer(t))
	r := gin.New()
	r.GET("/api/selectors/:name", h.Options)
	return r
}

func TestSelectorOptionsMarksSelected(t *testing.T) {
	svc := &selectorServiceStub{resp: []models.SelectorOption{
		{ID: 1, Label: "Ivanov Ivan", Hint: "welder"},
		{ID: 2, Label: "Petrov Petr"},
	}}
	r := newSelectorRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/selectors/workers?unassigned=true&selected=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "workers", svc.name)
	unassigned, ok := svc.filter.Unassigned.Get()
	require.True(t, ok)
	assert.True(t, unassigned)

	body := w.Body.String()
	assert.Contains(t, body, `<option value=""></option>`)
	assert.Contains(t, body, `<option value="2" selected>Petrov Petr</option>`)
	assert.Contains(t, body, "Ivanov Ivan (welder)")
}

func TestSelectorOptionsRequiredHasNoBlank(t *testing.T) {
	svc := &selectorServiceStub{resp: []models.SelectorOption{{ID: 5, Label: "Roads"}}}
	r := newSelectorRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/selectors/departments?required=true", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `<option value=""></option>`)
}

func TestSelectorUnknownNameIsNotFound(t *testing.T) {
	svc := &selectorServiceStub{err: appErrors.Clone(appErrors.ErrNotFound, "selector planets not found")}
	r := newSelectorRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/selectors/planets", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "selector planets not found")
}

func TestSelectorRejectsMalformedFilter(t *testing.T) {
	svc := &selectorServiceStub{}
	r := newSelectorRouter(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/selectors/areas?department_id=abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.name)
}
