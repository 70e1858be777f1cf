package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/service"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

func TestAuditRecordsMutationOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	metrics := service.NewMetricsService()

	router := gin.New()
	router.Use(Audit(zap.New(core), metrics))
	router.DELETE("/api/areas/:id", func(c *gin.Context) {
		c.Set(response.NotificationKey, models.Failure("Cannot delete area with 2 sites", "/areas"))
		c.Status(http.StatusOK)
	})
	router.POST("/api/areas", func(c *gin.Context) {
		c.Set(response.NotificationKey, models.Success("Area 'North' created successfully", "/areas/1"))
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/areas/4", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/areas", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "mutation failed", entries[0].Message)
	assert.Equal(t, "delete", entries[0].ContextMap()["action"])
	assert.Equal(t, "mutation", entries[1].Message)
	assert.Equal(t, "areas", entries[1].ContextMap()["resource"])

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `mutations_total{action="delete",outcome="error",resource="areas"} 1`)
	assert.Contains(t, rec.Body.String(), `mutations_total{action="create",outcome="success",resource="areas"} 1`)
}

func TestAuditSkipsReads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(Audit(zap.New(core), nil))
	router.GET("/api/areas", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.PUT("/api/areas/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/areas", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/areas/1", nil))

	assert.Empty(t, logs.All())
}

func TestMutationOf(t *testing.T) {
	cases := []struct {
		method, route    string
		resource, action string
	}{
		{http.MethodPost, "/api/departments", "departments", "create"},
		{http.MethodPut, "/api/departments/:id", "departments", "update"},
		{http.MethodDelete, "/api/sites/:id", "sites", "delete"},
		{http.MethodPut, "/api/tasks/:id/complete", "tasks", "complete"},
		{http.MethodPost, "/api/tasks/:id/materials", "tasks", "materials_create"},
		{http.MethodPut, "/api/tasks/:id/materials/:material_id", "tasks", "materials_update"},
		{http.MethodDelete, "/api/brigades/:id/workers/:worker_id", "brigades", "workers_delete"},
	}
	for _, tc := range cases {
		resource, action := mutationOf(tc.method, tc.route)
		assert.Equal(t, tc.resource, resource, tc.route)
		assert.Equal(t, tc.action, action, tc.route)
	}
}
