package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGeneralNotFoundPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewGeneralHandler(newTestRenderer(t), nil)
	r := gin.New()
	r.NoRoute(h.NotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page /nowhere not found")
	assert.Contains(t, w.Body.String(), "Error 404")
}

func TestGeneralIndexListsResources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewGeneralHandler(newTestRenderer(t), nil)
	r := gin.New()
	r.GET("/", h.Index)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/technical-personnel"`)
}

func TestGeneralRecoverRendersErrorPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	h := NewGeneralHandler(newTestRenderer(t), zap.New(core))
	r := gin.New()
	r.Use(gin.CustomRecovery(h.Recover))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
