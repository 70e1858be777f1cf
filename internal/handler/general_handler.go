package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

// GeneralHandler serves the index and the fallback pages.
type GeneralHandler struct {
	render *response.Renderer
	logger *zap.Logger
}

// NewGeneralHandler builds the handler.
func NewGeneralHandler(render *response.Renderer, logger *zap.Logger) *GeneralHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneralHandler{render: render, logger: logger}
}

func (h *GeneralHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "general/index", Page{Title: "Onyx Core Builders"})
}

// NotFound answers unknown routes.
func (h *GeneralHandler) NotFound(c *gin.Context) {
	h.render.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Page %s not found", c.Request.URL.Path)))
}

// Recover renders the error page after a panic.
func (h *GeneralHandler) Recover(c *gin.Context, recovered interface{}) {
	h.logger.Error("panic recovered",
		zap.String("path", c.Request.URL.Path),
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	)
	h.render.Error(c, appErrors.Clone(appErrors.ErrInternal, "Internal server error"))
	c.Abort()
}
