package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

type selectorService interface {
	Options(ctx context.Context, name string, filter models.SelectorFilter) ([]models.SelectorOption, error)
}

// SelectorOptions is the data of the option list fragment. Selected marks
// the preselected id; Empty adds a blank first option.
type SelectorOptions struct {
	Options  []models.SelectorOption
	Selected string
	Empty    bool
}

// SelectorHandler renders dropdown options.
type SelectorHandler struct {
	service selectorService
	render  *response.Renderer
}

// NewSelectorHandler builds the handler.
func NewSelectorHandler(svc selectorService, render *response.Renderer) *SelectorHandler {
	return &SelectorHandler{service: svc, render: render}
}

// Options renders the <option> list of the selector named in the path.
func (h *SelectorHandler) Options(c *gin.Context) {
	var filter models.SelectorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.render.Error(c, appErrors.Validation(err, "Invalid selector filter: "+err.Error()))
		return
	}
	options, err := h.service.Options(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "general/options", SelectorOptions{
		Options:  options,
		Selected: c.Query("selected"),
		Empty:    c.Query("required") != "true",
	})
}
