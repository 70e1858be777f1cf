package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/service"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

type materialService interface {
	List(ctx context.Context, filter models.MaterialFilter, params models.ListParams) (models.ListResult[models.MaterialListItem], error)
	Get(ctx context.Context, id int64) (*models.Material, error)
	Create(ctx context.Context, req service.MaterialRequest) (*models.Material, error)
	Update(ctx context.Context, id int64, req service.MaterialRequest) (*models.Material, error)
	Delete(ctx context.Context, id int64) error
	Usage(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.Expenditure], error)
}

// MaterialHandler serves material pages and fragments.
type MaterialHandler struct {
	service materialService
	render  *response.Renderer
	notify  notifier
}

// NewMaterialHandler builds the handler.
func NewMaterialHandler(svc materialService, render *response.Renderer) *MaterialHandler {
	return &MaterialHandler{service: svc, render: render, notify: notifier{render: render}}
}

func (h *MaterialHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "materials/index", Page{Title: "Materials"})
}

func (h *MaterialHandler) New(c *gin.Context) {
	form := Form[*models.Material]{Action: "/api/materials", Method: "post"}
	h.render.HTML(c, http.StatusOK, "materials/form", Page{Title: "New material", Data: form})
}

func (h *MaterialHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "materials/show", Page{Title: details.Item.Name, Data: details})
}

func (h *MaterialHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	material, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Material]{Item: material, Action: fmt.Sprintf("/api/materials/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "materials/form", Page{Title: "Edit " + material.Name, Data: form})
}

func (h *MaterialHandler) List(c *gin.Context) {
	var filter models.MaterialFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "materials/table", result, "/api/materials", err)
}

func (h *MaterialHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "materials/details", details)
}

func (h *MaterialHandler) details(c *gin.Context) (Details[*models.Material], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Material]{}, err
	}
	material, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Material]{}, err
	}
	return Details[*models.Material]{Item: material, Tabs: models.MaterialTabs, Tab: models.PickTab(models.MaterialTabs, c.Query("tab"))}, nil
}

func (h *MaterialHandler) Create(c *gin.Context) {
	var req service.MaterialRequest
	if err := bindForm(c, "material", &req); err != nil {
		h.notify.failure(c, err, "/materials/new")
		return
	}
	material, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/materials/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Material '%s' created successfully", material.Name), detailsPath("materials", material.ID))
}

func (h *MaterialHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("materials"))
		return
	}
	var req service.MaterialRequest
	if err := bindForm(c, "material", &req); err != nil {
		h.notify.failure(c, err, detailsPath("materials", id)+"/edit")
		return
	}
	material, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("materials", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Material '%s' updated successfully", material.Name), detailsPath("materials", id))
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("materials"))
		return
	}
	h.notify.success(c, "Material deleted successfully", listPath("materials"))
}

// Usage lists the tasks that plan or consume the material.
func (h *MaterialHandler) Usage(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.Usage(c.Request.Context(), id, params)
	listOrError(h.render, c, "materials/usage", result, fmt.Sprintf("/api/materials/%d/usage", id), err)
}
