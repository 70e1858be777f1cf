package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/service"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

type areaService interface {
	List(ctx context.Context, filter models.AreaFilter, params models.ListParams) (models.ListResult[models.AreaListItem], error)
	Get(ctx context.Context, id int64) (*models.Area, error)
	Create(ctx context.Context, req service.AreaRequest) (*models.Area, error)
	Update(ctx context.Context, id int64, req service.AreaRequest) (*models.Area, error)
	Delete(ctx context.Context, id int64) error
}

// AreaHandler serves area pages and fragments.
type AreaHandler struct {
	service   areaService
	sites     siteLister
	personnel personnelLister
	render    *response.Renderer
	notify    notifier
}

// NewAreaHandler builds the handler.
func NewAreaHandler(svc areaService, sites siteLister, personnel personnelLister, render *response.Renderer) *AreaHandler {
	return &AreaHandler{service: svc, sites: sites, personnel: personnel, render: render, notify: notifier{render: render}}
}

func (h *AreaHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "areas/index", Page{Title: "Areas"})
}

func (h *AreaHandler) New(c *gin.Context) {
	form := Form[*models.Area]{Action: "/api/areas", Method: "post"}
	h.render.HTML(c, http.StatusOK, "areas/form", Page{Title: "New area", Data: form})
}

func (h *AreaHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "areas/show", Page{Title: details.Item.Name, Data: details})
}

func (h *AreaHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	area, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Area]{Item: area, Action: fmt.Sprintf("/api/areas/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "areas/form", Page{Title: "Edit " + area.Name, Data: form})
}

// List renders the area table.
func (h *AreaHandler) List(c *gin.Context) {
	var filter models.AreaFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "areas/table", result, "/api/areas", err)
}

// Get renders the details fragment with the selected tab.
func (h *AreaHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "areas/details", details)
}

func (h *AreaHandler) details(c *gin.Context) (Details[*models.Area], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Area]{}, err
	}
	area, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Area]{}, err
	}
	return Details[*models.Area]{Item: area, Tabs: models.AreaTabs, Tab: models.PickTab(models.AreaTabs, c.Query("tab"))}, nil
}

func (h *AreaHandler) Create(c *gin.Context) {
	var req service.AreaRequest
	if err := bindForm(c, "area", &req); err != nil {
		h.notify.failure(c, err, "/areas/new")
		return
	}
	area, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/areas/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Area '%s' created successfully", area.Name), detailsPath("areas", area.ID))
}

func (h *AreaHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("areas"))
		return
	}
	var req service.AreaRequest
	if err := bindForm(c, "area", &req); err != nil {
		h.notify.failure(c, err, detailsPath("areas", id)+"/edit")
		return
	}
	area, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("areas", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Area '%s' updated successfully", area.Name), detailsPath("areas", id))
}

// Delete removes an area without sites. Both outcomes lead back to the area list.
func (h *AreaHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("areas"))
		return
	}
	h.notify.success(c, "Area deleted successfully", listPath("areas"))
}

func (h *AreaHandler) Sites(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.sites.List(c.Request.Context(), models.SiteFilter{AreaID: optional.Some(id)}, params)
	listOrError(h.render, c, "sites/table", result, fmt.Sprintf("/api/areas/%d/sites", id), err)
}

func (h *AreaHandler) Personnel(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.personnel.List(c.Request.Context(), models.TechnicalPersonnelFilter{AreaID: optional.Some(id)}, params)
	listOrError(h.render, c, "technical-personnel/table", result, fmt.Sprintf("/api/areas/%d/personnel", id), err)
}
