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

type siteService interface {
	List(ctx context.Context, filter models.SiteFilter, params models.ListParams) (models.ListResult[models.SiteListItem], error)
	Get(ctx context.Context, id int64) (*models.Site, error)
	Create(ctx context.Context, req service.SiteRequest) (*models.Site, error)
	Update(ctx context.Context, id int64, req service.SiteRequest) (*models.Site, error)
	Delete(ctx context.Context, id int64) error
	Materials(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.SiteMaterial], error)
	Reports(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.SiteReport], error)
	ExportReports(ctx context.Context, id int64, format string) (*service.ExportFile, error)
}

// SiteFieldsView is the data of the type-specific inputs.
type SiteFieldsView struct {
	Type   models.SiteType
	Fields models.SiteFields
}

// SiteHandler serves site pages and fragments.
type SiteHandler struct {
	service     siteService
	tasks       taskLister
	brigades    brigadeLister
	allocations allocationLister
	render      *response.Renderer
	notify      notifier
}

// NewSiteHandler builds the handler.
func NewSiteHandler(svc siteService, tasks taskLister, brigades brigadeLister, allocations allocationLister, render *response.Renderer) *SiteHandler {
	return &SiteHandler{
		service:     svc,
		tasks:       tasks,
		brigades:    brigades,
		allocations: allocations,
		render:      render,
		notify:      notifier{render: render},
	}
}

func (h *SiteHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "sites/index", Page{Title: "Sites"})
}

func (h *SiteHandler) New(c *gin.Context) {
	form := Form[*models.Site]{Action: "/api/sites", Method: "post", Extra: SiteFieldsView{}}
	h.render.HTML(c, http.StatusOK, "sites/form", Page{Title: "New site", Data: form})
}

func (h *SiteHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "sites/show", Page{Title: details.Item.Name, Data: details})
}

func (h *SiteHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	site, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Site]{
		Item:   site,
		Action: fmt.Sprintf("/api/sites/%d", id),
		Method: "put",
		Extra:  SiteFieldsView{Type: site.Type, Fields: site.Fields},
	}
	h.render.HTML(c, http.StatusOK, "sites/form", Page{Title: "Edit " + site.Name, Data: form})
}

func (h *SiteHandler) List(c *gin.Context) {
	var filter models.SiteFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "sites/table", result, "/api/sites", err)
}

func (h *SiteHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "sites/details", details)
}

func (h *SiteHandler) details(c *gin.Context) (Details[*models.Site], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Site]{}, err
	}
	site, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Site]{}, err
	}
	return Details[*models.Site]{Item: site, Tabs: models.SiteTabs, Tab: models.PickTab(models.SiteTabs, c.Query("tab"))}, nil
}

// TypeFields renders the inputs of one site type for the dynamic form.
func (h *SiteHandler) TypeFields(c *gin.Context) {
	var siteType models.SiteType
	if err := siteType.UnmarshalParam(c.Query("type")); err != nil {
		h.render.HTML(c, http.StatusOK, "sites/fields", SiteFieldsView{})
		return
	}
	fields, err := models.NewSiteFields(siteType)
	if err != nil {
		h.render.HTML(c, http.StatusOK, "sites/fields", SiteFieldsView{})
		return
	}
	h.render.HTML(c, http.StatusOK, "sites/fields", SiteFieldsView{Type: siteType, Fields: fields})
}

func bindSite(c *gin.Context) (service.SiteRequest, error) {
	var req service.SiteRequest
	if err := bindForm(c, "site", &req); err != nil {
		return req, err
	}
	fields, err := models.NewSiteFields(req.Type)
	if err != nil {
		return req, nil
	}
	if err := bindForm(c, "site", fields); err != nil {
		return req, err
	}
	req.Fields = fields
	return req, nil
}

func (h *SiteHandler) Create(c *gin.Context) {
	req, err := bindSite(c)
	if err != nil {
		h.notify.failure(c, err, "/sites/new")
		return
	}
	site, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/sites/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Site '%s' created successfully", site.Name), detailsPath("sites", site.ID))
}

func (h *SiteHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("sites"))
		return
	}
	req, err := bindSite(c)
	if err != nil {
		h.notify.failure(c, err, detailsPath("sites", id)+"/edit")
		return
	}
	site, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("sites", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Site '%s' updated successfully", site.Name), detailsPath("sites", id))
}

func (h *SiteHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("sites"))
		return
	}
	h.notify.success(c, "Site deleted successfully", listPath("sites"))
}

// Schedule lists the site's tasks.
func (h *SiteHandler) Schedule(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.tasks.List(c.Request.Context(), models.TaskFilter{SiteID: optional.Some(id)}, params)
	listOrError(h.render, c, "tasks/table", result, fmt.Sprintf("/api/sites/%d/schedule", id), err)
}

func (h *SiteHandler) Materials(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.Materials(c.Request.Context(), id, params)
	listOrError(h.render, c, "sites/materials", result, fmt.Sprintf("/api/sites/%d/materials", id), err)
}

func (h *SiteHandler) Equipment(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.allocations.Allocations(c.Request.Context(), models.AllocationFilter{SiteID: optional.Some(id)}, params)
	listOrError(h.render, c, "equipment/allocations", result, fmt.Sprintf("/api/sites/%d/equipment", id), err)
}

func (h *SiteHandler) Brigades(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.brigades.List(c.Request.Context(), models.BrigadeFilter{SiteID: optional.Some(id)}, params)
	listOrError(h.render, c, "brigades/table", result, fmt.Sprintf("/api/sites/%d/brigades", id), err)
}

// Reports lists the site's tasks with their delays.
func (h *SiteHandler) Reports(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.Reports(c.Request.Context(), id, params)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	table := newTable(c, result, fmt.Sprintf("/api/sites/%d/reports", id))
	table.Extra = id
	h.render.HTML(c, http.StatusOK, "sites/reports", table)
}

// ExportReports downloads the delay report as CSV or PDF.
func (h *SiteHandler) ExportReports(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	file, err := h.service.ExportReports(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		h.render.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
