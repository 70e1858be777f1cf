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

type departmentService interface {
	List(ctx context.Context, filter models.DepartmentFilter, params models.ListParams) (models.ListResult[models.DepartmentListItem], error)
	Get(ctx context.Context, id int64) (*models.Department, error)
	Create(ctx context.Context, req service.DepartmentRequest) (*models.Department, error)
	Update(ctx context.Context, id int64, req service.DepartmentRequest) (*models.Department, error)
	Delete(ctx context.Context, id int64) error
}

// DepartmentHandler serves department pages and fragments.
type DepartmentHandler struct {
	service     departmentService
	areas       areaLister
	sites       siteLister
	personnel   personnelLister
	allocations allocationLister
	render      *response.Renderer
	notify      notifier
}

// NewDepartmentHandler builds the handler. The listers back the details tabs.
func NewDepartmentHandler(svc departmentService, areas areaLister, sites siteLister, personnel personnelLister, allocations allocationLister, render *response.Renderer) *DepartmentHandler {
	return &DepartmentHandler{
		service:     svc,
		areas:       areas,
		sites:       sites,
		personnel:   personnel,
		allocations: allocations,
		render:      render,
		notify:      notifier{render: render},
	}
}

func (h *DepartmentHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "departments/index", Page{Title: "Departments"})
}

func (h *DepartmentHandler) New(c *gin.Context) {
	form := Form[*models.Department]{Action: "/api/departments", Method: "post"}
	h.render.HTML(c, http.StatusOK, "departments/form", Page{Title: "New department", Data: form})
}

func (h *DepartmentHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "departments/show", Page{Title: details.Item.Name, Data: details})
}

func (h *DepartmentHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	department, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Department]{Item: department, Action: fmt.Sprintf("/api/departments/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "departments/form", Page{Title: "Edit " + department.Name, Data: form})
}

// List renders the department table.
func (h *DepartmentHandler) List(c *gin.Context) {
	var filter models.DepartmentFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "departments/table", result, "/api/departments", err)
}

// Get renders the details fragment with the selected tab.
func (h *DepartmentHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "departments/details", details)
}

func (h *DepartmentHandler) details(c *gin.Context) (Details[*models.Department], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Department]{}, err
	}
	department, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Department]{}, err
	}
	return Details[*models.Department]{
		Item: department,
		Tabs: models.DepartmentTabs,
		Tab:  models.PickTab(models.DepartmentTabs, c.Query("tab")),
	}, nil
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req service.DepartmentRequest
	if err := bindForm(c, "department", &req); err != nil {
		h.notify.failure(c, err, "/departments/new")
		return
	}
	department, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/departments/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Department '%s' created successfully", department.Name), detailsPath("departments", department.ID))
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("departments"))
		return
	}
	var req service.DepartmentRequest
	if err := bindForm(c, "department", &req); err != nil {
		h.notify.failure(c, err, detailsPath("departments", id)+"/edit")
		return
	}
	department, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("departments", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Department '%s' updated successfully", department.Name), detailsPath("departments", id))
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("departments"))
		return
	}
	h.notify.success(c, "Department deleted successfully", listPath("departments"))
}

func (h *DepartmentHandler) Areas(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.areas.List(c.Request.Context(), models.AreaFilter{DepartmentID: optional.Some(id)}, params)
	listOrError(h.render, c, "areas/table", result, fmt.Sprintf("/api/departments/%d/areas", id), err)
}

func (h *DepartmentHandler) Sites(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.sites.List(c.Request.Context(), models.SiteFilter{DepartmentID: optional.Some(id)}, params)
	listOrError(h.render, c, "sites/table", result, fmt.Sprintf("/api/departments/%d/sites", id), err)
}

func (h *DepartmentHandler) Personnel(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.personnel.List(c.Request.Context(), models.TechnicalPersonnelFilter{DepartmentID: optional.Some(id)}, params)
	listOrError(h.render, c, "technical-personnel/table", result, fmt.Sprintf("/api/departments/%d/personnel", id), err)
}

func (h *DepartmentHandler) Equipment(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.allocations.Allocations(c.Request.Context(), models.AllocationFilter{DepartmentID: optional.Some(id)}, params)
	listOrError(h.render, c, "equipment/allocations", result, fmt.Sprintf("/api/departments/%d/equipment", id), err)
}

func nestedParams(c *gin.Context) (int64, models.ListParams, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return 0, models.ListParams{}, err
	}
	params, err := bindList(c, nil)
	return id, params, err
}
