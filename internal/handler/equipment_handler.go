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

type equipmentService interface {
	List(ctx context.Context, filter models.EquipmentFilter, params models.ListParams) (models.ListResult[models.EquipmentListItem], error)
	Get(ctx context.Context, id int64) (*models.Equipment, error)
	Create(ctx context.Context, req service.EquipmentRequest) (*models.Equipment, error)
	Update(ctx context.Context, id int64, req service.EquipmentRequest) (*models.Equipment, error)
	Delete(ctx context.Context, id int64) error
	Allocations(ctx context.Context, filter models.AllocationFilter, params models.ListParams) (models.ListResult[models.Allocation], error)
	Allocate(ctx context.Context, equipmentID int64, req service.AllocationRequest) (*models.Allocation, error)
	DeleteAllocation(ctx context.Context, equipmentID, allocationID int64) error
}

// EquipmentHandler serves equipment pages, fragments and allocations.
type EquipmentHandler struct {
	service equipmentService
	render  *response.Renderer
	notify  notifier
}

// NewEquipmentHandler builds the handler.
func NewEquipmentHandler(svc equipmentService, render *response.Renderer) *EquipmentHandler {
	return &EquipmentHandler{service: svc, render: render, notify: notifier{render: render}}
}

func (h *EquipmentHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "equipment/index", Page{Title: "Equipment"})
}

func (h *EquipmentHandler) New(c *gin.Context) {
	form := Form[*models.Equipment]{Action: "/api/equipment", Method: "post"}
	h.render.HTML(c, http.StatusOK, "equipment/form", Page{Title: "New equipment", Data: form})
}

func (h *EquipmentHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "equipment/show", Page{Title: details.Item.Name, Data: details})
}

func (h *EquipmentHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	equipment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Equipment]{Item: equipment, Action: fmt.Sprintf("/api/equipment/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "equipment/form", Page{Title: "Edit " + equipment.Name, Data: form})
}

func (h *EquipmentHandler) List(c *gin.Context) {
	var filter models.EquipmentFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "equipment/table", result, "/api/equipment", err)
}

func (h *EquipmentHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "equipment/details", details)
}

func (h *EquipmentHandler) details(c *gin.Context) (Details[*models.Equipment], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Equipment]{}, err
	}
	equipment, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Equipment]{}, err
	}
	return Details[*models.Equipment]{Item: equipment, Tabs: models.EquipmentTabs, Tab: models.PickTab(models.EquipmentTabs, c.Query("tab"))}, nil
}

func (h *EquipmentHandler) Create(c *gin.Context) {
	var req service.EquipmentRequest
	if err := bindForm(c, "equipment", &req); err != nil {
		h.notify.failure(c, err, "/equipment/new")
		return
	}
	equipment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/equipment/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Equipment '%s' created successfully", equipment.Name), detailsPath("equipment", equipment.ID))
}

func (h *EquipmentHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("equipment"))
		return
	}
	var req service.EquipmentRequest
	if err := bindForm(c, "equipment", &req); err != nil {
		h.notify.failure(c, err, detailsPath("equipment", id)+"/edit")
		return
	}
	equipment, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("equipment", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Equipment '%s' updated successfully", equipment.Name), detailsPath("equipment", id))
}

func (h *EquipmentHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("equipment"))
		return
	}
	h.notify.success(c, "Equipment deleted successfully", listPath("equipment"))
}

// Allocations lists where the equipment is, or was, allocated.
func (h *EquipmentHandler) Allocations(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	filter := models.AllocationFilter{EquipmentID: optional.Some(id)}
	if c.Query("current_only") == "true" {
		filter.CurrentOnly = optional.Some(true)
	}
	result, err := h.service.Allocations(c.Request.Context(), filter, params)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	table := newTable(c, result, fmt.Sprintf("/api/equipment/%d/allocations", id))
	table.Extra = id
	h.render.HTML(c, http.StatusOK, "equipment/allocations", table)
}

func (h *EquipmentHandler) Allocate(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("equipment"))
		return
	}
	back := detailsPath("equipment", id) + "?tab=allocations"
	var req service.AllocationRequest
	if err := bindForm(c, "allocation", &req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	if _, err := h.service.Allocate(c.Request.Context(), id, req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	h.notify.success(c, "Equipment allocation created successfully", back)
}

func (h *EquipmentHandler) DeleteAllocation(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("equipment"))
		return
	}
	back := detailsPath("equipment", id) + "?tab=allocations"
	allocationID, err := paramID(c, "allocation_id")
	if err == nil {
		err = h.service.DeleteAllocation(c.Request.Context(), id, allocationID)
	}
	if err != nil {
		h.notify.failure(c, err, back)
		return
	}
	h.notify.success(c, "Equipment allocation deleted successfully", back)
}
