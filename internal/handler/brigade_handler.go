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

type brigadeService interface {
	List(ctx context.Context, filter models.BrigadeFilter, params models.ListParams) (models.ListResult[models.BrigadeListItem], error)
	Get(ctx context.Context, id int64) (*models.Brigade, error)
	Create(ctx context.Context, req service.BrigadeRequest) (*models.Brigade, error)
	Update(ctx context.Context, id int64, req service.BrigadeRequest) (*models.Brigade, error)
	Delete(ctx context.Context, id int64) error
	AddWorker(ctx context.Context, id int64, req service.BrigadeWorkerRequest) error
	RemoveWorker(ctx context.Context, id, workerID int64) error
}

// BrigadeHandler serves brigade pages, fragments and membership changes.
type BrigadeHandler struct {
	service brigadeService
	workers workerLister
	tasks   taskLister
	render  *response.Renderer
	notify  notifier
}

// NewBrigadeHandler builds the handler.
func NewBrigadeHandler(svc brigadeService, workers workerLister, tasks taskLister, render *response.Renderer) *BrigadeHandler {
	return &BrigadeHandler{service: svc, workers: workers, tasks: tasks, render: render, notify: notifier{render: render}}
}

func (h *BrigadeHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "brigades/index", Page{Title: "Brigades"})
}

func (h *BrigadeHandler) New(c *gin.Context) {
	form := Form[*models.Brigade]{Action: "/api/brigades", Method: "post"}
	h.render.HTML(c, http.StatusOK, "brigades/form", Page{Title: "New brigade", Data: form})
}

func (h *BrigadeHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "brigades/show", Page{Title: fmt.Sprintf("Brigade #%d", details.Item.ID), Data: details})
}

func (h *BrigadeHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	brigade, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Brigade]{Item: brigade, Action: fmt.Sprintf("/api/brigades/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "brigades/form", Page{Title: fmt.Sprintf("Edit brigade #%d", id), Data: form})
}

func (h *BrigadeHandler) List(c *gin.Context) {
	var filter models.BrigadeFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "brigades/table", result, "/api/brigades", err)
}

func (h *BrigadeHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "brigades/details", details)
}

func (h *BrigadeHandler) details(c *gin.Context) (Details[*models.Brigade], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Brigade]{}, err
	}
	brigade, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Brigade]{}, err
	}
	return Details[*models.Brigade]{Item: brigade, Tabs: models.BrigadeTabs, Tab: models.PickTab(models.BrigadeTabs, c.Query("tab"))}, nil
}

func (h *BrigadeHandler) Create(c *gin.Context) {
	var req service.BrigadeRequest
	if err := bindForm(c, "brigade", &req); err != nil {
		h.notify.failure(c, err, "/brigades/new")
		return
	}
	brigade, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/brigades/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Brigade with brigadier %d created successfully", brigade.BrigadierID), detailsPath("brigades", brigade.ID))
}

func (h *BrigadeHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("brigades"))
		return
	}
	var req service.BrigadeRequest
	if err := bindForm(c, "brigade", &req); err != nil {
		h.notify.failure(c, err, detailsPath("brigades", id)+"/edit")
		return
	}
	if _, err := h.service.Update(c.Request.Context(), id, req); err != nil {
		h.notify.failure(c, err, detailsPath("brigades", id)+"/edit")
		return
	}
	h.notify.success(c, "Brigade updated successfully", detailsPath("brigades", id))
}

func (h *BrigadeHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("brigades"))
		return
	}
	h.notify.success(c, "Brigade deleted successfully", listPath("brigades"))
}

// Workers lists the brigade members.
func (h *BrigadeHandler) Workers(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.workers.List(c.Request.Context(), models.WorkerFilter{BrigadeID: optional.Some(id)}, params)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	table := newTable(c, result, fmt.Sprintf("/api/brigades/%d/workers", id))
	table.Extra = id
	h.render.HTML(c, http.StatusOK, "brigades/workers", table)
}

// AddWorker assigns a worker and returns to the brigade page.
func (h *BrigadeHandler) AddWorker(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("brigades"))
		return
	}
	back := detailsPath("brigades", id) + "?tab=workers"
	var req service.BrigadeWorkerRequest
	if err := bindForm(c, "brigade member", &req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	if err := h.service.AddWorker(c.Request.Context(), id, req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	h.notify.success(c, fmt.Sprintf("Worker %d added to brigade successfully", req.WorkerID), back)
}

func (h *BrigadeHandler) RemoveWorker(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("brigades"))
		return
	}
	back := detailsPath("brigades", id) + "?tab=workers"
	workerID, err := paramID(c, "worker_id")
	if err == nil {
		err = h.service.RemoveWorker(c.Request.Context(), id, workerID)
	}
	if err != nil {
		h.notify.failure(c, err, back)
		return
	}
	h.notify.success(c, "Worker removed from brigade successfully", back)
}

func (h *BrigadeHandler) Tasks(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.tasks.List(c.Request.Context(), models.TaskFilter{BrigadeID: optional.Some(id)}, params)
	listOrError(h.render, c, "tasks/table", result, fmt.Sprintf("/api/brigades/%d/tasks", id), err)
}
