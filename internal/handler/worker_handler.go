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

type workerService interface {
	List(ctx context.Context, filter models.WorkerFilter, params models.ListParams) (models.ListResult[models.WorkerListItem], error)
	Get(ctx context.Context, id int64) (*models.Worker, error)
	Create(ctx context.Context, req service.WorkerRequest) (*models.Worker, error)
	Update(ctx context.Context, id int64, req service.WorkerRequest) (*models.Worker, error)
	Delete(ctx context.Context, id int64) error
}

// ProfessionFieldsView is the data of the profession-specific inputs.
type ProfessionFieldsView struct {
	Profession models.Profession
	Fields     models.ProfessionFields
}

// WorkerHandler serves worker pages and fragments.
type WorkerHandler struct {
	service workerService
	render  *response.Renderer
	notify  notifier
}

// NewWorkerHandler builds the handler.
func NewWorkerHandler(svc workerService, render *response.Renderer) *WorkerHandler {
	return &WorkerHandler{service: svc, render: render, notify: notifier{render: render}}
}

func (h *WorkerHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "workers/index", Page{Title: "Workers"})
}

func (h *WorkerHandler) New(c *gin.Context) {
	form := Form[*models.Worker]{Action: "/api/workers", Method: "post", Extra: ProfessionFieldsView{}}
	h.render.HTML(c, http.StatusOK, "workers/form", Page{Title: "New worker", Data: form})
}

func (h *WorkerHandler) Show(c *gin.Context) {
	worker, err := h.load(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "workers/show", Page{Title: worker.FullName(), Data: Details[*models.Worker]{Item: worker}})
}

func (h *WorkerHandler) Edit(c *gin.Context) {
	worker, err := h.load(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Worker]{
		Item:   worker,
		Action: fmt.Sprintf("/api/workers/%d", worker.ID),
		Method: "put",
		Extra:  ProfessionFieldsView{Profession: worker.Profession, Fields: worker.Fields},
	}
	h.render.HTML(c, http.StatusOK, "workers/form", Page{Title: "Edit " + worker.FullName(), Data: form})
}

func (h *WorkerHandler) List(c *gin.Context) {
	var filter models.WorkerFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "workers/table", result, "/api/workers", err)
}

func (h *WorkerHandler) Get(c *gin.Context) {
	worker, err := h.load(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "workers/details", Details[*models.Worker]{Item: worker})
}

func (h *WorkerHandler) load(c *gin.Context) (*models.Worker, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.service.Get(c.Request.Context(), id)
}

// ProfessionFields renders the inputs of one profession for the dynamic form.
func (h *WorkerHandler) ProfessionFields(c *gin.Context) {
	var profession models.Profession
	if err := profession.UnmarshalParam(c.Query("profession")); err != nil {
		h.render.HTML(c, http.StatusOK, "workers/fields", ProfessionFieldsView{})
		return
	}
	fields, err := models.NewProfessionFields(profession)
	if err != nil {
		h.render.HTML(c, http.StatusOK, "workers/fields", ProfessionFieldsView{})
		return
	}
	h.render.HTML(c, http.StatusOK, "workers/fields", ProfessionFieldsView{Profession: profession, Fields: fields})
}

func bindWorker(c *gin.Context) (service.WorkerRequest, error) {
	var req service.WorkerRequest
	if err := bindForm(c, "worker", &req); err != nil {
		return req, err
	}
	fields, err := models.NewProfessionFields(req.Profession)
	if err != nil {
		return req, nil
	}
	if err := bindForm(c, "worker", fields); err != nil {
		return req, err
	}
	req.Fields = fields
	return req, nil
}

func (h *WorkerHandler) Create(c *gin.Context) {
	req, err := bindWorker(c)
	if err != nil {
		h.notify.failure(c, err, "/workers/new")
		return
	}
	worker, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/workers/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Worker %s created successfully", worker.FullName()), detailsPath("workers", worker.ID))
}

func (h *WorkerHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("workers"))
		return
	}
	req, err := bindWorker(c)
	if err != nil {
		h.notify.failure(c, err, detailsPath("workers", id)+"/edit")
		return
	}
	worker, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("workers", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Worker %s updated successfully", worker.FullName()), detailsPath("workers", id))
}

func (h *WorkerHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("workers"))
		return
	}
	h.notify.success(c, "Worker deleted successfully", listPath("workers"))
}
