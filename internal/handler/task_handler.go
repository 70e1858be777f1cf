package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/internal/service"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

type taskService interface {
	List(ctx context.Context, filter models.TaskFilter, params models.ListParams) (models.ListResult[models.TaskListItem], error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, req service.TaskRequest) (*models.Task, error)
	Update(ctx context.Context, id int64, req service.TaskRequest) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64, req service.CompleteTaskRequest) (*models.Task, error)
	Materials(ctx context.Context, id int64, params models.ListParams) (models.ListResult[models.Expenditure], error)
	AddMaterial(ctx context.Context, id int64, req service.TaskMaterialRequest) error
	SetActualAmount(ctx context.Context, id, materialID int64, req service.ActualAmountRequest) error
}

// TaskHandler serves task pages, fragments and task materials.
type TaskHandler struct {
	service taskService
	render  *response.Renderer
	notify  notifier
	now     func() time.Time
}

// NewTaskHandler builds the handler.
func NewTaskHandler(svc taskService, render *response.Renderer) *TaskHandler {
	return &TaskHandler{service: svc, render: render, notify: notifier{render: render}, now: time.Now}
}

func (h *TaskHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "tasks/index", Page{Title: "Tasks"})
}

func (h *TaskHandler) New(c *gin.Context) {
	form := Form[*models.Task]{Action: "/api/tasks", Method: "post"}
	h.render.HTML(c, http.StatusOK, "tasks/form", Page{Title: "New task", Data: form})
}

func (h *TaskHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "tasks/show", Page{Title: details.Item.Name, Data: details})
}

func (h *TaskHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Task]{Item: task, Action: fmt.Sprintf("/api/tasks/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "tasks/form", Page{Title: "Edit " + task.Name, Data: form})
}

func (h *TaskHandler) List(c *gin.Context) {
	var filter models.TaskFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "tasks/table", result, "/api/tasks", err)
}

func (h *TaskHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "tasks/details", details)
}

// details carries the progress percentage in Extra.
func (h *TaskHandler) details(c *gin.Context) (Details[*models.Task], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Task]{}, err
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Task]{}, err
	}
	return Details[*models.Task]{
		Item:  task,
		Tabs:  models.TaskTabs,
		Tab:   models.PickTab(models.TaskTabs, c.Query("tab")),
		Extra: task.Progress(h.now()),
	}, nil
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req service.TaskRequest
	if err := bindForm(c, "task", &req); err != nil {
		h.notify.failure(c, err, "/tasks/new")
		return
	}
	task, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/tasks/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Task '%s' created successfully", task.Name), detailsPath("tasks", task.ID))
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("tasks"))
		return
	}
	var req service.TaskRequest
	if err := bindForm(c, "task", &req); err != nil {
		h.notify.failure(c, err, detailsPath("tasks", id)+"/edit")
		return
	}
	task, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("tasks", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Task '%s' updated successfully", task.Name), detailsPath("tasks", id))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("tasks"))
		return
	}
	h.notify.success(c, "Task deleted successfully", listPath("tasks"))
}

// Complete records the actual end date.
func (h *TaskHandler) Complete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("tasks"))
		return
	}
	var req service.CompleteTaskRequest
	if err := bindForm(c, "task completion", &req); err != nil {
		h.notify.failure(c, err, detailsPath("tasks", id))
		return
	}
	task, err := h.service.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("tasks", id))
		return
	}
	h.notify.success(c, fmt.Sprintf("Task '%s' completed", task.Name), detailsPath("tasks", id))
}

func (h *TaskHandler) Materials(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.Materials(c.Request.Context(), id, params)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	table := newTable(c, result, fmt.Sprintf("/api/tasks/%d/materials", id))
	table.Extra = id
	h.render.HTML(c, http.StatusOK, "tasks/materials", table)
}

func (h *TaskHandler) AddMaterial(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("tasks"))
		return
	}
	back := detailsPath("tasks", id) + "?tab=materials"
	var req service.TaskMaterialRequest
	if err := bindForm(c, "task material", &req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	if err := h.service.AddMaterial(c.Request.Context(), id, req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	h.notify.success(c, "Material added to task successfully", back)
}

func (h *TaskHandler) SetActualAmount(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("tasks"))
		return
	}
	back := detailsPath("tasks", id) + "?tab=materials"
	materialID, err := paramID(c, "material_id")
	if err != nil {
		h.notify.failure(c, err, back)
		return
	}
	var req service.ActualAmountRequest
	if err := bindForm(c, "task material", &req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	if err := h.service.SetActualAmount(c.Request.Context(), id, materialID, req); err != nil {
		h.notify.failure(c, err, back)
		return
	}
	h.notify.success(c, "Actual amount recorded successfully", back)
}
