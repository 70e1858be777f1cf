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

type clientService interface {
	List(ctx context.Context, filter models.ClientFilter, params models.ListParams) (models.ListResult[models.ClientListItem], error)
	Get(ctx context.Context, id int64) (*models.Client, error)
	Create(ctx context.Context, req service.ClientRequest) (*models.Client, error)
	Update(ctx context.Context, id int64, req service.ClientRequest) (*models.Client, error)
	Delete(ctx context.Context, id int64) error
}

// ClientHandler serves client pages and fragments.
type ClientHandler struct {
	service clientService
	sites   siteLister
	render  *response.Renderer
	notify  notifier
}

// NewClientHandler builds the handler.
func NewClientHandler(svc clientService, sites siteLister, render *response.Renderer) *ClientHandler {
	return &ClientHandler{service: svc, sites: sites, render: render, notify: notifier{render: render}}
}

func (h *ClientHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "clients/index", Page{Title: "Clients"})
}

func (h *ClientHandler) New(c *gin.Context) {
	form := Form[*models.Client]{Action: "/api/clients", Method: "post"}
	h.render.HTML(c, http.StatusOK, "clients/form", Page{Title: "New client", Data: form})
}

func (h *ClientHandler) Show(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "clients/show", Page{Title: details.Item.Name, Data: details})
}

func (h *ClientHandler) Edit(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.render.Error(c, err)
		return
	}
	client, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.Client]{Item: client, Action: fmt.Sprintf("/api/clients/%d", id), Method: "put"}
	h.render.HTML(c, http.StatusOK, "clients/form", Page{Title: "Edit " + client.Name, Data: form})
}

func (h *ClientHandler) List(c *gin.Context) {
	var filter models.ClientFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "clients/table", result, "/api/clients", err)
}

func (h *ClientHandler) Get(c *gin.Context) {
	details, err := h.details(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "clients/details", details)
}

func (h *ClientHandler) details(c *gin.Context) (Details[*models.Client], error) {
	id, err := paramID(c, "id")
	if err != nil {
		return Details[*models.Client]{}, err
	}
	client, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		return Details[*models.Client]{}, err
	}
	return Details[*models.Client]{Item: client, Tabs: models.ClientTabs, Tab: models.PickTab(models.ClientTabs, c.Query("tab"))}, nil
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req service.ClientRequest
	if err := bindForm(c, "client", &req); err != nil {
		h.notify.failure(c, err, "/clients/new")
		return
	}
	client, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/clients/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Client '%s' created successfully", client.Name), detailsPath("clients", client.ID))
}

func (h *ClientHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath("clients"))
		return
	}
	var req service.ClientRequest
	if err := bindForm(c, "client", &req); err != nil {
		h.notify.failure(c, err, detailsPath("clients", id)+"/edit")
		return
	}
	client, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath("clients", id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Client '%s' updated successfully", client.Name), detailsPath("clients", id))
}

func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath("clients"))
		return
	}
	h.notify.success(c, "Client deleted successfully", listPath("clients"))
}

func (h *ClientHandler) Sites(c *gin.Context) {
	id, params, err := nestedParams(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.sites.List(c.Request.Context(), models.SiteFilter{ClientID: optional.Some(id)}, params)
	listOrError(h.render, c, "sites/table", result, fmt.Sprintf("/api/clients/%d/sites", id), err)
}
