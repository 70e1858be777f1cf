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

type technicalPersonnelService interface {
	List(ctx context.Context, filter models.TechnicalPersonnelFilter, params models.ListParams) (models.ListResult[models.TechnicalPersonnelListItem], error)
	Get(ctx context.Context, id int64) (*models.TechnicalPersonnel, error)
	Create(ctx context.Context, req service.TechnicalPersonnelRequest) (*models.TechnicalPersonnel, error)
	Update(ctx context.Context, id int64, req service.TechnicalPersonnelRequest) (*models.TechnicalPersonnel, error)
	Delete(ctx context.Context, id int64) error
}

// QualificationFieldsView is the data of the qualification-specific inputs.
type QualificationFieldsView struct {
	Qualification models.Qualification
	Fields        models.QualificationFields
}

const personnelPath = "technical-personnel"

// TechnicalPersonnelHandler serves technical personnel pages and fragments.
type TechnicalPersonnelHandler struct {
	service technicalPersonnelService
	render  *response.Renderer
	notify  notifier
}

// NewTechnicalPersonnelHandler builds the handler.
func NewTechnicalPersonnelHandler(svc technicalPersonnelService, render *response.Renderer) *TechnicalPersonnelHandler {
	return &TechnicalPersonnelHandler{service: svc, render: render, notify: notifier{render: render}}
}

func (h *TechnicalPersonnelHandler) Index(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "technical-personnel/index", Page{Title: "Technical personnel"})
}

func (h *TechnicalPersonnelHandler) New(c *gin.Context) {
	form := Form[*models.TechnicalPersonnel]{Action: "/api/" + personnelPath, Method: "post", Extra: QualificationFieldsView{}}
	h.render.HTML(c, http.StatusOK, "technical-personnel/form", Page{Title: "New technical personnel", Data: form})
}

func (h *TechnicalPersonnelHandler) Show(c *gin.Context) {
	person, err := h.load(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "technical-personnel/show", Page{Title: person.FullName(), Data: Details[*models.TechnicalPersonnel]{Item: person}})
}

func (h *TechnicalPersonnelHandler) Edit(c *gin.Context) {
	person, err := h.load(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	form := Form[*models.TechnicalPersonnel]{
		Item:   person,
		Action: fmt.Sprintf("/api/%s/%d", personnelPath, person.ID),
		Method: "put",
		Extra:  QualificationFieldsView{Qualification: person.Qualification, Fields: person.Fields},
	}
	h.render.HTML(c, http.StatusOK, "technical-personnel/form", Page{Title: "Edit " + person.FullName(), Data: form})
}

func (h *TechnicalPersonnelHandler) List(c *gin.Context) {
	var filter models.TechnicalPersonnelFilter
	params, err := bindList(c, &filter)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	result, err := h.service.List(c.Request.Context(), filter, params)
	listOrError(h.render, c, "technical-personnel/table", result, "/api/"+personnelPath, err)
}

func (h *TechnicalPersonnelHandler) Get(c *gin.Context) {
	person, err := h.load(c)
	if err != nil {
		h.render.Error(c, err)
		return
	}
	h.render.HTML(c, http.StatusOK, "technical-personnel/details", Details[*models.TechnicalPersonnel]{Item: person})
}

func (h *TechnicalPersonnelHandler) load(c *gin.Context) (*models.TechnicalPersonnel, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.service.Get(c.Request.Context(), id)
}

// QualificationFields renders the inputs of one qualification for the dynamic form.
func (h *TechnicalPersonnelHandler) QualificationFields(c *gin.Context) {
	var qualification models.Qualification
	if err := qualification.UnmarshalParam(c.Query("qualification")); err != nil {
		h.render.HTML(c, http.StatusOK, "technical-personnel/fields", QualificationFieldsView{})
		return
	}
	fields, err := models.NewQualificationFields(qualification)
	if err != nil {
		h.render.HTML(c, http.StatusOK, "technical-personnel/fields", QualificationFieldsView{})
		return
	}
	h.render.HTML(c, http.StatusOK, "technical-personnel/fields", QualificationFieldsView{Qualification: qualification, Fields: fields})
}

func bindPersonnel(c *gin.Context) (service.TechnicalPersonnelRequest, error) {
	var req service.TechnicalPersonnelRequest
	if err := bindForm(c, "technical personnel", &req); err != nil {
		return req, err
	}
	fields, err := models.NewQualificationFields(req.Qualification)
	if err != nil {
		return req, nil
	}
	if err := bindForm(c, "technical personnel", fields); err != nil {
		return req, err
	}
	req.Fields = fields
	return req, nil
}

func (h *TechnicalPersonnelHandler) Create(c *gin.Context) {
	req, err := bindPersonnel(c)
	if err != nil {
		h.notify.failure(c, err, "/"+personnelPath+"/new")
		return
	}
	person, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.notify.failure(c, err, "/"+personnelPath+"/new")
		return
	}
	h.notify.success(c, fmt.Sprintf("Technical personnel %s created successfully", person.FullName()), detailsPath(personnelPath, person.ID))
}

func (h *TechnicalPersonnelHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.notify.failure(c, err, listPath(personnelPath))
		return
	}
	req, err := bindPersonnel(c)
	if err != nil {
		h.notify.failure(c, err, detailsPath(personnelPath, id)+"/edit")
		return
	}
	person, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.notify.failure(c, err, detailsPath(personnelPath, id)+"/edit")
		return
	}
	h.notify.success(c, fmt.Sprintf("Technical personnel %s updated successfully", person.FullName()), detailsPath(personnelPath, id))
}

func (h *TechnicalPersonnelHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err == nil {
		err = h.service.Delete(c.Request.Context(), id)
	}
	if err != nil {
		h.notify.failure(c, err, listPath(personnelPath))
		return
	}
	h.notify.success(c, "Technical personnel deleted successfully", listPath(personnelPath))
}
