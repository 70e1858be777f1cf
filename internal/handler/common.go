package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

// Table is the data of every list fragment. BaseURL is the endpoint the
// pagination and sort links point back to.
type Table[T any] struct {
	models.ListResult[T]
	BaseURL string
	Query   url.Values
	Extra   interface{}
}

// Details is the data of a details fragment or page.
type Details[T any] struct {
	Item  T
	Tabs  []models.Tab
	Tab   string
	Extra interface{}
}

// Form is the data of a create or edit page. Item is nil on create.
type Form[T any] struct {
	Item   T
	Action string
	Method string
	Extra  interface{}
}

// Page wraps fragment data with the page title.
type Page struct {
	Title string
	Data  interface{}
}

func newTable[T any](c *gin.Context, result models.ListResult[T], base string) Table[T] {
	return Table[T]{ListResult: result, BaseURL: base, Query: c.Request.URL.Query()}
}

func paramID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Invalid id %q", raw))
	}
	return id, nil
}

// bindList binds pagination, sorting and the resource filter from the query string.
func bindList(c *gin.Context, filter interface{}) (models.ListParams, error) {
	var params models.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return params, appErrors.Validation(err, "Invalid list parameters")
	}
	if filter != nil {
		if err := c.ShouldBindQuery(filter); err != nil {
			return params, appErrors.Validation(err, "Invalid filter: "+err.Error())
		}
	}
	return params, nil
}

// bindForm binds the request body into req. Binding failures become
// validation errors carrying the decoder message.
func bindForm(c *gin.Context, entity string, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid %s: %s", entity, err.Error()))
	}
	return nil
}

// failureMessage is the user-facing text of a failed mutation.
func failureMessage(err error) string {
	msg := appErrors.FromError(err).Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

type notifier struct {
	render *response.Renderer
}

func (n notifier) success(c *gin.Context, message, redirect string) {
	n.render.Notification(c, models.Success(message, redirect))
}

func (n notifier) failure(c *gin.Context, err error, redirect string) {
	n.render.Notification(c, models.Failure(failureMessage(err), redirect))
}

func detailsPath(resource string, id int64) string {
	return fmt.Sprintf("/%s/%d", resource, id)
}

func listPath(resource string) string {
	return "/" + resource
}

// listOrError renders a list fragment, or the error fragment when err is set.
func listOrError[T any](r *response.Renderer, c *gin.Context, name string, result models.ListResult[T], base string, err error) {
	if err != nil {
		r.Error(c, err)
		return
	}
	r.HTML(c, http.StatusOK, name, newTable(c, result, base))
}
