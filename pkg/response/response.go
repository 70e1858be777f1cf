package response

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/models"
	appErrors "github.com/meliosu/onyx-core-builders/pkg/errors"
)

const (
	// NotificationTemplate renders a mutation outcome.
	NotificationTemplate = "general/notification"
	// ErrorTemplate renders a failed fragment request.
	ErrorTemplate = "general/error"
	// ErrorPageTemplate renders a failed page request.
	ErrorPageTemplate = "general/error_page"
)

// ErrorView is the data of the error templates.
type ErrorView struct {
	Status  int
	Code    string
	Message string
}

// Renderer writes HTML pages and fragments from a parsed template set.
type Renderer struct {
	templates *template.Template
	logger    *zap.Logger
}

// Parse loads every template matching patterns from fsys with the view helpers.
func Parse(fsys fs.FS, patterns ...string) (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(fsys, patterns...)
}

// NewRenderer builds a renderer over templates.
func NewRenderer(templates *template.Template, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{templates: templates, logger: logger}
}

// IsFragment reports whether the request was issued by htmx.
func IsFragment(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// HTML renders the named template. A template failure is reported as a
// plain paragraph with status 500 since nothing has been written yet.
func (r *Renderer) HTML(c *gin.Context, status int, name string, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("render template", zap.String("template", name), zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
			[]byte(fmt.Sprintf("<p>Error rendering template: %s</p>", template.HTMLEscapeString(err.Error()))))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// Notification renders a mutation outcome. It always answers 200 so htmx swaps it in.
func (r *Renderer) Notification(c *gin.Context, n models.Notification) {
	c.Set(NotificationKey, n)
	r.HTML(c, http.StatusOK, NotificationTemplate, n)
}

// Error renders err with its status, as a fragment for htmx requests and as
// a full page otherwise.
func (r *Renderer) Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		r.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	view := ErrorView{Status: appErr.Status, Code: appErr.Code, Message: appErr.Message}
	name := ErrorPageTemplate
	if IsFragment(c) {
		name = ErrorTemplate
	}
	r.HTML(c, appErr.Status, name, view)
}

// NotificationKey is the gin context key holding the last rendered notification.
const NotificationKey = "notification"

// NotificationFrom returns the notification rendered for this request, if any.
func NotificationFrom(c *gin.Context) (models.Notification, bool) {
	value, ok := c.Get(NotificationKey)
	if !ok {
		return models.Notification{}, false
	}
	n, ok := value.(models.Notification)
	return n, ok
}
