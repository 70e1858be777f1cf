package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meliosu/onyx-core-builders/internal/service"
	"github.com/meliosu/onyx-core-builders/pkg/middleware/requestid"
	"github.com/meliosu/onyx-core-builders/pkg/response"
)

// Audit records every mutation outcome in the log and the mutation counter.
// Requests that rendered no notification are skipped.
func Audit(logger *zap.Logger, metricsSvc *service.MetricsService) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		n, ok := response.NotificationFrom(c)
		if !ok {
			return
		}
		resource, action := mutationOf(c.Request.Method, c.FullPath())
		metricsSvc.ObserveMutation(resource, action, n.IsSuccess())

		fields := []zap.Field{
			zap.String("resource", resource),
			zap.String("action", action),
			zap.String("path", c.Request.URL.Path),
			zap.String("result", string(n.Result)),
			zap.String("message", n.Message),
			zap.Duration("latency", time.Since(start)),
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}
		if n.IsSuccess() {
			logger.Info("mutation", fields...)
			return
		}
		logger.Warn("mutation failed", fields...)
	}
}

// mutationOf names the resource and action of a route such as
// /api/tasks/:id/complete.
func mutationOf(method, route string) (string, string) {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return "unknown", strings.ToLower(method)
	}
	resource := parts[0]
	var sub string
	for _, p := range parts[1:] {
		if !strings.HasPrefix(p, ":") {
			sub = p
		}
	}
	verb := map[string]string{
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
	}[method]
	if verb == "" {
		verb = strings.ToLower(method)
	}
	if sub == "" {
		return resource, verb
	}
	if method == http.MethodPut && !strings.HasSuffix(route, ":material_id") {
		return resource, sub
	}
	return resource, sub + "_" + verb
}
