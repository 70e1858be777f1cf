package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meliosu/onyx-core-builders/internal/service"
)

// unmatchedRoute labels requests that reached the not found page, keeping
// arbitrary URLs out of the metric labels.
const unmatchedRoute = "unmatched"

// Metrics records latency and status per route template. Prometheus scrapes
// are not counted.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
