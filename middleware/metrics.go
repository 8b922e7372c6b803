package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/metrics"
)

// unmatchedRoute labels requests that hit no registered route.
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count and latency per route template.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
