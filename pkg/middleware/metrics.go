package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manzanit0/tourplanner/pkg/metrics"
)

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		t0 := time.Now()

		c.Next()

		// Unmatched routes would otherwise blow up label cardinality.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(t0).Seconds())
	}
}
