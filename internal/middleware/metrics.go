package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/doctrack-api/internal/service"
)

// unmatchedRoute labels requests no route claimed. Raw paths carry document ids
// and would give every document its own series.
const unmatchedRoute = "unmatched"

// Metrics records request counts and latency per route template. Requests to
// any of skip, typically the scrape endpoint itself, are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	ignored := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		ignored[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, ok := ignored[route]; ok && route != "" {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
