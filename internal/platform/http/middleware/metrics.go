// Package middleware provides gin middleware shared by all routes.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver receives one call per served request.
type RequestObserver interface {
	ObserveRequest(method, route, status string, seconds float64)
}

// Metrics records method, matched route and status for every request.
// Unmatched paths are grouped under "unmatched" to keep label cardinality bounded.
func Metrics(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
