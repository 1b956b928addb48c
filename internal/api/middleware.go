package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"garden-core/internal/logging"
)

// RequestLoggingMiddleware logs one line per request once the handler chain
// finishes. The route template is preferred over the raw path so device ids
// don't explode log cardinality.
func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		logger.Infof("%s %s from %s: %d in %v",
			c.Request.Method, route, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}
