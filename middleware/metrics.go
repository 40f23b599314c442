package middleware

import (
	"strconv"
	"strings"
	"time"

	"eudaimonia/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency keyed by the matched route
// pattern so ids do not explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		m.InFlight(1)
		defer m.InFlight(-1)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(strings.ToUpper(c.Request.Method), path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
