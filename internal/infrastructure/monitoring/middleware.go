package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		// Route templates keep label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(method, path, strconv.Itoa(c.Writer.Status()), time.Since(start), reqSize, int64(c.Writer.Size()))
	}
}

// Timer measures integration call duration
type Timer struct {
	start   time.Time
	metrics *Metrics
	service string
	action  string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, service, action string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		service: service,
		action:  action,
	}
}

// Stop stops the timer and records the duration
func (t *Timer) Stop(status string) {
	if t.metrics == nil {
		return
	}
	t.metrics.RecordIntegrationCall(t.service, t.action, status, time.Since(t.start))
}
