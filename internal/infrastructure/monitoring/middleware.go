package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route template so workspace ids do not explode cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqSize := c.Request.ContentLength
		if reqSize < 0 {
			reqSize = 0
		}

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(c.Request.Method, path, status, time.Since(start), reqSize, respSize)
	}
}

// CommandRecorder is the part of Metrics a Timer reports to.
type CommandRecorder interface {
	RecordCommand(command, outcome string, duration time.Duration)
}

// Timer measures a workspace command.
type Timer struct {
	start    time.Time
	recorder CommandRecorder
	command  string
}

// NewTimer starts timing a command.
func NewTimer(recorder CommandRecorder, command string) *Timer {
	return &Timer{
		start:    time.Now(),
		recorder: recorder,
		command:  command,
	}
}

// Stop records the command with its outcome.
func (t *Timer) Stop(outcome string) {
	if t.recorder == nil {
		return
	}
	t.recorder.RecordCommand(t.command, outcome, time.Since(t.start))
}
