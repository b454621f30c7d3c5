package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/preview"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/monitoring"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Handlers contains the workspace HTTP handlers.
type Handlers struct {
	manager    *session.Manager
	renderer   *preview.Renderer
	metrics    *monitoring.Metrics
	logger     *logging.Logger
	maxContent int64
	started    time.Time
}

// Options configures Handlers.
type Options struct {
	// MaxContentBytes bounds request bodies carrying file content.
	MaxContentBytes int64
	Metrics         *monitoring.Metrics
	Logger          *logging.Logger
}

// NewHandlers creates a handler set over manager.
func NewHandlers(manager *session.Manager, renderer *preview.Renderer, opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if renderer == nil {
		renderer = preview.NewRenderer()
	}
	return &Handlers{
		manager:    manager,
		renderer:   renderer,
		metrics:    opts.Metrics,
		logger:     logger.Named("api"),
		maxContent: opts.MaxContentBytes,
		started:    time.Now(),
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/workspaces", h.ListWorkspaces)
	r.POST("/workspaces", h.CreateWorkspace)
	r.GET("/workspaces/:id", h.GetWorkspace)
	r.DELETE("/workspaces/:id", h.DeleteWorkspace)

	r.POST("/workspaces/:id/select", h.command(session.CommandSelect))
	r.POST("/workspaces/:id/activate", h.command(session.CommandActivate))
	r.POST("/workspaces/:id/close", h.command(session.CommandClose))
	r.POST("/workspaces/:id/toggle", h.command(session.CommandToggle))
	r.PUT("/workspaces/:id/content", h.EditContent)

	r.GET("/workspaces/:id/find", h.Find)
	r.GET("/workspaces/:id/preview", h.Preview)
	r.POST("/workspaces/:id/refresh", h.Refresh)
}

// Root reports service identity.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Web IDE workspace server",
		"version": Version,
	})
}

// Health reports liveness with workspace counters.
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":     "healthy",
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"workspaces": h.manager.Stats(),
	}
	if h.metrics != nil {
		body["http"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
