package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/WebIDE/backend/internal/api/http"
	"github.com/GriffinCanCode/WebIDE/backend/internal/api/middleware"
	"github.com/GriffinCanCode/WebIDE/backend/internal/api/ws"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/preview"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/session"
	"github.com/GriffinCanCode/WebIDE/backend/internal/domain/template"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/WebIDE/backend/internal/infrastructure/monitoring"
)

// ProjectSourceName is the name a configured template file or import
// directory is registered under. It becomes the default source.
const ProjectSourceName = "project"

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics
	manager *session.Manager
	router  *gin.Engine
	handler http.Handler
	http    *http.Server
}

// NewServer wires the workspace manager, the HTTP API and the command
// stream from cfg. A nil logger is replaced by one built from cfg.Logging.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}

	logger.Info("Initializing workspace server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("max_sessions", cfg.Workspace.MaxSessions),
	)

	metrics := monitoring.NewMetrics()

	sources, def, err := Sources(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	manager := session.NewManager(session.Options{
		MaxSessions:     cfg.Workspace.MaxSessions,
		MaxContentBytes: cfg.Workspace.MaxContentBytes,
		Sources:         sources,
		DefaultSource:   def,
		Logger:          logger,
		Metrics:         metrics,
	})
	logger.Info("Workspace templates registered",
		zap.Strings("templates", manager.Templates()),
		zap.String("default", def),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSConfigFor(cfg.Server.CORSOrigins)))
	if rps, burst, ok := cfg.RateLimit.GlobalLimit(); ok {
		logger.Info("Global rate limit enabled", zap.Int("rps", rps), zap.Int("burst", burst))
		router.Use(middleware.GlobalRateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
		}))
	}
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	handlers := apihttp.NewHandlers(manager, preview.NewRenderer(), apihttp.Options{
		MaxContentBytes: cfg.Workspace.MaxContentBytes,
		Metrics:         metrics,
		Logger:          logger,
	})
	handlers.Register(router)

	stream := ws.NewHandler(manager, ws.Options{
		MaxMessageBytes: 2*cfg.Workspace.MaxContentBytes + 1024,
		Logger:          logger,
		Metrics:         metrics,
	})
	router.GET("/workspaces/:id/stream", stream.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	var handler http.Handler = router
	if cfg.Server.GzipEnabled {
		handler = compress(router)
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		metrics: metrics,
		manager: manager,
		router:  router,
		handler: handler,
	}
	s.http = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http").Logger),
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Sources builds the template registry from workspace config and returns
// the name new workspaces use by default.
func Sources(cfg config.WorkspaceConfig) (map[string]template.Source, string, error) {
	sources := map[string]template.Source{}
	switch {
	case cfg.Template != "":
		if _, err := template.FormatOf(cfg.Template); err != nil {
			return nil, "", err
		}
		sources[ProjectSourceName] = template.FileSource{Path: cfg.Template}
	case cfg.ImportDir != "":
		sources[ProjectSourceName] = template.DirSource{
			Root: cfg.ImportDir,
			Options: template.ImportOptions{
				Ignore:       cfg.ImportIgnore,
				MaxFileBytes: cfg.MaxFileBytes,
			},
		}
	default:
		return sources, session.DefaultSourceName, nil
	}
	return sources, ProjectSourceName, nil
}

// compress gzips responses except WebSocket upgrades, which need the
// raw connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Manager returns the workspace manager.
func (s *Server) Manager() *session.Manager {
	return s.manager
}

// Metrics returns the metrics registry.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run listens on the configured address until Shutdown is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes every workspace so open
// streams terminate, and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	s.manager.Close()
	err := s.http.Shutdown(ctx)
	_ = s.logger.Sync()
	return err
}
