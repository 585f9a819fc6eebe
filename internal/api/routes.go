// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Files     FileStore
	Responder Responder
	Version   string
	AIEnabled bool
	Logger    *slog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Page   PageHandler
	Files  FilesHandler
	Upload UploadHandler
	Chat   ChatHandler
	Health HealthHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files := NewFilesHandler(deps.Files, logger)
	return &Handlers{
		Page:   files,
		Files:  files,
		Upload: NewUploadHandler(deps.Files, logger),
		Chat:   NewChatHandler(deps.Responder, logger),
		Health: NewHealthHandler(deps.Version, deps.Files.Kind(), deps.AIEnabled),
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/", handlers.Page.HandleIndex)
	e.GET("/uploads/:filename", handlers.Page.HandleServeUpload)
	e.POST("/upload", handlers.Upload.HandleUpload)
	e.POST("/chat", handlers.Chat.HandleChat)

	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/api/files", handlers.Files.HandleListFiles)
}

// RegisterMetricsRoute exposes the Prometheus registry on path
func RegisterMetricsRoute(e *echo.Echo, path string) {
	e.GET(path, echo.WrapHandler(promhttp.Handler()))
}

// MiddlewareOptions configures SetupMiddleware
type MiddlewareOptions struct {
	Logger      *slog.Logger
	BodyLimit   string
	Development bool
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, opts MiddlewareOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.HTTPErrorHandler = NewErrorHandler(logger, opts.Development)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}
}
