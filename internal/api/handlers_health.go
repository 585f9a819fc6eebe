// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/filechat/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	backend   models.BackendKind
	aiEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, backend models.BackendKind, aiEnabled bool) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		backend:   backend,
		aiEnabled: aiEnabled,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"backend": h.backend,
		"ai":      h.aiEnabled,
	})
}
