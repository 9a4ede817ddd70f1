// handlers_health.go - Health check handlers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const probeTimeout = 5 * time.Second

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	backend BackendProber
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, backend BackendProber) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		backend: backend,
	}
}

type backendHealth struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleHealth returns server health status and probes the backend.
// Pass ?probe=false to skip the backend call.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	resp := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}

	if h.backend != nil && c.QueryParam("probe") != "false" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
		defer cancel()

		bh := backendHealth{URL: h.backend.BaseURL()}
		msg, err := h.backend.Hello(ctx)
		if err != nil {
			bh.Error = err.Error()
			resp["status"] = "degraded"
		} else {
			bh.Reachable = true
			bh.Message = msg
		}
		resp["backend"] = bh
	}

	return c.JSON(http.StatusOK, resp)
}
