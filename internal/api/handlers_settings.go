// handlers_settings.go - Credential and session handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/settings"
)

// SettingsHandlerImpl implements the SettingsHandler interface
type SettingsHandlerImpl struct {
	store *settings.Store
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(store *settings.Store) SettingsHandler {
	return &SettingsHandlerImpl{store: store}
}

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *SettingsHandlerImpl) apiKeyView() map[string]interface{} {
	return map[string]interface{}{
		"hasApiKey": h.store.HasAPIKey(),
		"apiKey":    maskKey(h.store.APIKey()),
	}
}

// HandleGetAPIKey reports whether a key is stored, masked
func (h *SettingsHandlerImpl) HandleGetAPIKey(c echo.Context) error {
	return c.JSON(http.StatusOK, h.apiKeyView())
}

// HandleSetAPIKey stores a new key
func (h *SettingsHandlerImpl) HandleSetAPIKey(c echo.Context) error {
	var req apiKeyRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return NewValidationError("apiKey")
	}
	if err := h.store.SetAPIKey(req.APIKey); err != nil {
		return NewInternalError("failed to save API key", err)
	}
	return c.JSON(http.StatusOK, h.apiKeyView())
}

// HandleDeleteAPIKey forgets the stored key
func (h *SettingsHandlerImpl) HandleDeleteAPIKey(c echo.Context) error {
	if err := h.store.ClearAPIKey(); err != nil {
		return NewInternalError("failed to clear API key", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetSession returns the local user, if any
func (h *SettingsHandlerImpl) HandleGetSession(c echo.Context) error {
	u, ok := h.store.User()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"loggedIn":  ok,
		"user":      u,
		"hasApiKey": h.store.HasAPIKey(),
	})
}

// HandleLogin records a local user
func (h *SettingsHandlerImpl) HandleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if strings.TrimSpace(req.Username) == "" {
		return NewValidationError("username")
	}
	u, err := h.store.Login(req.Username, req.Email)
	if err != nil {
		return NewInternalError("failed to save session", err)
	}
	return c.JSON(http.StatusOK, u)
}

// HandleLogout clears the user and the stored key
func (h *SettingsHandlerImpl) HandleLogout(c echo.Context) error {
	if err := h.store.Logout(); err != nil {
		return FromError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
