// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/learnable-ai/companion/internal/errs"
	"github.com/learnable-ai/companion/internal/gateway"
	"github.com/learnable-ai/companion/internal/logger"
	"go.uber.org/zap"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewAPIKeyRequiredError creates a 401 error for a missing credential
func NewAPIKeyRequiredError() *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "API_KEY_REQUIRED",
		Message: errs.ErrMissingAPIKey.Error(),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// FromError maps domain and gateway errors onto an APIError.
func FromError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, errs.ErrMissingAPIKey):
		return NewAPIKeyRequiredError()
	case errors.Is(err, errs.ErrMissingInput):
		return &APIError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, errs.ErrUnsupportedType), errors.Is(err, errs.ErrFileTooLarge):
		return &APIError{Status: http.StatusUnprocessableEntity, Code: "INVALID_FILE", Message: err.Error()}
	case errors.Is(err, errs.ErrFileNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, errs.ErrNoQuiz), errors.Is(err, errs.ErrNoFlashcards), errors.Is(err, errs.ErrNoMindmap):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_GENERATED", Message: err.Error()}
	case errors.Is(err, errs.ErrNotLoggedIn):
		return &APIError{Status: http.StatusConflict, Code: "NOT_LOGGED_IN", Message: err.Error()}
	}

	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		out := &APIError{Status: http.StatusBadGateway, Code: "BACKEND_" + strings.ToUpper(string(gerr.Kind)), Message: gerr.Error()}
		switch gerr.Kind {
		case gateway.Timeout:
			out.Status = http.StatusGatewayTimeout
		case gateway.InvalidInput:
			out.Status = http.StatusBadRequest
		case gateway.Precondition:
			out.Status = http.StatusUnauthorized
		}
		return out
	}

	return NewInternalError("An unexpected error occurred", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = FromError(err)
		if apiErr.Code == "INTERNAL_ERROR" && !isDevelopment() {
			apiErr.Details = ""
		}
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("function", "ErrorHandler"),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", apiErr.Status),
			zap.Error(err),
		)
	}

	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		logger.Warn("failed to write error response", zap.Error(err))
	}
}

var development atomic.Bool

// SetDevelopment controls whether internal error details reach clients.
func SetDevelopment(on bool) {
	development.Store(on)
}

func isDevelopment() bool {
	return development.Load()
}
