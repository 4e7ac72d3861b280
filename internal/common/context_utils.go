package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	UserIDKey    contextKey = "user_id"
)

// Error codes carried in ErrorResponse.Error.Code
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeClient       = "CLIENT_ERROR"
	CodeServer       = "SERVER_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRejected     = "REJECTED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeTimeout      = "UPSTREAM_TIMEOUT"
)

// Pagination bounds for audit trail queries
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
	MaxPageOffset    = 1_000_000
)

// ErrorResponse is the JSON envelope of every failed request
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse builds the envelope
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	resp := &ErrorResponse{}
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return resp
}

// SendError writes the envelope with the given status
func SendError(c echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, CreateErrorResponse(code, message, details))
}

// SendValidationError reports one invalid input field
func SendValidationError(c echo.Context, field, message string) error {
	return SendError(c, http.StatusBadRequest, CodeValidation, "Validation failed", map[string]string{field: message})
}

func SendClientError(c echo.Context, message string) error {
	return SendError(c, http.StatusBadRequest, CodeClient, message, nil)
}

func SendServerError(c echo.Context, message string) error {
	return SendError(c, http.StatusInternalServerError, CodeServer, message, nil)
}

func SendNotFoundError(c echo.Context, resource string) error {
	return SendError(c, http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

func SendUnauthorizedError(c echo.Context) error {
	return SendError(c, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized access", nil)
}

// SendRedirectError tells the dashboard where the gate sends the user
func SendRedirectError(c echo.Context, status int, code, message, location string) error {
	var details map[string]string
	if location != "" {
		details = map[string]string{"redirect": location}
	}
	return SendError(c, status, code, message, details)
}

// SendUpstreamError reports a failure of the analytics API
func SendUpstreamError(c echo.Context, message string) error {
	return SendError(c, http.StatusBadGateway, CodeUpstream, message, nil)
}

// ValidateRequiredString rejects blank values
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePaginationParams clamps limit into [1, MaxPageLimit] and offset to
// be non-negative. Offsets past MaxPageOffset are rejected.
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	offset = max(offset, 0)
	if offset > MaxPageOffset {
		return 0, 0, fmt.Errorf("offset cannot exceed %d", MaxPageOffset)
	}
	return limit, offset, nil
}

// GetSessionIDFromContext returns the dashboard session bound to ctx
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}

// GetUserIDFromContext returns the backend user bound to ctx
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
