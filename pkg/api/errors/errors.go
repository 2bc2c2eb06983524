// Package errors centralises HTTP error responses. Internal details are
// logged server-side; clients always receive a generic message.
package errors

import (
	stderrors "errors"
	"log"
	"net/http"

	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a 400 response. The underlying error is logged,
// never exposed.
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "The request contains invalid or missing fields",
	})
}

// DatabaseError returns a 500 response for storage failures.
func DatabaseError(c echo.Context, err error) error {
	log.Printf("[DATABASE ERROR] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "database_error",
		Message: "A storage error occurred, please try again later",
	})
}

// InternalError returns a 500 response for unexpected failures.
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An unexpected error occurred",
	})
}

// UnauthorizedError returns a 401 response. The reason is logged, not echoed.
func UnauthorizedError(c echo.Context, reason string) error {
	log.Printf("[UNAUTHORIZED] %s %s: %s", c.Request().Method, c.Request().URL.Path, reason)
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "Authentication required",
	})
}

// ForbiddenError returns a 403 response. The body is deliberately identical
// for every denial so callers cannot probe what exists or why access failed.
func ForbiddenError(c echo.Context, reason string) error {
	log.Printf("[FORBIDDEN] %s %s: %s", c.Request().Method, c.Request().URL.Path, reason)
	return c.JSON(http.StatusForbidden, models.ErrorResponse{
		Error:   "forbidden",
		Message: "You do not have access to this resource",
	})
}

// NotFoundError returns a 404 response for the named resource kind.
func NotFoundError(c echo.Context, resource string) error {
	log.Printf("[NOT FOUND] %s %s: %s", c.Request().Method, c.Request().URL.Path, resource)
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found",
	})
}

// ConflictError returns a 409 response with the given message.
func ConflictError(c echo.Context, message string) error {
	log.Printf("[CONFLICT] %s %s: %s", c.Request().Method, c.Request().URL.Path, message)
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message,
	})
}

// Domain maps a service-layer error to the matching HTTP response. Handlers
// call this after any lead or lifecycle operation so the status mapping
// lives in one place.
func Domain(c echo.Context, err error) error {
	switch {
	case stderrors.Is(err, leads.ErrValidation), stderrors.Is(err, leads.ErrInvalidStatus):
		return ValidationError(c, err)
	case stderrors.Is(err, leads.ErrNotFound):
		return NotFoundError(c, "lead")
	case stderrors.Is(err, leads.ErrAccessDenied):
		return ForbiddenError(c, err.Error())
	default:
		return InternalError(c, err)
	}
}
