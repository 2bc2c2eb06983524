package handlers

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	apierrors "github.com/jordanlanch/leadcrm/pkg/api/errors"
	apimiddleware "github.com/jordanlanch/leadcrm/pkg/api/middleware"
	"github.com/jordanlanch/leadcrm/pkg/export"
	"github.com/jordanlanch/leadcrm/pkg/lifecycle"
	"github.com/jordanlanch/leadcrm/pkg/metrics"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/status"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
)

// AdminHandler handles admin-only lead operations: status transitions and
// bulk export.
type AdminHandler struct {
	lifecycle *lifecycle.Service
	exporter  *export.Service
	userStore users.Store
	validator *validator.Validate
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(lc *lifecycle.Service, exporter *export.Service, userStore users.Store) *AdminHandler {
	return &AdminHandler{
		lifecycle: lc,
		exporter:  exporter,
		userStore: userStore,
		validator: validator.New(),
	}
}

// UpdateStatus handles PUT /admin/leads/:id/status. The transition lands
// atomically with its history entry; concurrent writers never lose entries.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	var req models.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	l, err := h.lifecycle.Transition(ctx, c.Param("id"), status.Status(req.Status), req.Notes, req.BuyerCode, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	metrics.StatusTransition(string(l.Status))

	names, err := nameResolver{h.userStore}.resolve(ctx, leadUserIDs(l))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, presentLead(l, names))
}

// Export handles GET /admin/leads/export?format=csv|xlsx and streams the
// generated file as a download.
func (h *AdminHandler) Export(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatCSV
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var buf bytes.Buffer
	if err := h.exporter.Export(ctx, p, format, &buf); err != nil {
		return apierrors.Domain(c, err)
	}

	contentType := "text/csv"
	if format == export.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+export.Filename(format, time.Now())+`"`)
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
