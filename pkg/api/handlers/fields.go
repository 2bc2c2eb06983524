package handlers

import (
	"net/http"

	apierrors "github.com/jordanlanch/leadcrm/pkg/api/errors"
	"github.com/jordanlanch/leadcrm/pkg/fieldschema"
	"github.com/labstack/echo/v4"
)

// FieldsHandler serves the dynamic intake field descriptors.
type FieldsHandler struct{}

// NewFieldsHandler creates a new fields handler.
func NewFieldsHandler() *FieldsHandler {
	return &FieldsHandler{}
}

// Types handles GET /fields and lists the known application types.
func (h *FieldsHandler) Types(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"applicationTypes": fieldschema.Types(),
	})
}

// Get handles GET /fields/:applicationType.
func (h *FieldsHandler) Get(c echo.Context) error {
	appType := c.Param("applicationType")
	defs, ok := fieldschema.Get(appType)
	if !ok {
		return apierrors.NotFoundError(c, "application type")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"applicationType": appType,
		"fields":          defs,
	})
}
