package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	apierrors "github.com/jordanlanch/leadcrm/pkg/api/errors"
	apimiddleware "github.com/jordanlanch/leadcrm/pkg/api/middleware"
	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/lifecycle"
	"github.com/jordanlanch/leadcrm/pkg/metrics"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/status"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
)

// LeadHandler handles lead CRUD endpoints.
type LeadHandler struct {
	service   *leads.Service
	lifecycle *lifecycle.Service
	userStore users.Store
	validator *validator.Validate
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(service *leads.Service, lifecycleSvc *lifecycle.Service, userStore users.Store) *LeadHandler {
	return &LeadHandler{
		service:   service,
		lifecycle: lifecycleSvc,
		userStore: userStore,
		validator: validator.New(),
	}
}

// Create handles POST /leads.
func (h *LeadHandler) Create(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.service.Create(ctx, leads.CreateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		DOB:             req.DOB,
		Address:         req.Address,
		Notes:           req.Notes,
		ApplicationType: req.ApplicationType,
		Lawsuit:         req.Lawsuit,
		Fields:          fieldsFromMap(req.Fields),
	}, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	metrics.LeadCreated()

	resp, err := h.present(ctx, l)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// List handles GET /leads with optional status, search and paging params.
func (h *LeadHandler) List(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	var st status.Status
	if raw := c.QueryParam("status"); raw != "" {
		st = status.Status(raw)
		if !status.Valid(st) {
			return apierrors.ValidationError(c, leads.ErrInvalidStatus)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := h.service.List(ctx, leads.ListParams{
		Status:   st,
		Search:   c.QueryParam("search"),
		Page:     page,
		PageSize: limit,
	}, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	names, err := nameResolver{h.userStore}.resolve(ctx, leadUserIDs(result.Leads...))
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	data := make([]models.LeadResponse, 0, len(result.Leads))
	for _, l := range result.Leads {
		data = append(data, presentLead(l, names))
	}

	return c.JSON(http.StatusOK, models.LeadListResponse{
		Data: data,
		Pagination: models.PaginationInfo{
			Page:       result.Page,
			Limit:      result.PageSize,
			Total:      result.Total,
			TotalPages: result.Pages,
		},
	})
}

// Get handles GET /leads/:id.
func (h *LeadHandler) Get(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	l, err := h.service.Get(ctx, c.Param("id"), p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	resp, err := h.present(ctx, l)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// History handles GET /leads/:id/history, newest entry first.
func (h *LeadHandler) History(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.lifecycle.History(ctx, c.Param("id"), p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	actorIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		actorIDs = append(actorIDs, e.ChangedBy)
	}
	names, err := nameResolver{h.userStore}.resolve(ctx, actorIDs)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	resp := make([]models.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, models.HistoryEntryResponse{
			FromStatus:    string(e.FromStatus),
			ToStatus:      string(e.ToStatus),
			Notes:         e.Notes,
			ChangedBy:     e.ChangedBy,
			ChangedByName: nameOr(names, e.ChangedBy),
			Timestamp:     e.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Update handles PUT /leads/:id. Profile fields only; the status and its
// history cannot be reached from here.
func (h *LeadHandler) Update(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	var req models.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	in := leads.UpdateInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		DOB:             req.DOB,
		Address:         req.Address,
		Notes:           req.Notes,
		ApplicationType: req.ApplicationType,
		Lawsuit:         req.Lawsuit,
	}
	if req.Fields != nil {
		in.Fields = fieldsFromMap(req.Fields)
	}

	l, err := h.service.UpdateProfile(ctx, c.Param("id"), in, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	resp, err := h.present(ctx, l)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /leads/:id.
func (h *LeadHandler) Delete(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, c.Param("id"), p); err != nil {
		return apierrors.Domain(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Lead deleted",
	})
}

func (h *LeadHandler) present(ctx context.Context, l *leads.Lead) (models.LeadResponse, error) {
	names, err := nameResolver{h.userStore}.resolve(ctx, leadUserIDs(l))
	if err != nil {
		return models.LeadResponse{}, err
	}
	return presentLead(l, names), nil
}

// fieldsFromMap flattens the request's field map in stable key order.
func fieldsFromMap(m map[string]string) []leads.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]leads.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, leads.Field{Key: k, Value: m[k]})
	}
	return fields
}
