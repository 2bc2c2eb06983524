package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/jordanlanch/leadcrm/pkg/api/errors"
	apimiddleware "github.com/jordanlanch/leadcrm/pkg/api/middleware"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/reporting"
	"github.com/jordanlanch/leadcrm/pkg/users"
	"github.com/labstack/echo/v4"
)

// StatsHandler serves the dashboard aggregates. Everything is computed on
// demand against live data; responses are never cached.
type StatsHandler struct {
	reporting *reporting.Service
	userStore users.Store
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(r *reporting.Service, userStore users.Store) *StatsHandler {
	return &StatsHandler{reporting: r, userStore: userStore}
}

// Get handles GET /leads/stats.
func (h *StatsHandler) Get(c echo.Context) error {
	p, ok := apimiddleware.PrincipalFrom(c)
	if !ok {
		return apierrors.UnauthorizedError(c, "no principal on context")
	}

	limit, _ := strconv.Atoi(c.QueryParam("activityLimit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	statusCounts, err := h.reporting.StatusCounts(ctx, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	bucketCounts, err := h.reporting.BucketCounts(ctx, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	total, err := h.reporting.TotalLeads(ctx, p)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	activity, err := h.reporting.RecentActivity(ctx, p, limit)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	series, err := h.reporting.TimeSeries(ctx, p, 0)
	if err != nil {
		return apierrors.Domain(c, err)
	}

	resolver := nameResolver{h.userStore}
	actorIDs := make([]string, 0, len(activity))
	for _, a := range activity {
		actorIDs = append(actorIDs, a.ChangedBy)
	}
	names, err := resolver.resolve(ctx, actorIDs)
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}

	resp := models.StatsResponse{
		StatusCounts:   make(map[string]int, len(statusCounts)),
		BucketCounts:   bucketCounts,
		TotalLeads:     total,
		RecentActivity: make([]models.ActivityItem, 0, len(activity)),
		ChartData:      make([]models.ChartPoint, 0, len(series)),
	}
	for st, n := range statusCounts {
		resp.StatusCounts[string(st)] = n
	}
	for _, a := range activity {
		resp.RecentActivity = append(resp.RecentActivity, models.ActivityItem{
			LeadID:        a.LeadID,
			LeadName:      a.FirstName + " " + a.LastName,
			ToStatus:      string(a.ToStatus),
			ChangedByName: nameOr(names, a.ChangedBy),
			Timestamp:     a.Timestamp,
		})
	}
	for _, hc := range series {
		resp.ChartData = append(resp.ChartData, models.ChartPoint{
			Name:  hc.Hour.Format("15:04"),
			Value: hc.Count,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
