// Package reporting computes the read-only dashboard views: counts by
// status, bucketed counts, the recent activity feed and the hourly creation
// series. Everything is computed on demand against the lead store; nothing
// is cached or materialized, and nothing here mutates state.
package reporting

import (
	"context"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/status"
)

// DefaultActivityLimit bounds the activity feed when the caller does not ask
// for a specific size.
const DefaultActivityLimit = 10

// DefaultWindow is the trailing window for the creation time series.
const DefaultWindow = 24 * time.Hour

// Service derives aggregates over the lead store.
type Service struct {
	store leads.Store
	now   func() time.Time
}

// NewService creates a new reporting service.
func NewService(store leads.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// StatusCounts groups in-scope leads by status. Statuses with no leads are
// absent; callers treat a missing key as zero.
func (s *Service) StatusCounts(ctx context.Context, requester policy.Principal) (map[status.Status]int, error) {
	return s.store.StatusCounts(ctx, leads.ScopeFor(requester))
}

// BucketCounts sums the status counts into the named dashboard buckets.
// Statuses outside every bucket contribute to none; buckets with no leads
// report zero rather than being omitted.
func (s *Service) BucketCounts(ctx context.Context, requester policy.Principal) (map[string]int, error) {
	counts, err := s.store.StatusCounts(ctx, leads.ScopeFor(requester))
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(status.Buckets))
	for name, members := range status.Buckets {
		total := 0
		for _, st := range members {
			total += counts[st]
		}
		out[name] = total
	}
	return out, nil
}

// TotalLeads returns the number of in-scope leads. It always equals the sum
// of the StatusCounts values for the same requester.
func (s *Service) TotalLeads(ctx context.Context, requester policy.Principal) (int, error) {
	return s.store.Count(ctx, leads.ScopeFor(requester))
}

// RecentActivity returns the newest limit status changes across all in-scope
// leads, as one flattened stream.
func (s *Service) RecentActivity(ctx context.Context, requester policy.Principal, limit int) ([]leads.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > 100 {
		limit = 100
	}
	return s.store.RecentActivity(ctx, leads.ScopeFor(requester), limit)
}

// TimeSeries buckets in-scope lead creations into hourly counts over the
// trailing window. Hours with no leads are omitted; callers render gaps as
// zero.
func (s *Service) TimeSeries(ctx context.Context, requester policy.Principal, window time.Duration) ([]leads.HourCount, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	since := s.now().UTC().Add(-window)
	return s.store.CreatedPerHour(ctx, leads.ScopeFor(requester), since)
}
