package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/status"
)

var (
	superAdmin = policy.Principal{ID: "000000000000000000000001", Role: policy.RoleSuperAdmin}
	orgAAgent  = policy.Principal{ID: "000000000000000000000002", Role: policy.RoleAgent, OrganizationID: "0000000000000000000000aa"}
)

func insertLead(t *testing.T, store *leads.MemoryStore, st status.Status, orgID, createdBy string, createdAt time.Time) *leads.Lead {
	t.Helper()
	l := &leads.Lead{
		FirstName:      "Test",
		LastName:       "Lead",
		Status:         st,
		OrganizationID: orgID,
		CreatedBy:      createdBy,
		CreatedAt:      createdAt,
	}
	require.NoError(t, store.Insert(context.Background(), l))
	return l
}

func transitionAt(t *testing.T, store *leads.MemoryStore, l *leads.Lead, from, to status.Status, at time.Time) {
	t.Helper()
	_, matched, err := store.ApplyTransition(context.Background(), l.ID, from, leads.HistoryEntry{
		FromStatus: from, ToStatus: to, Timestamp: at,
	}, nil)
	require.NoError(t, err)
	require.True(t, matched)
}

func TestStatusCounts(t *testing.T) {
	store := leads.NewMemoryStore()
	s := NewService(store)
	now := time.Now().UTC()

	insertLead(t, store, status.Pending, "0000000000000000000000aa", orgAAgent.ID, now)
	insertLead(t, store, status.Working, "0000000000000000000000aa", orgAAgent.ID, now)
	insertLead(t, store, status.Working, "0000000000000000000000bb", "other", now)

	counts, err := s.StatusCounts(context.Background(), superAdmin)
	require.NoError(t, err)
	assert.Equal(t, map[status.Status]int{status.Pending: 1, status.Working: 2}, counts)
	_, present := counts[status.Paid]
	assert.False(t, present, "zero-count statuses are omitted")

	// Scoped view excludes the other organization.
	counts, err = s.StatusCounts(context.Background(), orgAAgent)
	require.NoError(t, err)
	assert.Equal(t, map[status.Status]int{status.Pending: 1, status.Working: 1}, counts)
}

func TestStatusCountsSumMatchesTotal(t *testing.T) {
	store := leads.NewMemoryStore()
	s := NewService(store)
	now := time.Now().UTC()

	for _, st := range []status.Status{status.Pending, status.Working, status.Paid, status.Working, status.Rejected} {
		insertLead(t, store, st, "0000000000000000000000aa", orgAAgent.ID, now)
	}

	counts, err := s.StatusCounts(context.Background(), orgAAgent)
	require.NoError(t, err)
	total, err := s.TotalLeads(context.Background(), orgAAgent)
	require.NoError(t, err)

	sum := 0
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, total, sum)
}

func TestBucketCounts(t *testing.T) {
	store := leads.NewMemoryStore()
	s := NewService(store)
	now := time.Now().UTC()

	insertLead(t, store, status.Working, "", superAdmin.ID, now)  // PIPELINE
	insertLead(t, store, status.Attempt2, "", superAdmin.ID, now) // PIPELINE
	insertLead(t, store, status.Paid, "", superAdmin.ID, now)     // CONVERSION
	insertLead(t, store, status.Pending, "", superAdmin.ID, now)  // no bucket

	buckets, err := s.BucketCounts(context.Background(), superAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, buckets["PIPELINE"])
	assert.Equal(t, 1, buckets["CONVERSION"])
	assert.Equal(t, 0, buckets["RISK"], "empty buckets report zero")
}

func TestRecentActivity(t *testing.T) {
	store := leads.NewMemoryStore()
	s := NewService(store)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	l1 := insertLead(t, store, status.Pending, "", superAdmin.ID, base)
	l2 := insertLead(t, store, status.Pending, "", superAdmin.ID, base)

	transitionAt(t, store, l1, status.Pending, status.Working, base.Add(1*time.Hour))
	transitionAt(t, store, l2, status.Pending, status.Verified, base.Add(2*time.Hour))
	transitionAt(t, store, l1, status.Working, status.Paid, base.Add(3*time.Hour))

	feed, err := s.RecentActivity(context.Background(), superAdmin, 2)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, status.Paid, feed[0].ToStatus)
	assert.Equal(t, status.Verified, feed[1].ToStatus)

	// Default limit kicks in for non-positive values.
	feed, err = s.RecentActivity(context.Background(), superAdmin, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestRecentActivityScoped(t *testing.T) {
	store := leads.NewMemoryStore()
	s := NewService(store)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	mine := insertLead(t, store, status.Pending, "0000000000000000000000aa", orgAAgent.ID, base)
	foreign := insertLead(t, store, status.Pending, "0000000000000000000000bb", "other", base)
	transitionAt(t, store, mine, status.Pending, status.Working, base.Add(time.Hour))
	transitionAt(t, store, foreign, status.Pending, status.Paid, base.Add(2*time.Hour))

	feed, err := s.RecentActivity(context.Background(), orgAAgent, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, mine.ID, feed[0].LeadID)
}

func TestTimeSeries(t *testing.T) {
	store := leads.NewMemoryStore()
	s := NewService(store)
	now := time.Date(2025, 1, 2, 12, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	insertLead(t, store, status.Pending, "", superAdmin.ID, now.Add(-30*time.Minute)) // 12:00
	insertLead(t, store, status.Pending, "", superAdmin.ID, now.Add(-90*time.Minute)) // 11:00
	insertLead(t, store, status.Pending, "", superAdmin.ID, now.Add(-70*time.Minute)) // 11:00
	insertLead(t, store, status.Pending, "", superAdmin.ID, now.Add(-48*time.Hour))   // outside window

	series, err := s.TimeSeries(context.Background(), superAdmin, 0)
	require.NoError(t, err)
	require.Len(t, series, 2, "hours with no leads are omitted")
	assert.Equal(t, time.Date(2025, 1, 2, 11, 0, 0, 0, time.UTC), series[0].Hour)
	assert.Equal(t, 2, series[0].Count)
	assert.Equal(t, time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC), series[1].Hour)
	assert.Equal(t, 1, series[1].Count)
}
