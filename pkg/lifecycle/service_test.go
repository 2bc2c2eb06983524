package lifecycle

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
	admin    = policy.Principal{ID: "000000000000000000000001", Role: policy.RoleAdmin, OrganizationID: "0000000000000000000000aa"}
	agent    = policy.Principal{ID: "000000000000000000000002", Role: policy.RoleAgent, OrganizationID: "0000000000000000000000aa"}
	outsider = policy.Principal{ID: "000000000000000000000003", Role: policy.RoleAdmin, OrganizationID: "0000000000000000000000bb"}
)

func setup(t *testing.T) (*Service, *leads.Service) {
	t.Helper()
	store := leads.NewMemoryStore()
	return NewService(store), leads.NewService(store)
}

func createLead(t *testing.T, ls *leads.Service) *leads.Lead {
	t.Helper()
	l, err := ls.Create(context.Background(), leads.CreateInput{FirstName: "Jane", LastName: "Doe"}, agent)
	require.NoError(t, err)
	return l
}

func TestTransition_AppendsHistoryAndSetsStatus(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	updated, err := s.Transition(context.Background(), l.ID, status.Verified, "docs checked", "", admin)
	require.NoError(t, err)

	assert.Equal(t, status.Verified, updated.Status)
	require.Len(t, updated.StatusHistory, 1)
	entry := updated.StatusHistory[0]
	assert.Equal(t, status.Pending, entry.FromStatus)
	assert.Equal(t, status.Verified, entry.ToStatus)
	assert.Equal(t, "docs checked", entry.Notes)
	assert.Equal(t, admin.ID, entry.ChangedBy)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestTransition_InvalidStatusMutatesNothing(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	_, err := s.Transition(context.Background(), l.ID, "BOGUS_STATUS", "", "", admin)
	assert.ErrorIs(t, err, leads.ErrInvalidStatus)

	got, err := ls.Get(context.Background(), l.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, status.Pending, got.Status)
	assert.Empty(t, got.StatusHistory)
}

func TestTransition_AgentDenied(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	_, err := s.Transition(context.Background(), l.ID, status.Verified, "", "", agent)
	assert.ErrorIs(t, err, leads.ErrAccessDenied)

	got, err := ls.Get(context.Background(), l.ID, agent)
	require.NoError(t, err)
	assert.Empty(t, got.StatusHistory)
}

func TestTransition_OutsiderDeniedBeforeStatusCheck(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	// An admin from another organization cannot even view the lead, so the
	// denial fires regardless of the requested status.
	_, err := s.Transition(context.Background(), l.ID, "BOGUS_STATUS", "", "", outsider)
	assert.ErrorIs(t, err, leads.ErrAccessDenied)
}

func TestTransition_UnknownLead(t *testing.T) {
	s, _ := setup(t)

	_, err := s.Transition(context.Background(), "000000000000000000000099", status.Verified, "", "", admin)
	assert.ErrorIs(t, err, leads.ErrNotFound)
}

func TestTransition_SameStatusStillRecorded(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	_, err := s.Transition(context.Background(), l.ID, status.Working, "", "", admin)
	require.NoError(t, err)
	updated, err := s.Transition(context.Background(), l.ID, status.Working, "re-affirmed", "", admin)
	require.NoError(t, err)

	assert.Equal(t, status.Working, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	last := updated.StatusHistory[1]
	assert.Equal(t, status.Working, last.FromStatus)
	assert.Equal(t, status.Working, last.ToStatus)
	assert.Equal(t, "re-affirmed", last.Notes)
}

func TestTransition_BuyerCode(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	updated, err := s.Transition(context.Background(), l.ID, status.Paid, "", "BUYER-42", admin)
	require.NoError(t, err)
	assert.Equal(t, "BUYER-42", updated.BuyerCode)

	// Omitting the code on a later transition keeps the existing one.
	updated, err = s.Transition(context.Background(), l.ID, status.Billable, "", "", admin)
	require.NoError(t, err)
	assert.Equal(t, "BUYER-42", updated.BuyerCode)
}

func TestTransition_PairingInvariant(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	sequence := []status.Status{status.Working, status.Attempt1, status.CallBack, status.Verified, status.Paid}
	for _, next := range sequence {
		updated, err := s.Transition(context.Background(), l.ID, next, "", "", admin)
		require.NoError(t, err)
		require.NotEmpty(t, updated.StatusHistory)
		assert.Equal(t, updated.Status, updated.StatusHistory[len(updated.StatusHistory)-1].ToStatus)
	}

	got, err := ls.Get(context.Background(), l.ID, admin)
	require.NoError(t, err)
	require.Len(t, got.StatusHistory, len(sequence))
	for i := 1; i < len(got.StatusHistory); i++ {
		prev, cur := got.StatusHistory[i-1], got.StatusHistory[i]
		assert.Equal(t, prev.ToStatus, cur.FromStatus, "entries chain through the history")
		assert.False(t, cur.Timestamp.Before(prev.Timestamp), "timestamps are non-decreasing")
	}
}

func TestTransition_ConcurrentWritersLoseNoUpdates(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	const writers = 8
	done := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			_, err := s.Transition(context.Background(), l.ID, status.Working, "", "", admin)
			done <- err
		}()
	}
	for i := 0; i < writers; i++ {
		require.NoError(t, <-done)
	}

	got, err := ls.Get(context.Background(), l.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, status.Working, got.Status)
	assert.Len(t, got.StatusHistory, writers, "every writer's entry survives")
	assert.Equal(t, status.Pending, got.StatusHistory[0].FromStatus)
	for i := 1; i < len(got.StatusHistory); i++ {
		assert.Equal(t, status.Working, got.StatusHistory[i].FromStatus)
	}
}

func TestHistory_NewestFirst(t *testing.T) {
	s, ls := setup(t)
	l := createLead(t, ls)

	s.now = func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC) }
	_, err := s.Transition(context.Background(), l.ID, status.Working, "", "", admin)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC) }
	_, err = s.Transition(context.Background(), l.ID, status.Verified, "", "", admin)
	require.NoError(t, err)

	hist, err := s.History(context.Background(), l.ID, agent)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, status.Verified, hist[0].ToStatus)
	assert.Equal(t, status.Working, hist[1].ToStatus)

	_, err = s.History(context.Background(), l.ID, outsider)
	assert.ErrorIs(t, err, leads.ErrAccessDenied)
}
