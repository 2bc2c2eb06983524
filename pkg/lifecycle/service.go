// Package lifecycle is the sole mutator of a lead's status and its history.
// Every status change flows through Transition, which pairs the status
// update with the history append in one store write.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/status"
)

// transitionRetries bounds the reload-and-retry loop when a concurrent
// writer invalidates the status snapshot.
const transitionRetries = 3

// Service applies status transitions.
type Service struct {
	store leads.Store
	now   func() time.Time
}

// NewService creates a new transition service.
func NewService(store leads.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Transition moves the lead to requested, appending a history entry that
// records the prior status, the actor and an optional note. When buyerCode
// is non-empty it is set in the same write.
//
// Requesting the current status is allowed and still appends an entry; the
// admin flow uses that to attach a note without changing the state.
//
// Nothing is mutated unless every check passes, and the write itself is a
// single store operation, so the status field and its history entry can
// never diverge.
func (s *Service) Transition(ctx context.Context, id string, requested status.Status, notes, buyerCode string, actor policy.Principal) (*leads.Lead, error) {
	var bc *string
	if buyerCode != "" {
		bc = &buyerCode
	}

	for attempt := 0; attempt < transitionRetries; attempt++ {
		l, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !policy.CanView(actor, l.OrganizationID, l.CreatedBy) {
			return nil, leads.ErrAccessDenied
		}
		if !status.Valid(requested) {
			return nil, fmt.Errorf("%w: %q", leads.ErrInvalidStatus, requested)
		}
		if !policy.CanTransitionStatus(actor) {
			return nil, leads.ErrAccessDenied
		}

		entry := leads.HistoryEntry{
			FromStatus: l.Status,
			ToStatus:   requested,
			Notes:      notes,
			ChangedBy:  actor.ID,
			Timestamp:  s.now().UTC(),
		}
		updated, matched, err := s.store.ApplyTransition(ctx, id, l.Status, entry, bc)
		if err != nil {
			return nil, err
		}
		if matched {
			return updated, nil
		}
		// Snapshot went stale between load and write; reload and try again.
	}
	return nil, fmt.Errorf("transition of lead %s kept conflicting with concurrent updates", id)
}

// History returns the lead's status history, newest first, when the
// requester may view the lead.
func (s *Service) History(ctx context.Context, id string, requester policy.Principal) ([]leads.HistoryEntry, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(requester, l.OrganizationID, l.CreatedBy) {
		return nil, leads.ErrAccessDenied
	}

	out := make([]leads.HistoryEntry, len(l.StatusHistory))
	for i, h := range l.StatusHistory {
		out[len(l.StatusHistory)-1-i] = h
	}
	return out, nil
}
