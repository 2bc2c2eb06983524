package leads

import (
	"context"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/status"
)

// ListFilter selects and pages leads. Scope is applied before pagination so
// totals never count records the requester cannot see.
type ListFilter struct {
	Scope    Scope
	Status   status.Status
	Search   string
	Page     int
	PageSize int
}

// ActivityEntry is one flattened status-history event for the dashboard
// activity feed.
type ActivityEntry struct {
	LeadID    string        `json:"leadId"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	ToStatus  status.Status `json:"toStatus"`
	ChangedBy string        `json:"changedBy,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// HourCount is the number of leads created within one hour bucket. Hours
// with no leads are omitted.
type HourCount struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// Store is the persistence contract for Lead aggregates. Implementations
// must make ApplyTransition a single atomic write: the status field and the
// history append land together or not at all.
type Store interface {
	// Insert persists a new lead, assigning ID and CreatedAt.
	Insert(ctx context.Context, l *Lead) error

	// Get returns the lead or ErrNotFound. Access checks happen above.
	Get(ctx context.Context, id string) (*Lead, error)

	// List returns one page of in-scope leads plus the total in-scope count.
	// Ordering is newest-first and stable across calls with unchanged data.
	List(ctx context.Context, f ListFilter) ([]*Lead, int, error)

	// UpdateProfile applies a profile patch and returns the updated lead.
	// It never touches status, statusHistory or buyerCode.
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*Lead, error)

	// Delete removes the lead and its embedded history permanently.
	Delete(ctx context.Context, id string) error

	// ApplyTransition sets the status, appends the history entry and, when
	// buyerCode is non-nil, sets the buyer code, all in one write guarded by
	// the caller's status snapshot. matched is false when the snapshot was
	// stale (a concurrent writer moved the lead first); the caller reloads
	// and retries.
	ApplyTransition(ctx context.Context, id string, from status.Status, entry HistoryEntry, buyerCode *string) (updated *Lead, matched bool, err error)

	// StatusCounts groups in-scope leads by status. Statuses with zero leads
	// are absent from the map.
	StatusCounts(ctx context.Context, scope Scope) (map[status.Status]int, error)

	// Count returns the total number of in-scope leads.
	Count(ctx context.Context, scope Scope) (int, error)

	// RecentActivity flattens every in-scope lead's history into one stream,
	// newest first, truncated to limit.
	RecentActivity(ctx context.Context, scope Scope, limit int) ([]ActivityEntry, error)

	// CreatedPerHour buckets in-scope lead creations by hour since the given
	// time, ascending. Empty hours are omitted.
	CreatedPerHour(ctx context.Context, scope Scope, since time.Time) ([]HourCount, error)
}

// ProfilePatch carries the mutable profile attributes. Nil fields are left
// unchanged. Status and history have no representation here on purpose:
// profile updates cannot reach them.
type ProfilePatch struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	DOB             *string
	Address         *string
	Notes           *string
	ApplicationType *string
	Lawsuit         *string
	Fields          []Field // nil keeps existing fields; non-nil replaces
}
