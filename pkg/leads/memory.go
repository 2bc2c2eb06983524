package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jordanlanch/leadcrm/pkg/status"
)

// MemoryStore is an in-memory Store used by the test suite and as a local
// development fallback when no MongoDB is configured. A single mutex
// serializes writes, which trivially satisfies the atomicity the Store
// contract demands from ApplyTransition.
type MemoryStore struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	order []string // insertion order, for stable listing
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leads: make(map[string]*Lead)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Insert(ctx context.Context, l *Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.ID = primitive.NewObjectID().Hex()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	cp := cloneLead(l)
	m.leads[l.ID] = cp
	m.order = append(m.order, l.ID)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneLead(l), nil
}

func (m *MemoryStore) List(ctx context.Context, f ListFilter) ([]*Lead, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var in []*Lead
	for _, id := range m.order {
		l := m.leads[id]
		if !f.Scope.matches(l) {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.Search != "" && !searchMatches(l, f.Search) {
			continue
		}
		in = append(in, l)
	}

	// Newest first, insertion order as tiebreak (already oldest-first, so
	// reversing keeps the ordering stable).
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].CreatedAt.After(in[j].CreatedAt)
	})

	total := len(in)
	page, size := normalizePage(f.Page, f.PageSize)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	out := make([]*Lead, 0, end-start)
	for _, l := range in[start:end] {
		out = append(out, cloneLead(l))
	}
	return out, total, nil
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leads[id]
	if !ok {
		return nil, ErrNotFound
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&l.FirstName, patch.FirstName)
	apply(&l.LastName, patch.LastName)
	apply(&l.Email, patch.Email)
	apply(&l.Phone, patch.Phone)
	apply(&l.DOB, patch.DOB)
	apply(&l.Address, patch.Address)
	apply(&l.Notes, patch.Notes)
	apply(&l.ApplicationType, patch.ApplicationType)
	apply(&l.Lawsuit, patch.Lawsuit)
	if patch.Fields != nil {
		l.Fields = append([]Field(nil), patch.Fields...)
	}
	return cloneLead(l), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leads[id]; !ok {
		return ErrNotFound
	}
	delete(m.leads, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) ApplyTransition(ctx context.Context, id string, from status.Status, entry HistoryEntry, buyerCode *string) (*Lead, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.leads[id]
	if !ok {
		return nil, false, ErrNotFound
	}
	if l.Status != from {
		// Caller's snapshot is stale; a concurrent writer got here first.
		return nil, false, nil
	}

	l.Status = entry.ToStatus
	l.StatusHistory = append(l.StatusHistory, entry)
	if buyerCode != nil {
		l.BuyerCode = *buyerCode
	}
	return cloneLead(l), true, nil
}

func (m *MemoryStore) StatusCounts(ctx context.Context, scope Scope) (map[status.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[status.Status]int)
	for _, l := range m.leads {
		if scope.matches(l) {
			counts[l.Status]++
		}
	}
	return counts, nil
}

func (m *MemoryStore) Count(ctx context.Context, scope Scope) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, l := range m.leads {
		if scope.matches(l) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) RecentActivity(ctx context.Context, scope Scope, limit int) ([]ActivityEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type keyed struct {
		ActivityEntry
		leadID string
		idx    int
	}
	var all []keyed
	for _, id := range m.order {
		l := m.leads[id]
		if !scope.matches(l) {
			continue
		}
		for i, h := range l.StatusHistory {
			all = append(all, keyed{
				ActivityEntry: ActivityEntry{
					LeadID:    l.ID,
					FirstName: l.FirstName,
					LastName:  l.LastName,
					ToStatus:  h.ToStatus,
					ChangedBy: h.ChangedBy,
					Timestamp: h.Timestamp,
				},
				leadID: l.ID,
				idx:    i,
			})
		}
	}

	// Newest first; ties broken by lead id then history index so the feed is
	// stable across calls.
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		if all[i].leadID != all[j].leadID {
			return all[i].leadID < all[j].leadID
		}
		return all[i].idx > all[j].idx
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]ActivityEntry, len(all))
	for i, k := range all {
		out[i] = k.ActivityEntry
	}
	return out, nil
}

func (m *MemoryStore) CreatedPerHour(ctx context.Context, scope Scope, since time.Time) ([]HourCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byHour := make(map[time.Time]int)
	for _, l := range m.leads {
		if !scope.matches(l) || l.CreatedAt.Before(since) {
			continue
		}
		byHour[l.CreatedAt.UTC().Truncate(time.Hour)]++
	}

	out := make([]HourCount, 0, len(byHour))
	for h, n := range byHour {
		out = append(out, HourCount{Hour: h, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour.Before(out[j].Hour) })
	return out, nil
}

func searchMatches(l *Lead, search string) bool {
	q := strings.ToLower(search)
	full := strings.ToLower(l.FirstName + " " + l.LastName)
	return strings.Contains(full, q) || strings.Contains(strings.ToLower(l.Email), q)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func cloneLead(l *Lead) *Lead {
	cp := *l
	cp.Fields = append([]Field(nil), l.Fields...)
	cp.StatusHistory = append([]HistoryEntry(nil), l.StatusHistory...)
	return &cp
}
