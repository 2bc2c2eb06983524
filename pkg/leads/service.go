package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/status"
)

// Service implements the lead store operations: creation, retrieval, listing,
// profile updates and deletion, with access checks applied uniformly through
// the policy package. Status changes are not reachable from here; they go
// through the lifecycle service exclusively.
type Service struct {
	store Store
}

// NewService creates a new lead service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store exposes the underlying store for the lifecycle and reporting
// services, which share it.
func (s *Service) Store() Store {
	return s.store
}

// CreateInput carries the attributes accepted at lead creation. Status is
// absent on purpose: every lead starts at status.Initial.
type CreateInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	DOB             string
	Address         string
	Notes           string
	ApplicationType string
	Lawsuit         string
	Fields          []Field
	OrganizationID  string // defaults to the creator's organization
}

// Create persists a new lead owned by the creator, at the initial status
// with an empty history.
func (s *Service) Create(ctx context.Context, in CreateInput, creator policy.Principal) (*Lead, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrValidation)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: last name is required", ErrValidation)
	}

	orgID := in.OrganizationID
	if orgID == "" {
		orgID = creator.OrganizationID
	}

	l := &Lead{
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           normalizePhone(in.Phone),
		DOB:             in.DOB,
		Address:         in.Address,
		Notes:           in.Notes,
		ApplicationType: in.ApplicationType,
		Lawsuit:         in.Lawsuit,
		Status:          status.Initial,
		Fields:          pruneFields(in.Fields),
		StatusHistory:   []HistoryEntry{},
		CreatedBy:       creator.ID,
		OrganizationID:  orgID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns the lead when the requester may view it.
func (s *Service) Get(ctx context.Context, id string, requester policy.Principal) (*Lead, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(requester, l.OrganizationID, l.CreatedBy) {
		return nil, ErrAccessDenied
	}
	return l, nil
}

// ListParams are the caller-facing list options; the access scope is derived
// from the requester, never from the request.
type ListParams struct {
	Status   status.Status
	Search   string
	Page     int
	PageSize int
}

// ListResult is one page of leads plus pagination metadata.
type ListResult struct {
	Leads    []*Lead
	Total    int
	Page     int
	PageSize int
	Pages    int
}

// List returns in-scope leads. The scope narrows the query before counting
// and pagination, so totals never leak inaccessible records.
func (s *Service) List(ctx context.Context, p ListParams, requester policy.Principal) (*ListResult, error) {
	page, size := normalizePage(p.Page, p.PageSize)
	items, total, err := s.store.List(ctx, ListFilter{
		Scope:    ScopeFor(requester),
		Status:   p.Status,
		Search:   strings.TrimSpace(p.Search),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Leads:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
		Pages:    (total + size - 1) / size,
	}, nil
}

// UpdateInput is a partial profile patch. Nil fields are left unchanged; a
// non-nil Fields slice replaces the dynamic fields after empty values are
// pruned. There is deliberately no way to express a status change here.
type UpdateInput struct {
	FirstName       *string
	LastName        *string
	Email           *string
	Phone           *string
	DOB             *string
	Address         *string
	Notes           *string
	ApplicationType *string
	Lawsuit         *string
	Fields          []Field
}

// UpdateProfile applies a profile patch when the requester may edit the lead.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput, requester policy.Principal) (*Lead, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanEdit(requester, l.OrganizationID, l.CreatedBy) {
		return nil, ErrAccessDenied
	}

	if in.FirstName != nil && strings.TrimSpace(*in.FirstName) == "" {
		return nil, fmt.Errorf("%w: first name cannot be empty", ErrValidation)
	}
	if in.LastName != nil && strings.TrimSpace(*in.LastName) == "" {
		return nil, fmt.Errorf("%w: last name cannot be empty", ErrValidation)
	}

	patch := ProfilePatch{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		DOB:             in.DOB,
		Address:         in.Address,
		Notes:           in.Notes,
		ApplicationType: in.ApplicationType,
		Lawsuit:         in.Lawsuit,
	}
	if in.Phone != nil {
		normalized := normalizePhone(*in.Phone)
		patch.Phone = &normalized
	}
	if in.Fields != nil {
		patch.Fields = pruneFields(in.Fields)
	}
	return s.store.UpdateProfile(ctx, id, patch)
}

// Delete hard-deletes the lead and its entire history. Only the highest
// tier may do this; the role check runs before the lookup so denial does not
// reveal existence.
func (s *Service) Delete(ctx context.Context, id string, requester policy.Principal) error {
	if !policy.CanDelete(requester) {
		return ErrAccessDenied
	}
	return s.store.Delete(ctx, id)
}

// pruneFields drops entries with empty keys or values, keeping order. Saved
// leads never carry empty dynamic values.
func pruneFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "" || f.Value == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// normalizePhone formats a parseable number as E.164 and leaves anything
// else untouched; intake forms carry too many loose formats to reject.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
