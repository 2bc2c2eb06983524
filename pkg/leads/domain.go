// Package leads owns the Lead aggregate: the record itself, its embedded
// append-only status history, and the storage contract the services above
// it depend on.
package leads

import (
	"time"

	"github.com/jordanlanch/leadcrm/pkg/policy"
	"github.com/jordanlanch/leadcrm/pkg/status"
)

// Field is one case-type-specific attribute. The core stores the pairs
// verbatim and never interprets them; the UI schema lives in fieldschema.
type Field struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}

// HistoryEntry records a single status change. Entries are immutable once
// written and only ever appended.
type HistoryEntry struct {
	FromStatus status.Status `json:"fromStatus" bson:"fromStatus"`
	ToStatus   status.Status `json:"toStatus" bson:"toStatus"`
	Notes      string        `json:"notes" bson:"notes"`
	ChangedBy  string        `json:"changedBy,omitempty" bson:"changedBy,omitempty"`
	Timestamp  time.Time     `json:"timestamp" bson:"timestamp"`
}

// Lead is the primary entity. Status and StatusHistory move together: the
// last entry's ToStatus always equals Status, and an empty history means the
// lead is still at its creation status.
type Lead struct {
	ID              string         `json:"id"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	DOB             string         `json:"dob,omitempty"`
	Address         string         `json:"address,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	ApplicationType string         `json:"applicationType,omitempty"`
	Lawsuit         string         `json:"lawsuit,omitempty"`
	Status          status.Status  `json:"status"`
	BuyerCode       string         `json:"buyerCode,omitempty"`
	Fields          []Field        `json:"fields,omitempty"`
	StatusHistory   []HistoryEntry `json:"statusHistory"`
	CreatedBy       string         `json:"createdBy,omitempty"`
	OrganizationID  string         `json:"organizationId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Scope narrows a query to the leads a principal may see. The zero value
// matches nothing; use ScopeFor.
type Scope struct {
	All            bool
	OrganizationID string
	UserID         string
}

// ScopeFor derives the query scope for a principal, mirroring policy.CanView:
// super admins are unscoped, organization members see their organization plus
// their own leads, and principals without an organization see only what they
// created.
func ScopeFor(p policy.Principal) Scope {
	if p.IsSuperAdmin() {
		return Scope{All: true}
	}
	return Scope{OrganizationID: p.OrganizationID, UserID: p.ID}
}

// matches reports whether a lead falls inside the scope. The mongo store
// expresses the same predicate as a filter document.
func (s Scope) matches(l *Lead) bool {
	if s.All {
		return true
	}
	if s.OrganizationID != "" && l.OrganizationID == s.OrganizationID {
		return true
	}
	return s.UserID != "" && l.CreatedBy == s.UserID
}
