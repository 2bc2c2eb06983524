package models

import "time"

// CreateLeadRequest represents a lead creation request. Dynamic fields
// arrive as a key-value map, matching the intake form payload.
type CreateLeadRequest struct {
	FirstName       string            `json:"firstName" validate:"required"`
	LastName        string            `json:"lastName" validate:"required"`
	Email           string            `json:"email" validate:"omitempty,email"`
	Phone           string            `json:"phone"`
	DOB             string            `json:"dob"`
	Address         string            `json:"address"`
	Notes           string            `json:"notes"`
	ApplicationType string            `json:"applicationType"`
	Lawsuit         string            `json:"lawsuit"`
	Fields          map[string]string `json:"fields"`
}

// UpdateLeadRequest is a partial profile patch. Status has no field here;
// status changes go through the admin transition endpoint only.
type UpdateLeadRequest struct {
	FirstName       *string           `json:"firstName"`
	LastName        *string           `json:"lastName"`
	Email           *string           `json:"email" validate:"omitempty,email"`
	Phone           *string           `json:"phone"`
	DOB             *string           `json:"dob"`
	Address         *string           `json:"address"`
	Notes           *string           `json:"notes"`
	ApplicationType *string           `json:"applicationType"`
	Lawsuit         *string           `json:"lawsuit"`
	Fields          map[string]string `json:"fields"`
}

// TransitionRequest represents a status change request.
type TransitionRequest struct {
	Status    string `json:"status" validate:"required"`
	Notes     string `json:"notes"`
	BuyerCode string `json:"buyerCode"`
}

// FieldPair is one stored dynamic attribute.
type FieldPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HistoryEntryResponse is one status change in a lead response, with the
// actor's display name resolved.
type HistoryEntryResponse struct {
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	Notes         string    `json:"notes"`
	ChangedBy     string    `json:"changedBy,omitempty"`
	ChangedByName string    `json:"changedByName"`
	Timestamp     time.Time `json:"timestamp"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID              string                 `json:"id"`
	FirstName       string                 `json:"firstName"`
	LastName        string                 `json:"lastName"`
	Email           string                 `json:"email,omitempty"`
	Phone           string                 `json:"phone,omitempty"`
	DOB             string                 `json:"dob,omitempty"`
	Address         string                 `json:"address,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	ApplicationType string                 `json:"applicationType,omitempty"`
	Lawsuit         string                 `json:"lawsuit,omitempty"`
	Status          string                 `json:"status"`
	BuyerCode       string                 `json:"buyerCode,omitempty"`
	Fields          []FieldPair            `json:"fields"`
	StatusHistory   []HistoryEntryResponse `json:"statusHistory"`
	CreatedBy       string                 `json:"createdBy,omitempty"`
	CreatedByName   string                 `json:"createdByName"`
	OrganizationID  string                 `json:"organizationId,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// PaginationInfo carries list paging metadata.
type PaginationInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// LeadListResponse is one page of leads.
type LeadListResponse struct {
	Data       []LeadResponse `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// ActivityItem is one entry of the dashboard activity feed.
type ActivityItem struct {
	LeadID        string    `json:"leadId"`
	LeadName      string    `json:"leadName"`
	ToStatus      string    `json:"toStatus"`
	ChangedByName string    `json:"changedByName"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChartPoint is one hour of the creation time series, named for direct
// chart consumption ("14:00").
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// StatsResponse is the dashboard payload.
type StatsResponse struct {
	StatusCounts   map[string]int `json:"statusCounts"`
	BucketCounts   map[string]int `json:"bucketCounts"`
	TotalLeads     int            `json:"totalLeads"`
	RecentActivity []ActivityItem `json:"recentActivity"`
	ChartData      []ChartPoint   `json:"chartData"`
}
