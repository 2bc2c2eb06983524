package handlers

import (
	"context"

	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/models"
	"github.com/jordanlanch/leadcrm/pkg/users"
)

// nameResolver batches user display-name lookups for response rendering.
// Missing users resolve to the system fallback so responses never break when
// an account was deleted after the fact.
type nameResolver struct {
	store users.Store
}

func (r nameResolver) resolve(ctx context.Context, ids []string) (map[string]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return map[string]string{}, nil
	}
	return r.store.NamesByID(ctx, unique)
}

func nameOr(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return users.SystemName
}

// leadIDs gathers every user id referenced by the given leads.
func leadUserIDs(items ...*leads.Lead) []string {
	var ids []string
	for _, l := range items {
		ids = append(ids, l.CreatedBy)
		for _, h := range l.StatusHistory {
			ids = append(ids, h.ChangedBy)
		}
	}
	return ids
}

func presentLead(l *leads.Lead, names map[string]string) models.LeadResponse {
	fields := make([]models.FieldPair, 0, len(l.Fields))
	for _, f := range l.Fields {
		fields = append(fields, models.FieldPair{Key: f.Key, Value: f.Value})
	}

	history := make([]models.HistoryEntryResponse, 0, len(l.StatusHistory))
	for _, h := range l.StatusHistory {
		history = append(history, models.HistoryEntryResponse{
			FromStatus:    string(h.FromStatus),
			ToStatus:      string(h.ToStatus),
			Notes:         h.Notes,
			ChangedBy:     h.ChangedBy,
			ChangedByName: nameOr(names, h.ChangedBy),
			Timestamp:     h.Timestamp,
		})
	}

	return models.LeadResponse{
		ID:              l.ID,
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		DOB:             l.DOB,
		Address:         l.Address,
		Notes:           l.Notes,
		ApplicationType: l.ApplicationType,
		Lawsuit:         l.Lawsuit,
		Status:          string(l.Status),
		BuyerCode:       l.BuyerCode,
		Fields:          fields,
		StatusHistory:   history,
		CreatedBy:       l.CreatedBy,
		CreatedByName:   nameOr(names, l.CreatedBy),
		OrganizationID:  l.OrganizationID,
		CreatedAt:       l.CreatedAt,
	}
}
