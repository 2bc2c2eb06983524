// Package policy decides what a principal may do with a lead. It is pure:
// no storage, no ambient role lookups at call sites.
package policy

// Role is a user privilege tier.
type Role string

const (
	RoleAgent      Role = "agent"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleAgent || r == RoleAdmin || r == RoleSuperAdmin
}

// Principal is the acting user as seen by the policy and the stores.
type Principal struct {
	ID             string
	Role           Role
	OrganizationID string
}

// IsAdmin reports whether p holds the admin tier or above.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}

// IsSuperAdmin reports whether p holds the highest tier.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// CanView reports whether p may read a lead owned by createdBy in
// organization orgID. Super admins see everything; otherwise membership in
// the lead's organization or authorship is required. A lead without an
// organization is visible to its creator only.
func CanView(p Principal, orgID, createdBy string) bool {
	if p.IsSuperAdmin() {
		return true
	}
	if orgID != "" && p.OrganizationID == orgID {
		return true
	}
	return createdBy != "" && p.ID == createdBy
}

// CanEdit reports whether p may change a lead's profile fields. There is no
// read-only role in this deployment, so edit rights follow view rights.
func CanEdit(p Principal, orgID, createdBy string) bool {
	return CanView(p, orgID, createdBy)
}

// CanDelete reports whether p may hard-delete leads.
func CanDelete(p Principal) bool {
	return p.IsSuperAdmin()
}

// CanTransitionStatus reports whether p may change a lead's status.
func CanTransitionStatus(p Principal) bool {
	return p.IsAdmin()
}
