package rbac

// RoleName identifies one of the closed set of platform roles.
type RoleName string

// Platform roles.
const (
	RoleSuperAdmin RoleName = "superadmin"
	RoleAdmin      RoleName = "admin"
	RolePresident  RoleName = "president"
	RoleMember     RoleName = "member"
)

// KnownRoles lists the closed role enumeration in descending privilege.
func KnownRoles() []RoleName {
	return []RoleName{RoleSuperAdmin, RoleAdmin, RolePresident, RoleMember}
}

// Valid reports whether r belongs to the closed enumeration.
func (r RoleName) Valid() bool {
	for _, known := range KnownRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// Rank is the position of r in KnownRoles. Lower is more privileged;
// roles outside the enumeration rank below every known role.
func (r RoleName) Rank() int {
	for i, known := range KnownRoles() {
		if r == known {
			return i
		}
	}
	return len(KnownRoles())
}

// Outranks reports whether r is strictly more privileged than other.
func (r RoleName) Outranks(other RoleName) bool {
	return r.Rank() < other.Rank()
}

// Role represents a named permission bundle.
type Role struct {
	Name        RoleName `json:"name"`
	Permissions []string `json:"permissions"`
}

// Principal describes the authenticated actor attached to a request.
type Principal struct {
	ID     int64    `json:"id"`
	Email  string   `json:"email"`
	Role   RoleName `json:"role"`
	Active bool     `json:"active"`
}

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Denial reasons.
const (
	ReasonNoPrincipal       = "no authenticated principal"
	ReasonInactive          = "principal is inactive"
	ReasonUnknownRole       = "role has no permissions"
	ReasonMissingPermission = "permission not granted to role"
)

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }
