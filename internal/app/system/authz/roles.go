package authz

import "strings"

// Role is the closed set of portal roles, ordered from least to most
// privileged. The order is a fixed total hierarchy; comparisons go through
// the rank table rather than string comparison.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleHR         Role = "hr"
	RoleChairman   Role = "chairman"
	RoleCEO        Role = "ceo"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleEmployee:   0,
	RoleHR:         1,
	RoleChairman:   2,
	RoleCEO:        3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// AllRoles lists every valid role in rank order, for form selects.
var AllRoles = []Role{RoleEmployee, RoleHR, RoleChairman, RoleCEO, RoleAdmin, RoleSuperAdmin}

// ParseRole normalizes a role string. Unknown or empty values degrade to
// employee rather than failing; disabled accounts are handled elsewhere.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return RoleEmployee
	}
	return r
}

// IsValid reports whether s names a known role exactly.
func IsValid(s string) bool {
	_, ok := roleRank[Role(s)]
	return ok
}

// Rank returns the role's position in the hierarchy. Unknown roles rank
// as employee.
func Rank(r Role) int {
	if n, ok := roleRank[r]; ok {
		return n
	}
	return roleRank[RoleEmployee]
}

// AtLeast reports whether role sits at or above min in the hierarchy.
func AtLeast(role, min Role) bool {
	return Rank(role) >= Rank(min)
}

// Actor identifies who is performing a workflow or notification call.
// Handlers build it from the session user; nothing below the handler layer
// reads ambient auth state.
type Actor struct {
	UID  string
	Role Role
}
