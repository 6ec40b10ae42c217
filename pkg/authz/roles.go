package authz

// Role is a membership role within a room. Roles form a total order:
// viewer < member < admin < owner. Exactly one role exists per
// (room, user) pair, assigned when the membership is created.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"

	// RoleNone is the zero value reported for non-members.
	RoleNone Role = ""
)

var roleRank = map[Role]int{
	RoleViewer: 0,
	RoleMember: 1,
	RoleAdmin:  2,
	RoleOwner:  3,
}

// ValidRoles contains all assignable role values.
var ValidRoles = []Role{RoleViewer, RoleMember, RoleAdmin, RoleOwner}

// IsValidRole checks if the given role is assignable.
func IsValidRole(role Role) bool {
	_, ok := roleRank[role]
	return ok
}

// AtLeast reports whether actual ranks at or above required. Unknown
// roles rank below every known role and never satisfy any requirement.
func AtLeast(actual, required Role) bool {
	actualRank, ok := roleRank[actual]
	if !ok {
		return false
	}
	requiredRank, ok := roleRank[required]
	if !ok {
		return false
	}
	return actualRank >= requiredRank
}
