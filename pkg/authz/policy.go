package authz

// Flags carries the per-request booleans a policy check may consult.
// The set is closed: policies can only reference fields that exist
// here, so an unknown flag is a compile error rather than a silent
// false at runtime.
type Flags struct {
	// IsOwner is true when the principal is the room's owner.
	IsOwner bool
	// IsAuthor is true when the principal authored the target resource.
	// Only resource kinds that carry authorship (cards, comments) can
	// set it; for every other kind it is always false.
	IsAuthor bool
}

// Check is a pure predicate over a role and the request's flags.
type Check func(role Role, flags Flags) bool

// AnyOf passes when at least one sub-check passes.
func AnyOf(checks ...Check) Check {
	return func(role Role, flags Flags) bool {
		for _, check := range checks {
			if check(role, flags) {
				return true
			}
		}
		return false
	}
}

// AllOf passes when every sub-check passes.
func AllOf(checks ...Check) Check {
	return func(role Role, flags Flags) bool {
		for _, check := range checks {
			if !check(role, flags) {
				return false
			}
		}
		return true
	}
}

// MinRole passes when the role ranks at or above required.
func MinRole(required Role) Check {
	return func(role Role, _ Flags) bool {
		return AtLeast(role, required)
	}
}

// IsOwner passes only for the room owner, regardless of role rank.
func IsOwner(_ Role, flags Flags) bool { return flags.IsOwner }

// IsAuthor passes only for the author of the target resource.
func IsAuthor(_ Role, flags Flags) bool { return flags.IsAuthor }

// Reusable groups.
var (
	readAny       = MinRole(RoleViewer)
	memberOrAbove = MinRole(RoleMember)
	adminOrAbove  = MinRole(RoleAdmin)
)

// policy binds each permission to exactly one check. A permission
// missing from this table denies for every caller (fail-closed).
var policy = map[Permission]Check{
	// Viewers can look at things in rooms they are in.
	PermRoomRead:  readAny,
	PermBoardRead: readAny,
	PermCardRead:  readAny,

	// Invitations and kicks: admin or above.
	PermRoomInvite: adminOrAbove,
	PermRoomKick:   adminOrAbove,

	// Structural mutation: member or above.
	PermRoomUpdate:   memberOrAbove,
	PermRoomDelete:   memberOrAbove,
	PermBoardCreate:  memberOrAbove,
	PermBoardUpdate:  memberOrAbove,
	PermBoardDelete:  memberOrAbove,
	PermBoardRestore: memberOrAbove,
	PermColumnCreate: memberOrAbove,
	PermColumnUpdate: memberOrAbove,
	PermColumnDelete: memberOrAbove,
	PermLaneCreate:   memberOrAbove,
	PermLaneUpdate:   memberOrAbove,
	PermLaneDelete:   memberOrAbove,
	PermLabelManage:  memberOrAbove,

	// Cards: member or above.
	PermCardCreate:       memberOrAbove,
	PermCardUpdate:       memberOrAbove,
	PermCardDelete:       memberOrAbove,
	PermCardRestore:      memberOrAbove,
	PermAttachmentAdd:    memberOrAbove,
	PermAttachmentDelete: memberOrAbove,

	// Comments: anyone at member+ may create; update and delete are
	// for the author or a moderating admin.
	PermCommentCreate: memberOrAbove,
	PermCommentUpdate: AnyOf(IsAuthor, adminOrAbove),
	PermCommentDelete: AnyOf(IsAuthor, adminOrAbove),

	// Room restore / hard delete / purge: owner only, by identity
	// rather than role rank.
	PermRoomRestore:    IsOwner,
	PermRoomDeleteHard: IsOwner,
	PermPurge:          IsOwner,
}

// Evaluate applies the registered check for permission. Unknown
// permissions deny.
func Evaluate(permission Permission, role Role, flags Flags) bool {
	check, ok := policy[permission]
	if !ok {
		return false
	}
	return check(role, flags)
}
