package authz

import "context"

// RequestScope carries the authenticated principal through one
// authorization sequence and memoizes membership lookups within it.
// A scope must be created fresh for every request; it is not safe for
// use across requests and deliberately has no invalidation.
type RequestScope struct {
	// UserID is the principal's internal id; zero means anonymous.
	UserID int64

	// roles memoizes room id -> role for this principal. Misses are
	// memoized as RoleNone so a non-member costs exactly one store
	// lookup per sequence.
	roles map[int64]Role
}

// NewRequestScope creates a scope for the given principal. Pass zero
// for anonymous callers.
func NewRequestScope(userID int64) *RequestScope {
	return &RequestScope{
		UserID: userID,
		roles:  make(map[int64]Role),
	}
}

// roleFor returns the principal's memoized role in the room, hitting
// the store at most once per room within this scope.
func (s *RequestScope) roleFor(ctx context.Context, store Store, roomID int64) (Role, error) {
	if role, ok := s.roles[roomID]; ok {
		return role, nil
	}
	role, err := store.RoleFor(ctx, roomID, s.UserID)
	if err != nil {
		return RoleNone, err
	}
	s.roles[roomID] = role
	return role, nil
}

type scopeContextKey struct{}

// WithScope stores the request scope in the context. Called once per
// request by the auth middleware.
func WithScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFrom retrieves the request scope from the context. Returns nil
// when no scope was attached (unauthenticated request path).
func ScopeFrom(ctx context.Context) *RequestScope {
	scope, _ := ctx.Value(scopeContextKey{}).(*RequestScope)
	return scope
}
