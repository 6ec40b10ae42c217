package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/authz"
)

// requestScope pulls the caller's authorization scope from the request
// context. The auth middleware attaches it for logged-in users; a
// missing scope means the route was wired without RequireLogin.
func requestScope(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*authz.RequestScope, bool) {
	scope := authz.ScopeFrom(r.Context())
	if scope == nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return scope, true
}
