package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "confmgr/internal/api/context"
	"confmgr/internal/engine/access"
	"confmgr/internal/pkg/errors"
	"confmgr/internal/platform/auth"
)

// RequirePermission gates a room-scoped route on one catalog permission.
// The room comes from the :room_id path parameter, the acting user from
// the token claims. A missing room is 404 and an engine failure 500, so a
// denial is the only path to 403.
func RequirePermission(authz *access.Authorizer, permission string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authentication claims found", nil)
				return
			}

			params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
			roomID := params.ByName("room_id")
			if roomID == "" {
				errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing room id", nil)
				return
			}

			decision, err := authz.Authorize(r.Context(), claims.UserID, roomID, permission)
			if err != nil {
				errors.WriteEngineError(w, err)
				return
			}
			if !decision.Allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Permission denied", nil)
				return
			}

			next(w, r)
		}
	}
}
