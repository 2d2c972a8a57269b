package middleware

import (
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
	"github.com/frahmantamala/shiftboard/internal/auth"
	"github.com/frahmantamala/shiftboard/internal/transport"
	"github.com/frahmantamala/shiftboard/pkg/logger"
)

// RequireAdmin lets only admin identities through. It must run after the
// auth handler's Authenticate middleware.
func RequireAdmin(next http.Handler) http.Handler {
	base := transport.NewBaseHandler(nil)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			base.HandleServiceError(w, r, internal.ErrUnauthorized)
			return
		}

		if !identity.IsAdmin {
			logger.From(r.Context()).Warn("access denied: admin required",
				"user_id", identity.UserID,
				"path", r.URL.Path)
			base.HandleServiceError(w, r, internal.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
