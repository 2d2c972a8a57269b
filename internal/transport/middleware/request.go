package middleware

import (
	"net/http"

	"github.com/frahmantamala/shiftboard/internal"
)

// RequestContext records the method and path that audit entries are stamped with.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := internal.ContextWithRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
