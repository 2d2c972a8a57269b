package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shiftboard/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const (
	TraceIDHeader = "X-Trace-ID"
	maxTraceIDLen = 128
)

// TraceID accepts a caller supplied X-Trace-ID or mints one, echoes it on the
// response and binds it, with chi's request id, to the request logger.
func TraceID(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logger.LoggerWrapper()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if traceID == "" || len(traceID) > maxTraceIDLen {
				traceID = uuid.NewString()
			}

			fields := []any{"trace_id", traceID}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				fields = append(fields, "request_id", reqID)
			}

			lg, ok := logger.Lookup(r.Context())
			if !ok {
				lg = base
			}
			ctx := logger.Into(r.Context(), lg.With(fields...))

			w.Header().Set(TraceIDHeader, traceID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
