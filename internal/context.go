package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextRequestKey ctxKey = "request"

// RequestInfo is the method and path recorded alongside audit entries.
type RequestInfo struct {
	Method string
	Path   string
}

func ContextWithRequest(ctx context.Context, method, path string) context.Context {
	return context.WithValue(ctx, ContextRequestKey, RequestInfo{Method: method, Path: path})
}

// RequestFromContext returns the request stored by ContextWithRequest, or an empty value.
func RequestFromContext(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}
	if info, ok := ctx.Value(ContextRequestKey).(RequestInfo); ok {
		return info
	}
	return RequestInfo{}
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
