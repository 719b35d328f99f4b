package handlers

import (
	"context"
	"net/http"
)

// Context keys for request-scoped values
type contextKey string

const (
	runIDKey contextKey = "csdlgen_run_id"
)

// WithRunID adds the id of the run that produced the served model to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext retrieves the run id stored by WithRunID
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	runID, ok := ctx.Value(runIDKey).(string)
	if !ok || runID == "" {
		return "", false
	}
	return runID, true
}

// requestWithRunID returns a shallow copy of the request whose context includes the run id.
func requestWithRunID(r *http.Request, runID string) *http.Request {
	if r == nil || runID == "" {
		return r
	}
	return r.WithContext(WithRunID(r.Context(), runID))
}
