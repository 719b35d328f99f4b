package handlers

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")

	runID, ok := RunIDFromContext(ctx)
	if !ok {
		t.Fatal("RunIDFromContext() ok = false, want true")
	}
	if runID != "run-1" {
		t.Errorf("RunIDFromContext() = %v, want run-1", runID)
	}
}

func TestRunIDFromContext_Empty(t *testing.T) {
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Error("RunIDFromContext() ok = true for empty context")
	}
	//nolint:staticcheck // nil context is handled
	if _, ok := RunIDFromContext(nil); ok {
		t.Error("RunIDFromContext(nil) ok = true")
	}
	if _, ok := RunIDFromContext(WithRunID(context.Background(), "")); ok {
		t.Error("RunIDFromContext() ok = true for empty run id")
	}
}

func TestRequestWithRunID(t *testing.T) {
	req := httptest.NewRequest("GET", "/$metadata", nil)

	if got := requestWithRunID(req, ""); got != req {
		t.Error("requestWithRunID() with empty id should return the original request")
	}

	got := requestWithRunID(req, "abc")
	runID, ok := RunIDFromContext(got.Context())
	if !ok || runID != "abc" {
		t.Errorf("run id = %q, %v; want abc, true", runID, ok)
	}
	if _, ok := RunIDFromContext(req.Context()); ok {
		t.Error("original request context was modified")
	}
}
