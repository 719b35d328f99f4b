package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Tracer() == nil {
		t.Fatal("expected tracer")
	}
	if cfg.Metrics() == nil {
		t.Fatal("expected metrics")
	}
	if cfg.ServiceName() != "csdlgen" {
		t.Errorf("ServiceName = %q", cfg.ServiceName())
	}

	ctx := context.Background()
	ctx, span := cfg.StartSpan(ctx, "test")
	cfg.Metrics().RecordPath(ctx, "EntitySet", false)
	cfg.Metrics().RecordPath(ctx, "Unknown", true)
	cfg.Metrics().RecordOperation(ctx, "Action")
	cfg.Metrics().RecordRun(ctx, time.Second, nil)
	EndSpan(span, errors.New("boom"))
}

func TestOptions(t *testing.T) {
	cfg := NewConfig(
		WithServiceName("docs"),
		WithServiceVersion("1.2.3"),
		WithServerTiming(),
		WithDetailedDBTracing(),
	)
	if err := cfg.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if cfg.ServiceName() != "docs" {
		t.Errorf("ServiceName = %q", cfg.ServiceName())
	}
	if !cfg.ServerTimingEnabled() || !cfg.DetailedDBTracing() {
		t.Error("flags not applied")
	}
	if cfg.Logger() == nil {
		t.Error("logger should default")
	}
}

func TestServerTiming(t *testing.T) {
	// Without the middleware the metric is a no-op.
	StartServerTiming(context.Background(), "noop").Stop()
	var nilMetric *ServerTimingMetric
	nilMetric.Stop()

	handler := ServerTimingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := StartServerTimingWithDesc(r.Context(), "render", "Render CSDL")
		m.Stop()
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	header := rec.Header().Get("Server-Timing")
	if !strings.Contains(header, "render") {
		t.Errorf("Server-Timing header = %q, want render metric", header)
	}
}
