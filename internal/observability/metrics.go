package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the generator's metric instruments.
type Metrics struct {
	pathsProcessed    metric.Int64Counter
	pathsFailed       metric.Int64Counter
	operationsCreated metric.Int64Counter
	runDuration       metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.pathsProcessed, err = meter.Int64Counter("csdlgen.paths.processed",
		metric.WithDescription("Generic request paths resolved and applied to the model"))
	if err != nil {
		return nil, err
	}
	m.pathsFailed, err = meter.Int64Counter("csdlgen.paths.failed",
		metric.WithDescription("Generic request paths that could not be resolved"))
	if err != nil {
		return nil, err
	}
	m.operationsCreated, err = meter.Int64Counter("csdlgen.operations.created",
		metric.WithDescription("Actions and functions synthesized from request paths"))
	if err != nil {
		return nil, err
	}
	m.runDuration, err = meter.Float64Histogram("csdlgen.run.duration",
		metric.WithDescription("Duration of a synthesis run"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordPath counts one path with its classification.
func (m *Metrics) RecordPath(ctx context.Context, classification string, failed bool) {
	attrs := metric.WithAttributes(attribute.String("classification", classification))
	if failed {
		m.pathsFailed.Add(ctx, 1, attrs)
		return
	}
	m.pathsProcessed.Add(ctx, 1, attrs)
}

// RecordOperation counts a synthesized action or function.
func (m *Metrics) RecordOperation(ctx context.Context, kind string) {
	m.operationsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRun records the duration of a run.
func (m *Metrics) RecordRun(ctx context.Context, d time.Duration, err error) {
	m.runDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("error", err != nil)))
}
