// Package observability wires OpenTelemetry tracing and metrics and the
// Server-Timing header into the generator.
package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultServiceName = "csdlgen"
	instrumentationName = "github.com/nlstn/go-csdlgen"
)

// Config holds the providers and the instruments derived from them.
type Config struct {
	tracerProvider    trace.TracerProvider
	meterProvider     metric.MeterProvider
	serviceName       string
	serviceVersion    string
	logger            *slog.Logger
	detailedDBTracing bool
	serverTiming      bool

	tracer  trace.Tracer
	metrics *Metrics
}

// Option configures a Config.
type Option func(*Config)

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) { c.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) { c.meterProvider = mp }
}

// WithServiceName sets the service name reported on spans.
func WithServiceName(name string) Option {
	return func(c *Config) { c.serviceName = name }
}

// WithServiceVersion sets the service version reported on spans.
func WithServiceVersion(version string) Option {
	return func(c *Config) { c.serviceVersion = version }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

// WithDetailedDBTracing enables spans for every store query.
func WithDetailedDBTracing() Option {
	return func(c *Config) { c.detailedDBTracing = true }
}

// WithServerTiming enables Server-Timing metrics on HTTP responses.
func WithServerTiming() Option {
	return func(c *Config) { c.serverTiming = true }
}

// NewConfig applies opts. Call Initialize before use.
func NewConfig(opts ...Option) *Config {
	c := &Config{serviceName: defaultServiceName}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns an initialized config backed by noop providers.
func Default() *Config {
	c := NewConfig()
	// noop providers cannot fail to create instruments
	_ = c.Initialize()
	return c
}

// Initialize creates the tracer and metric instruments. Missing providers are
// replaced with noop implementations.
func (c *Config) Initialize() error {
	if c.tracerProvider == nil {
		c.tracerProvider = tracenoop.NewTracerProvider()
	}
	if c.meterProvider == nil {
		c.meterProvider = metricnoop.NewMeterProvider()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.tracer = c.tracerProvider.Tracer(instrumentationName, trace.WithInstrumentationVersion(c.serviceVersion))

	metrics, err := newMetrics(c.meterProvider.Meter(instrumentationName, metric.WithInstrumentationVersion(c.serviceVersion)))
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	c.metrics = metrics
	return nil
}

// Tracer returns the tracer.
func (c *Config) Tracer() trace.Tracer {
	return c.tracer
}

// Metrics returns the metric instruments.
func (c *Config) Metrics() *Metrics {
	return c.metrics
}

// Logger returns the configured logger.
func (c *Config) Logger() *slog.Logger {
	return c.logger
}

// ServiceName returns the reported service name.
func (c *Config) ServiceName() string {
	return c.serviceName
}

// DetailedDBTracing reports whether store queries get their own spans.
func (c *Config) DetailedDBTracing() bool {
	return c.detailedDBTracing
}

// ServerTimingEnabled reports whether the Server-Timing header is emitted.
func (c *Config) ServerTimingEnabled() bool {
	return c.serverTiming
}

// StartSpan starts a span tagged with the service name.
func (c *Config) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("service.name", c.serviceName))
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
