// Package csdlgen synthesizes an OData CSDL entity data model from REST API
// documentation.
//
// The input is a documentation set: resource definitions describing the
// documented types, and method definitions describing documented request
// examples. A run builds the model in phases:
//
//  1. Every resource becomes an entity type (when it declares a key property)
//     or a complex type in the schema named by its namespace.
//  2. Request paths are normalized to generic paths such as /users/{var}/manager
//     and grouped with the methods documented for them.
//  3. The entity container is inferred from root level paths: /users/{var}
//     declares the entity set users, /me declares the singleton me.
//  4. Every generic path is resolved against the model. Entity sets receive
//     capability annotations, navigation properties receive insert, update and
//     delete restrictions, and qualified segments that do not resolve become
//     bound actions or functions.
//  5. Excluded namespaces are removed and the run is optionally persisted.
//
// # Example
//
//	set, err := csdlgen.LoadDocSet("graph-docs.yaml")
//	if err != nil {
//	    return err
//	}
//	gen, err := csdlgen.NewGenerator(csdlgen.GeneratorConfig{
//	    BaseURL:    "https://graph.microsoft.com/v1.0",
//	    Namespaces: []string{"microsoft.graph"},
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := gen.Generate(ctx, set)
//	if err != nil {
//	    return err
//	}
//	return csdlgen.WriteCSDL(os.Stdout, result.Model, csdlgen.DefaultCSDLOptions())
//
// A run is single threaded. The model is mutated only inside Generate and is
// safe to share once Generate returns.
package csdlgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-csdlgen/internal/augment"
	"github.com/nlstn/go-csdlgen/internal/container"
	"github.com/nlstn/go-csdlgen/internal/csdl"
	"github.com/nlstn/go-csdlgen/internal/docs"
	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/handlers"
	"github.com/nlstn/go-csdlgen/internal/metadata"
	"github.com/nlstn/go-csdlgen/internal/observability"
	"github.com/nlstn/go-csdlgen/internal/paths"
	"github.com/nlstn/go-csdlgen/internal/registry"
	"github.com/nlstn/go-csdlgen/internal/resolver"
	"github.com/nlstn/go-csdlgen/internal/store"
)

// Re-exported types of the internal packages.
type (
	DocSet              = docs.DocSet
	ResourceDefinition  = docs.ResourceDefinition
	MethodDefinition    = docs.MethodDefinition
	ParameterDefinition = docs.ParameterDefinition
	Model               = edm.Model
	Report              = augment.Report
	PathOutcome         = augment.PathOutcome
	StaticAnnotation    = augment.StaticAnnotation
	ConflictPolicy      = metadata.ConflictPolicy
	CSDLOptions         = csdl.Options
	Store               = store.Store
)

const (
	// ConflictIgnore keeps the first definition of a type.
	ConflictIgnore = metadata.ConflictIgnore
	// ConflictOverride replaces earlier definitions of a type.
	ConflictOverride = metadata.ConflictOverride
)

// Errors that abort a run.
var (
	// ErrNoContainer is returned when path resolution finds no entity
	// container in the model.
	ErrNoContainer = resolver.ErrNoContainer
	// ErrNoSchema is returned when no schema can own the entity container.
	ErrNoSchema = container.ErrNoSchema
	// ErrComplexTypePromotion is returned when a resource is documented both
	// with and without a key property.
	ErrComplexTypePromotion = edm.ErrComplexTypePromotion
)

// GeneratorConfig controls a generator.
type GeneratorConfig struct {
	// BaseURL is stripped from documented request paths.
	BaseURL string

	// Namespaces limits which namespaces resources are materialized in.
	// Nil or empty materializes every namespace.
	Namespaces []string

	// ExcludedNamespaces are removed from the model after synthesis.
	ExcludedNamespaces []string

	// IncludeDescriptions adds Core.Description annotations for documented
	// property descriptions.
	IncludeDescriptions bool

	// FlattenActionsToNamespace places all synthesized operations in one
	// namespace instead of the namespace of their qualifier.
	FlattenActionsToNamespace string

	// ConflictPolicy decides what happens when a type is documented twice.
	// Defaults to ConflictIgnore.
	ConflictPolicy ConflictPolicy

	// StaticAnnotations are applied after augmentation.
	StaticAnnotations []StaticAnnotation
}

// Result is the outcome of one run.
type Result struct {
	RunID string
	Model *Model
	// Report lists what happened to every generic path.
	Report *Report
	// Fingerprint identifies the aggregated generic paths and their methods.
	Fingerprint string
	// InputFingerprint identifies the documentation set content.
	InputFingerprint string
	// PreviousRunID is the latest stored run over the same paths, if any.
	PreviousRunID      string
	ExcludedNamespaces []string
	StartedAt          time.Time
	Duration           time.Duration
}

// Generator runs model synthesis.
type Generator struct {
	cfg           GeneratorConfig
	logger        *slog.Logger
	observability *observability.Config
	store         *store.Store
	csdlOptions   csdl.Options
}

// NewGenerator validates cfg and creates a generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.ConflictPolicy == "" {
		cfg.ConflictPolicy = ConflictIgnore
	}
	if _, err := metadata.ParseConflictPolicy(string(cfg.ConflictPolicy)); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:           cfg,
		logger:        slog.Default(),
		observability: observability.Default(),
		csdlOptions:   csdl.DefaultOptions(),
	}, nil
}

// SetLogger sets a custom logger for the generator.
// If logger is nil, slog.Default() is used.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	g.logger = logger
}

// SetCSDLOptions sets the formatting of the CSDL stored with each run.
func (g *Generator) SetCSDLOptions(opts CSDLOptions) {
	g.csdlOptions = opts
}

// SetStore enables persistence of runs. Nil disables it.
func (g *Generator) SetStore(s *Store) {
	g.store = s
}

// OpenStore opens a run store. postgres:// URLs select PostgreSQL, anything
// else is a SQLite path or :memory:.
func OpenStore(dsn string, logger *slog.Logger) (*Store, error) {
	return store.Open(dsn, logger)
}

// ObservabilityConfig configures tracing and metrics for the generator.
// All providers are optional; when nil, the corresponding feature is disabled.
type ObservabilityConfig struct {
	// TracerProvider provides the OpenTelemetry tracer. If nil, tracing is disabled.
	TracerProvider trace.TracerProvider

	// MeterProvider provides the OpenTelemetry meter. If nil, metrics are disabled.
	MeterProvider metric.MeterProvider

	// ServiceName identifies the generator in telemetry data.
	// Defaults to "csdlgen" if not specified.
	ServiceName string

	// ServiceVersion is reported in telemetry attributes.
	ServiceVersion string

	// EnableDetailedDBTracing adds spans for run store queries.
	EnableDetailedDBTracing bool
}

// SetObservability configures tracing and metrics.
//
// Example:
//
//	tp := sdktrace.NewTracerProvider(...)
//	gen.SetObservability(csdlgen.ObservabilityConfig{
//	    TracerProvider: tp,
//	    ServiceVersion: "1.0.0",
//	})
func (g *Generator) SetObservability(cfg ObservabilityConfig) error {
	opts := []observability.Option{}

	if cfg.TracerProvider != nil {
		opts = append(opts, observability.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, observability.WithMeterProvider(cfg.MeterProvider))
	}
	if cfg.ServiceName != "" {
		opts = append(opts, observability.WithServiceName(cfg.ServiceName))
	}
	if cfg.ServiceVersion != "" {
		opts = append(opts, observability.WithServiceVersion(cfg.ServiceVersion))
	}
	if g.logger != nil {
		opts = append(opts, observability.WithLogger(g.logger))
	}
	if cfg.EnableDetailedDBTracing {
		opts = append(opts, observability.WithDetailedDBTracing())
	}

	obsCfg := observability.NewConfig(opts...)
	if err := obsCfg.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	g.observability = obsCfg

	if g.store != nil {
		if err := g.store.SetObservability(obsCfg); err != nil {
			return err
		}
	}

	g.logger.Info("Observability configured",
		"tracing", cfg.TracerProvider != nil,
		"metrics", cfg.MeterProvider != nil,
		"serviceName", obsCfg.ServiceName())
	return nil
}

// LoadDocSet reads and validates a JSON or YAML documentation set.
func LoadDocSet(path string) (*DocSet, error) {
	return docs.Load(path)
}

// Generate builds a model from set.
func (g *Generator) Generate(ctx context.Context, set *DocSet) (result *Result, err error) {
	if set == nil {
		return nil, errors.New("documentation set is required")
	}

	started := time.Now()
	runID := uuid.NewString()
	ctx = handlers.WithRunID(ctx, runID)
	ctx, span := g.observability.StartSpan(ctx, "csdlgen.Generate",
		attribute.String("csdlgen.run_id", runID),
		attribute.Int("csdlgen.resources", len(set.Resources)),
		attribute.Int("csdlgen.methods", len(set.Methods)))
	defer func() { observability.EndSpan(span, err) }()

	logger := g.logger.With("runID", runID)
	logger.Info("Starting run", "resources", len(set.Resources), "methods", len(set.Methods))

	inputFingerprint, err := docs.Fingerprint(set)
	if err != nil {
		return nil, err
	}

	reg := registry.New(nonEmpty(g.cfg.Namespaces), g.cfg.ExcludedNamespaces)
	reg.SetLogger(logger)

	model := edm.NewModel()

	analyzer := metadata.NewAnalyzer(reg)
	analyzer.IncludeDescriptions = g.cfg.IncludeDescriptions
	analyzer.ConflictPolicy = g.cfg.ConflictPolicy
	analyzer.SetLogger(logger)
	if err := analyzer.AddResources(model, set.Resources); err != nil {
		return nil, fmt.Errorf("failed to add resources: %w", err)
	}

	idx := paths.Aggregate(set.Methods, g.cfg.BaseURL, logger)
	logger.Debug("Aggregated request paths", "paths", idx.Len())

	c := container.Infer(idx, logger)
	if len(c.EntitySets) == 0 && len(c.Singletons) == 0 {
		logger.Warn("Documented paths declare no entity set or singleton")
	}
	owner, err := container.Attach(model, c)
	if err != nil {
		return nil, err
	}
	logger.Info("Inferred entity container",
		"namespace", owner.Namespace,
		"entitySets", len(c.EntitySets),
		"singletons", len(c.Singletons))

	engine := augment.NewEngine(reg)
	engine.FlattenActionsToNamespace = g.cfg.FlattenActionsToNamespace
	engine.SetLogger(logger)
	engine.SetObservability(g.observability)
	report, err := engine.Run(ctx, model, idx)
	if err != nil {
		return nil, err
	}

	if len(g.cfg.StaticAnnotations) > 0 {
		if err := augment.ApplyStaticAnnotations(model, g.cfg.StaticAnnotations); err != nil {
			logger.Warn("Failed to apply static annotations", "error", err)
		}
	}

	excluded := reg.ApplyExclusions(model)

	result = &Result{
		RunID:              runID,
		Model:              model,
		Report:             report,
		Fingerprint:        fmt.Sprintf("%016x", idx.Fingerprint()),
		InputFingerprint:   fmt.Sprintf("%016x", inputFingerprint),
		ExcludedNamespaces: excluded,
		StartedAt:          started,
		Duration:           time.Since(started),
	}

	if g.store != nil {
		if err := g.persist(ctx, result); err != nil {
			return result, err
		}
	}

	logger.Info("Finished run",
		"schemas", len(model.Schemas),
		"failed", report.Failed,
		"duration", result.Duration)
	return result, nil
}

func (g *Generator) persist(ctx context.Context, result *Result) error {
	if previous, err := g.store.LatestByFingerprint(ctx, result.Fingerprint); err == nil {
		result.PreviousRunID = previous.ID
		g.logger.Info("Found earlier run over the same paths", "runID", result.RunID, "previousRunID", previous.ID)
	} else if !errors.Is(err, store.ErrRunNotFound) {
		return fmt.Errorf("failed to look up earlier runs: %w", err)
	}

	rendered, err := csdl.Marshal(result.Model, g.csdlOptions)
	if err != nil {
		return fmt.Errorf("failed to render model: %w", err)
	}

	return g.store.SaveRun(ctx, toStoredRun(result, string(rendered)))
}

func toStoredRun(result *Result, rendered string) *store.Run {
	run := &store.Run{
		ID:               result.RunID,
		Fingerprint:      result.Fingerprint,
		InputFingerprint: result.InputFingerprint,
		StartedAt:        result.StartedAt,
		DurationMillis:   result.Duration.Milliseconds(),
		Processed:        result.Report.Processed,
		Failed:           result.Report.Failed,
		Skipped:          result.Report.Skipped,
		Schemas:          len(result.Model.Schemas),
		CSDL:             rendered,
	}
	for _, s := range result.Model.Schemas {
		run.Operations += len(s.Operations())
	}
	if c := result.Model.Container(); c != nil {
		run.EntitySets = len(c.EntitySets)
		run.Singletons = len(c.Singletons)
	}
	for _, o := range result.Report.Outcomes {
		run.Outcomes = append(run.Outcomes, store.PathOutcome{
			Path:           o.Path,
			Classification: o.Classification,
			Outcome:        string(o.Outcome),
			Verbs:          strings.Join(o.Verbs, ","),
			Error:          o.Error,
		})
	}
	return run
}

// ModelFingerprint hashes the compact CSDL rendering of model.
func ModelFingerprint(model *Model) (string, error) {
	rendered, err := csdl.Marshal(model, csdl.Options{})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(rendered)), nil
}

// DefaultCSDLOptions returns the default CSDL formatting.
func DefaultCSDLOptions() CSDLOptions {
	return csdl.DefaultOptions()
}

// WriteCSDL renders model as a CSDL XML document.
func WriteCSDL(w io.Writer, model *Model, opts CSDLOptions) error {
	return csdl.Write(w, model, opts)
}

func nonEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}
