// Package augment applies the aggregated request paths to a model: it
// records capability annotations and synthesizes bound operations.
package augment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/metadata"
	"github.com/nlstn/go-csdlgen/internal/observability"
	"github.com/nlstn/go-csdlgen/internal/paths"
	"github.com/nlstn/go-csdlgen/internal/registry"
	"github.com/nlstn/go-csdlgen/internal/resolver"
)

// Engine resolves every aggregated path and augments the model with what the
// documented methods reveal.
type Engine struct {
	Registry *registry.Registry
	// FlattenActionsToNamespace places every synthesized operation in this
	// namespace, named <qualifier>.<name>.
	FlattenActionsToNamespace string

	logger *slog.Logger
	obs    *observability.Config
}

// NewEngine creates an engine that materializes schemas through reg.
func NewEngine(reg *registry.Registry) *Engine {
	return &Engine{
		Registry: reg,
		logger:   slog.Default(),
		obs:      observability.Default(),
	}
}

// SetLogger sets the logger. Nil restores slog.Default().
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

// SetObservability sets tracing and metrics. Nil restores noop providers.
func (e *Engine) SetObservability(cfg *observability.Config) {
	if cfg == nil {
		cfg = observability.Default()
	}
	e.obs = cfg
}

// Run processes the paths of idx in discovery order. A path that fails to
// resolve is recorded in the report and skipped; a model without an entity
// container aborts the run.
func (e *Engine) Run(ctx context.Context, model *edm.Model, idx *paths.Index) (report *Report, err error) {
	ctx, span := e.obs.StartSpan(ctx, "augment.Run", attribute.Int("paths", idx.Len()))
	start := time.Now()
	defer func() {
		e.obs.Metrics().RecordRun(ctx, time.Since(start), err)
		observability.EndSpan(span, err)
	}()

	report = &Report{}
	for _, path := range idx.Paths() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		mc, _ := idx.Get(path)

		target, err := resolver.Resolve(model, path)
		if err != nil {
			if errors.Is(err, resolver.ErrNoContainer) {
				return report, err
			}
			e.logger.Warn("Failed to resolve request path", "path", path, "error", err)
			e.obs.Metrics().RecordPath(ctx, "", true)
			report.add(PathOutcome{
				Path:    path,
				Outcome: OutcomeFailed,
				Verbs:   mc.AllowedVerbs(),
				Error:   err.Error(),
			})
			continue
		}

		outcome := e.Apply(ctx, model, target, mc)
		e.obs.Metrics().RecordPath(ctx, target.Classification.String(), false)
		report.add(PathOutcome{
			Path:           path,
			Classification: target.Classification.String(),
			Outcome:        outcome,
			Verbs:          mc.AllowedVerbs(),
		})
	}

	span.SetAttributes(
		attribute.Int("processed", report.Processed),
		attribute.Int("failed", report.Failed),
		attribute.Int("skipped", report.Skipped))
	e.logger.Info("Augmented model from request paths",
		"processed", report.Processed,
		"failed", report.Failed,
		"skipped", report.Skipped)
	return report, nil
}

// Apply augments the model for one resolved path.
func (e *Engine) Apply(ctx context.Context, model *edm.Model, target *resolver.Target, mc *paths.MethodCollection) Outcome {
	switch target.Classification {
	case resolver.ClassUnknown:
		return e.CreateOperation(ctx, model, target, mc)

	case resolver.ClassEntitySet, resolver.ClassEntityType:
		e.logger.Debug("Allowed methods for path",
			"path", target.Path,
			"classification", target.Classification.String(),
			"get", mc.GetAllowed,
			"post", mc.PostAllowed,
			"put", mc.PutAllowed,
			"patch", mc.PatchAllowed,
			"delete", mc.DeleteAllowed)

		if target.Classification == resolver.ClassEntitySet {
			if es := model.Container().EntitySet(target.Member); es != nil {
				annotateEntitySet(es, target.Name == paths.Placeholder, mc)
			}
		}
		if target.ViaNavigation {
			if nav := navigationProperty(model, target); nav != nil {
				mergeRestrictions(nav, mc)
			}
		}
		return OutcomeAnnotated

	case resolver.ClassNavigationProperty:
		nav := navigationProperty(model, target)
		if nav == nil {
			e.logger.Warn("Navigation property not declared on owner type",
				"path", target.Path,
				"property", target.Member,
				"ownerType", target.OwnerType)
			return OutcomeInconsistent
		}
		mergeRestrictions(nav, mc)
		return OutcomeAnnotated

	default:
		e.logger.Debug("Ignoring path", "path", target.Path, "classification", target.Classification.String())
		return OutcomeIgnored
	}
}

// annotateEntitySet records the SDK capability terms a verb proves. A path
// addressing one member of the set describes query, write and delete support;
// the bare collection path only tells whether the set can be enumerated.
func annotateEntitySet(es *edm.EntitySet, byKey bool, mc *paths.MethodCollection) {
	if !byKey {
		if mc.GetAllowed {
			edm.MergeTerm(&es.Annotations, metadata.TermEnumerable, true)
		}
		return
	}
	if mc.GetAllowed {
		edm.MergeTerm(&es.Annotations, metadata.TermQueryable, true)
	}
	if mc.PostAllowed {
		edm.MergeTerm(&es.Annotations, metadata.TermWritable, true)
	}
	if mc.DeleteAllowed {
		edm.MergeTerm(&es.Annotations, metadata.TermDeletable, true)
	}
}

func mergeRestrictions(nav *edm.NavigationProperty, mc *paths.MethodCollection) {
	edm.MergeRecord(&nav.Annotations, metadata.TermInsertRestrictions, metadata.PropertyInsertable, mc.PostAllowed)
	edm.MergeRecord(&nav.Annotations, metadata.TermUpdateRestrictions, metadata.PropertyUpdatable, mc.UpdateAllowed())
	edm.MergeRecord(&nav.Annotations, metadata.TermDeleteRestrictions, metadata.PropertyDeletable, mc.DeleteAllowed)
}

// navigationProperty finds the target's member on the type that declares it.
func navigationProperty(model *edm.Model, target *resolver.Target) *edm.NavigationProperty {
	owner, _ := edm.ElementType(target.OwnerType)
	et := model.LookupEntityType(owner)
	if et == nil {
		return nil
	}
	return et.NavigationProperty(target.Member)
}
