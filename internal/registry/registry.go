// Package registry decides which namespaces are materialized as schemas.
package registry

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/nlstn/go-csdlgen/internal/edm"
)

// ReservedNamespace is never materialized as a schema.
const ReservedNamespace = "odata"

// Registry finds or creates schemas subject to namespace filters.
type Registry struct {
	// Allow limits schema creation to these namespaces. Nil allows every namespace.
	Allow []string
	// Deny lists namespaces removed from the model once synthesis completes.
	Deny   []string
	logger *slog.Logger
}

// New creates a registry with the given allow and deny lists.
func New(allow, deny []string) *Registry {
	return &Registry{
		Allow:  allow,
		Deny:   deny,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger. Nil restores slog.Default().
func (r *Registry) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.logger = logger
}

// Allowed reports whether ns passes the filters without override.
func (r *Registry) Allowed(ns string) bool {
	if strings.EqualFold(ns, ReservedNamespace) {
		return false
	}
	if r.Allow != nil && !slices.Contains(r.Allow, ns) {
		return false
	}
	return true
}

// FindOrCreate returns the schema for ns, creating it on first use. It returns
// nil for the reserved odata namespace, and for namespaces outside the allow
// list unless override is set.
func (r *Registry) FindOrCreate(model *edm.Model, ns string, override bool) *edm.Schema {
	if strings.EqualFold(ns, ReservedNamespace) {
		return nil
	}
	if !override && r.Allow != nil && !slices.Contains(r.Allow, ns) {
		r.logger.Debug("Namespace filtered out", "namespace", ns)
		return nil
	}
	if existing := model.Schema(ns); existing != nil {
		return existing
	}
	r.logger.Debug("Created schema", "namespace", ns)
	return model.AddSchema(ns)
}

// ApplyExclusions removes every schema whose namespace is denied and returns
// the removed namespaces.
func (r *Registry) ApplyExclusions(model *edm.Model) []string {
	if len(r.Deny) == 0 {
		return nil
	}
	removed := model.RemoveSchemas(func(s *edm.Schema) bool {
		return slices.Contains(r.Deny, s.Namespace)
	})
	for _, ns := range removed {
		r.logger.Info("Excluded namespace from model", "namespace", ns)
	}
	return removed
}
