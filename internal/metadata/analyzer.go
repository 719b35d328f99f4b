// Package metadata turns documented resources into entity types, complex types
// and instance annotation terms.
package metadata

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nlstn/go-csdlgen/internal/docs"
	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/registry"
)

var (
	// ErrUnqualifiedResource is returned for resource names without a namespace.
	ErrUnqualifiedResource = errors.New("resource name is not namespace qualified")
	// ErrMissingKeyProperty is returned when the declared key is not among the resource parameters.
	ErrMissingKeyProperty = errors.New("key property is not declared on the resource")
	// ErrInvalidConflictPolicy is returned by ParseConflictPolicy.
	ErrInvalidConflictPolicy = errors.New("invalid conflict policy")
)

// ConflictPolicy decides what happens when a resource is documented twice.
type ConflictPolicy string

const (
	// ConflictIgnore keeps the first definition.
	ConflictIgnore ConflictPolicy = "ignore"
	// ConflictOverride replaces the earlier definition.
	ConflictOverride ConflictPolicy = "override"
)

// ParseConflictPolicy parses a policy name. The empty string means ConflictIgnore.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ConflictIgnore:
		return ConflictIgnore, nil
	case ConflictOverride:
		return ConflictOverride, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidConflictPolicy, s)
	}
}

// Analyzer adds documented resources to a model.
type Analyzer struct {
	Registry            *registry.Registry
	IncludeDescriptions bool
	ConflictPolicy      ConflictPolicy
	logger              *slog.Logger
}

// NewAnalyzer creates an analyzer that materializes schemas through reg.
func NewAnalyzer(reg *registry.Registry) *Analyzer {
	return &Analyzer{
		Registry:       reg,
		ConflictPolicy: ConflictIgnore,
		logger:         slog.Default(),
	}
}

// SetLogger sets the logger. Nil restores slog.Default().
func (a *Analyzer) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	a.logger = logger
}

// AddResources adds every resource in order and stops at the first error.
func (a *Analyzer) AddResources(model *edm.Model, resources []docs.ResourceDefinition) error {
	for _, r := range resources {
		if err := a.AddResource(model, r); err != nil {
			return err
		}
	}
	return nil
}

// AddResource adds one resource. A resource with a key property becomes an
// entity type, anything else a complex type. Parameters named @ns.term are
// declared as terms in their own namespace.
func (a *Analyzer) AddResource(model *edm.Model, resource docs.ResourceDefinition) error {
	if !edm.HasNamespace(resource.Name) {
		return fmt.Errorf("%w: %q", ErrUnqualifiedResource, resource.Name)
	}

	ns := edm.NamespaceOnly(resource.Name)
	name := edm.TypeOnly(resource.Name)

	schema := a.Registry.FindOrCreate(model, ns, false)
	if schema == nil {
		a.logger.Debug("Skipping resource outside configured namespaces", "resource", resource.Name)
		return nil
	}

	var properties []docs.ParameterDefinition
	for _, p := range resource.Parameters {
		if p.IsInstanceAnnotation() {
			a.addTerm(model, resource.Name, p)
			continue
		}
		properties = append(properties, p)
	}

	if resource.KeyProperty != "" {
		return a.addEntityType(schema, name, resource, properties)
	}
	return a.addComplexType(schema, name, resource, properties)
}

func (a *Analyzer) addEntityType(schema *edm.Schema, name string, resource docs.ResourceDefinition, params []docs.ParameterDefinition) error {
	et := &edm.EntityType{
		Name:     name,
		OpenType: resource.OpenType,
		Key:      []string{resource.KeyProperty},
	}

	keyFound := false
	for _, p := range params {
		if p.IsNavigable {
			et.NavigationProperties = append(et.NavigationProperties, &edm.NavigationProperty{
				Name:        p.Name,
				Type:        edm.ResourceTypeName(p.Type),
				Annotations: a.descriptionAnnotations(p),
			})
			continue
		}
		prop := a.property(p)
		if p.Name == resource.KeyProperty {
			prop.Nullable = edm.BoolPtr(false)
			keyFound = true
		}
		et.Properties = append(et.Properties, prop)
	}
	if !keyFound {
		return fmt.Errorf("%w: %s.%s", ErrMissingKeyProperty, resource.Name, resource.KeyProperty)
	}

	if existing := schema.EntityType(name); existing != nil {
		if a.ConflictPolicy != ConflictOverride {
			a.logger.Info("Ignoring duplicate resource definition", "resource", resource.Name)
			return nil
		}
		a.logger.Info("Overriding duplicate resource definition", "resource", resource.Name)
		return schema.ReplaceEntityType(et)
	}
	if err := schema.AddEntityType(et); err != nil {
		return fmt.Errorf("resource %s: %w", resource.Name, err)
	}
	a.logger.Debug("Added entity type",
		"resource", resource.Name,
		"properties", len(et.Properties),
		"navigationProperties", len(et.NavigationProperties))
	return nil
}

func (a *Analyzer) addComplexType(schema *edm.Schema, name string, resource docs.ResourceDefinition, params []docs.ParameterDefinition) error {
	ct := &edm.ComplexType{
		Name:     name,
		OpenType: resource.OpenType,
	}
	for _, p := range params {
		ct.Properties = append(ct.Properties, a.property(p))
	}

	if existing := schema.ComplexType(name); existing != nil {
		if a.ConflictPolicy != ConflictOverride {
			a.logger.Info("Ignoring duplicate resource definition", "resource", resource.Name)
			return nil
		}
		a.logger.Info("Overriding duplicate resource definition", "resource", resource.Name)
		return schema.ReplaceComplexType(ct)
	}
	if err := schema.AddComplexType(ct); err != nil {
		return fmt.Errorf("resource %s: %w", resource.Name, err)
	}
	a.logger.Debug("Added complex type", "resource", resource.Name, "properties", len(ct.Properties))
	return nil
}

func (a *Analyzer) property(p docs.ParameterDefinition) *edm.Property {
	return &edm.Property{
		Name:        p.Name,
		Type:        edm.ResourceTypeName(p.Type),
		Annotations: a.descriptionAnnotations(p),
	}
}

func (a *Analyzer) descriptionAnnotations(p docs.ParameterDefinition) []*edm.Annotation {
	if !a.IncludeDescriptions || strings.TrimSpace(p.Description) == "" {
		return nil
	}
	var annotations []*edm.Annotation
	edm.SetTerm(&annotations, TermDescription, edm.StringValue(p.Description))
	return annotations
}

// addTerm declares an instance annotation term. Terms bypass the namespace
// allow list so annotations from foreign vocabularies stay declared.
func (a *Analyzer) addTerm(model *edm.Model, resourceName string, p docs.ParameterDefinition) {
	qualified := strings.TrimPrefix(p.Name, "@")
	if !edm.HasNamespace(qualified) {
		a.logger.Warn("Instance annotation is not namespace qualified", "resource", resourceName, "annotation", p.Name)
		return
	}

	schema := a.Registry.FindOrCreate(model, edm.NamespaceOnly(qualified), true)
	if schema == nil {
		return
	}

	term := &edm.Term{
		Name:        edm.TypeOnly(qualified),
		Type:        edm.ResourceTypeName(p.Type),
		AppliesTo:   resourceName,
		Annotations: a.descriptionAnnotations(p),
	}

	for i, existing := range schema.Terms {
		if existing.Name != term.Name {
			continue
		}
		if a.ConflictPolicy == ConflictOverride {
			schema.Terms[i] = term
		}
		return
	}
	schema.Terms = append(schema.Terms, term)
	a.logger.Debug("Declared instance annotation term", "term", qualified, "appliesTo", term.AppliesTo)
}
