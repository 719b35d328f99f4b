// Package container infers the root entity sets and singletons of a model
// from the shape of the documented request paths.
package container

import (
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/paths"
)

// ErrNoSchema is returned when a container has to be attached to a model without schemas.
var ErrNoSchema = errors.New("model has no schema to own the entity container")

// Shape is the root-level form of a generic path.
type Shape int

const (
	// ShapeOther covers every path that is neither a set nor a singleton.
	ShapeOther Shape = iota
	// ShapeEntitySet is /<name>/{var}.
	ShapeEntitySet
	// ShapeSingleton is /<name>.
	ShapeSingleton
)

func (s Shape) String() string {
	switch s {
	case ShapeEntitySet:
		return "EntitySet"
	case ShapeSingleton:
		return "Singleton"
	default:
		return "Other"
	}
}

var (
	entitySetPattern = regexp.MustCompile(`^/(\w+)/` + regexp.QuoteMeta(paths.Placeholder) + `$`)
	singletonPattern = regexp.MustCompile(`^/(\w+)$`)
)

// Classify returns the shape of a generic path and the root name it declares.
func Classify(path string) (Shape, string) {
	if m := entitySetPattern.FindStringSubmatch(path); m != nil {
		return ShapeEntitySet, m[1]
	}
	if m := singletonPattern.FindStringSubmatch(path); m != nil {
		return ShapeSingleton, m[1]
	}
	return ShapeOther, ""
}

// Infer builds an unnamed entity container from the aggregated paths. A
// singleton-shaped path is suppressed when a sibling path addresses the same
// name by key, since it is then the collection of an entity set.
func Infer(idx *paths.Index, logger *slog.Logger) *edm.EntityContainer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &edm.EntityContainer{}
	sorted := idx.SortedPaths()

	for _, path := range sorted {
		shape, name := Classify(path)
		if shape == ShapeOther {
			continue
		}
		mc, _ := idx.Get(path)
		typeName := rootType(mc.ResponseType)

		switch shape {
		case ShapeEntitySet:
			if c.EntitySet(name) != nil {
				continue
			}
			if typeName == "" {
				logger.Warn("Entity set path has no documented response type", "path", path)
			}
			logger.Debug("Declared entity set", "name", name, "entityType", typeName)
			c.EntitySets = append(c.EntitySets, &edm.EntitySet{Name: name, EntityType: typeName})

		case ShapeSingleton:
			if hasKeyedSibling(sorted, path) {
				logger.Debug("Suppressed singleton with keyed sibling", "path", path)
				continue
			}
			if c.Singleton(name) != nil {
				continue
			}
			if typeName == "" {
				logger.Warn("Singleton path has no documented response type", "path", path)
			}
			logger.Debug("Declared singleton", "name", name, "type", typeName)
			c.Singletons = append(c.Singletons, &edm.Singleton{Name: name, Type: typeName})
		}
	}
	return c
}

func hasKeyedSibling(sorted []string, path string) bool {
	prefix := path + "/"
	for _, other := range sorted {
		if !strings.HasPrefix(other, prefix) {
			continue
		}
		if shape, _ := Classify(other); shape == ShapeEntitySet {
			return true
		}
	}
	return false
}

func rootType(responseType string) string {
	element, _ := edm.ElementType(edm.ResourceTypeName(responseType))
	return element
}

// Attach names the container after the schema declaring the most entity types
// and adds it to that schema. Ties go to the namespace that sorts first.
func Attach(model *edm.Model, c *edm.EntityContainer) (*edm.Schema, error) {
	if len(model.Schemas) == 0 {
		return nil, ErrNoSchema
	}

	candidates := slices.Clone(model.Schemas)
	slices.SortStableFunc(candidates, func(a, b *edm.Schema) int {
		if diff := len(b.EntityTypes) - len(a.EntityTypes); diff != 0 {
			return diff
		}
		return strings.Compare(a.Namespace, b.Namespace)
	})

	owner := candidates[0]
	c.Name = owner.Namespace
	owner.EntityContainers = append(owner.EntityContainers, c)
	return owner, nil
}
