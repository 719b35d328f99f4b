// Package resolver walks generic request paths through an entity data model
// and classifies what the final segment addresses.
package resolver

import (
	"errors"
	"fmt"

	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/paths"
)

var (
	// ErrNoContainer is returned when the model has no single entity container.
	ErrNoContainer = errors.New("model has no entity container")
	// ErrUnknownSegment is returned when a non-final segment cannot be resolved.
	ErrUnknownSegment = errors.New("unknown path segment")
	// ErrComplexTypeReached is returned when a path ends on a complex type.
	ErrComplexTypeReached = errors.New("path addresses a complex type")
	// ErrUnsupportedNode is returned when a path ends on a node that cannot be classified.
	ErrUnsupportedNode = errors.New("unsupported node at end of path")
	// ErrKeyNavigation is returned when a key segment follows a node that has no keys.
	ErrKeyNavigation = errors.New("key segment on a node that is not a collection")
	// ErrUnknownType is returned when a declared type cannot be found in the model.
	ErrUnknownType = errors.New("unknown type")
)

// PathError records the path and segment that failed to resolve.
type PathError struct {
	Path    string
	Segment string
	Err     error
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("resolve %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("resolve %s at segment %q: %v", e.Path, e.Segment, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Classification is what a resolved path addresses.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassEntityContainer
	ClassEntitySet
	ClassEntityType
	ClassNavigationProperty
	ClassSimpleType
)

func (c Classification) String() string {
	switch c {
	case ClassEntityContainer:
		return "EntityContainer"
	case ClassEntitySet:
		return "EntitySet"
	case ClassEntityType:
		return "EntityType"
	case ClassNavigationProperty:
		return "NavigationProperty"
	case ClassSimpleType:
		return "SimpleType"
	default:
		return "Unknown"
	}
}

// Target is the result of resolving a path.
type Target struct {
	Path           string
	Classification Classification
	// Name is the last path segment, possibly the placeholder.
	Name string
	// Member is the last non-placeholder segment.
	Member string
	// QualifiedType is the type of the addressed node. Empty when unresolved.
	QualifiedType string
	// OwnerType is the type declaring Member.
	OwnerType string
	// Owner is the node Member was looked up on.
	Owner Navigable
	// Node is the addressed node, or the owner when the final segment is unresolved.
	Node Navigable
	// ViaNavigation is true when Member is a navigation property of OwnerType.
	ViaNavigation bool
}

// OwnerIsContainer reports whether Member was looked up on the service root.
func (t *Target) OwnerIsContainer() bool {
	return t.Owner != nil && t.Owner.Kind() == KindContainer
}

// Resolve walks path from the model's entity container. The model is not modified.
func Resolve(model *edm.Model, path string) (*Target, error) {
	c := model.Container()
	if c == nil {
		return nil, &PathError{Path: path, Err: ErrNoContainer}
	}

	segments := paths.Segments(path)
	target := &Target{Path: path}
	if len(segments) > 0 {
		target.Name = segments[len(segments)-1]
	}

	var current Navigable = &ContainerNode{Container: c}
	var previous Navigable

	for i, segment := range segments {
		last := i == len(segments)-1

		if segment == paths.Placeholder {
			if last {
				break
			}
			next, err := current.NavigateByKey(model)
			if err != nil {
				return nil, &PathError{Path: path, Segment: segment, Err: err}
			}
			previous, current = current, next
			continue
		}

		next, err := current.NavigateByName(segment, model)
		if err != nil {
			return nil, &PathError{Path: path, Segment: segment, Err: err}
		}

		if next == nil {
			if !last {
				return nil, &PathError{Path: path, Segment: segment, Err: ErrUnknownSegment}
			}
			target.Classification = ClassNavigationProperty
			if edm.HasNamespace(segment) {
				target.Classification = ClassUnknown
			}
			target.Member = segment
			target.Owner = current
			target.OwnerType = current.QualifiedType()
			target.Node = current
			return target, nil
		}

		target.Member = segment
		target.Owner = current
		target.OwnerType = current.QualifiedType()
		target.ViaNavigation = declaresNavigation(current, segment, model)
		previous, current = current, next
	}

	target.Node = current
	target.QualifiedType = current.QualifiedType()

	switch current.Kind() {
	case KindEntityType, KindSingleton:
		target.Classification = ClassEntityType
	case KindContainer:
		target.Classification = ClassEntityContainer
	case KindSimpleType:
		target.Classification = ClassSimpleType
	case KindCollection, KindEntitySet:
		if previous != nil && previous.Kind() == KindContainer {
			target.Classification = ClassEntitySet
		} else {
			target.Classification = ClassNavigationProperty
		}
	case KindComplexType:
		return nil, &PathError{Path: path, Segment: target.Name, Err: ErrComplexTypeReached}
	default:
		return nil, &PathError{Path: path, Segment: target.Name, Err: ErrUnsupportedNode}
	}
	return target, nil
}

func declaresNavigation(owner Navigable, name string, model *edm.Model) bool {
	switch n := owner.(type) {
	case *EntityTypeNode:
		return n.Type.NavigationProperty(name) != nil
	case *SingletonNode:
		et := model.LookupEntityType(n.Singleton.Type)
		return et != nil && et.NavigationProperty(name) != nil
	default:
		return false
	}
}
