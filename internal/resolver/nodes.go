package resolver

import (
	"github.com/nlstn/go-csdlgen/internal/edm"
)

// Kind identifies the variant of a Navigable node.
type Kind int

const (
	KindContainer Kind = iota
	KindEntitySet
	KindSingleton
	KindEntityType
	KindComplexType
	KindCollection
	KindSimpleType
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "EntityContainer"
	case KindEntitySet:
		return "EntitySet"
	case KindSingleton:
		return "Singleton"
	case KindEntityType:
		return "EntityType"
	case KindComplexType:
		return "ComplexType"
	case KindCollection:
		return "Collection"
	case KindSimpleType:
		return "SimpleType"
	default:
		return "Unknown"
	}
}

// Navigable is a model element a path segment can step into.
// NavigateByName returns nil without error when the name is not declared.
type Navigable interface {
	Kind() Kind
	QualifiedType() string
	NavigateByKey(model *edm.Model) (Navigable, error)
	NavigateByName(name string, model *edm.Model) (Navigable, error)
}

// ContainerNode is the service root.
type ContainerNode struct {
	Container *edm.EntityContainer
}

func (n *ContainerNode) Kind() Kind            { return KindContainer }
func (n *ContainerNode) QualifiedType() string { return n.Container.Name }

func (n *ContainerNode) NavigateByKey(*edm.Model) (Navigable, error) {
	return nil, ErrKeyNavigation
}

func (n *ContainerNode) NavigateByName(name string, _ *edm.Model) (Navigable, error) {
	if es := n.Container.EntitySet(name); es != nil {
		return &EntitySetNode{Set: es}, nil
	}
	if s := n.Container.Singleton(name); s != nil {
		return &SingletonNode{Singleton: s}, nil
	}
	return nil, nil
}

// EntitySetNode is a root collection of entities.
type EntitySetNode struct {
	Set *edm.EntitySet
}

func (n *EntitySetNode) Kind() Kind            { return KindEntitySet }
func (n *EntitySetNode) QualifiedType() string { return edm.CollectionOf(n.Set.EntityType) }

func (n *EntitySetNode) NavigateByKey(model *edm.Model) (Navigable, error) {
	return typeNode(n.Set.EntityType, model)
}

func (n *EntitySetNode) NavigateByName(string, *edm.Model) (Navigable, error) {
	return nil, nil
}

// SingletonNode is a root single entity.
type SingletonNode struct {
	Singleton *edm.Singleton
}

func (n *SingletonNode) Kind() Kind            { return KindSingleton }
func (n *SingletonNode) QualifiedType() string { return n.Singleton.Type }

func (n *SingletonNode) NavigateByKey(*edm.Model) (Navigable, error) {
	return nil, ErrKeyNavigation
}

func (n *SingletonNode) NavigateByName(name string, model *edm.Model) (Navigable, error) {
	t, err := typeNode(n.Singleton.Type, model)
	if err != nil {
		return nil, err
	}
	return t.NavigateByName(name, model)
}

// EntityTypeNode is a single entity of a declared type.
type EntityTypeNode struct {
	Namespace string
	Type      *edm.EntityType
}

func (n *EntityTypeNode) Kind() Kind            { return KindEntityType }
func (n *EntityTypeNode) QualifiedType() string { return edm.Qualify(n.Namespace, n.Type.Name) }

func (n *EntityTypeNode) NavigateByKey(*edm.Model) (Navigable, error) {
	return nil, ErrKeyNavigation
}

func (n *EntityTypeNode) NavigateByName(name string, model *edm.Model) (Navigable, error) {
	if nav := n.Type.NavigationProperty(name); nav != nil {
		return typeNode(nav.Type, model)
	}
	if p := n.Type.Property(name); p != nil {
		return typeNode(p.Type, model)
	}
	return nil, nil
}

// ComplexTypeNode is a structured value without identity.
type ComplexTypeNode struct {
	Namespace string
	Type      *edm.ComplexType
}

func (n *ComplexTypeNode) Kind() Kind            { return KindComplexType }
func (n *ComplexTypeNode) QualifiedType() string { return edm.Qualify(n.Namespace, n.Type.Name) }

func (n *ComplexTypeNode) NavigateByKey(*edm.Model) (Navigable, error) {
	return nil, ErrKeyNavigation
}

func (n *ComplexTypeNode) NavigateByName(name string, model *edm.Model) (Navigable, error) {
	if p := n.Type.Property(name); p != nil {
		return typeNode(p.Type, model)
	}
	return nil, nil
}

// CollectionNode is a collection-valued property.
type CollectionNode struct {
	ElementType string
}

func (n *CollectionNode) Kind() Kind            { return KindCollection }
func (n *CollectionNode) QualifiedType() string { return edm.CollectionOf(n.ElementType) }

func (n *CollectionNode) NavigateByKey(model *edm.Model) (Navigable, error) {
	return typeNode(n.ElementType, model)
}

func (n *CollectionNode) NavigateByName(string, *edm.Model) (Navigable, error) {
	return nil, nil
}

// SimpleTypeNode is a primitive value.
type SimpleTypeNode struct {
	Type string
}

func (n *SimpleTypeNode) Kind() Kind            { return KindSimpleType }
func (n *SimpleTypeNode) QualifiedType() string { return n.Type }

func (n *SimpleTypeNode) NavigateByKey(*edm.Model) (Navigable, error) {
	return nil, ErrKeyNavigation
}

func (n *SimpleTypeNode) NavigateByName(string, *edm.Model) (Navigable, error) {
	return nil, nil
}

// typeNode wraps a declared type name in its node variant.
func typeNode(typeName string, model *edm.Model) (Navigable, error) {
	if element, ok := edm.ElementType(typeName); ok {
		return &CollectionNode{ElementType: element}, nil
	}
	if edm.IsPrimitive(typeName) {
		return &SimpleTypeNode{Type: typeName}, nil
	}
	ns := edm.NamespaceOnly(typeName)
	if et := model.LookupEntityType(typeName); et != nil {
		return &EntityTypeNode{Namespace: ns, Type: et}, nil
	}
	if ct := model.LookupComplexType(typeName); ct != nil {
		return &ComplexTypeNode{Namespace: ns, Type: ct}, nil
	}
	return nil, &unknownTypeError{typeName: typeName}
}

type unknownTypeError struct {
	typeName string
}

func (e *unknownTypeError) Error() string {
	return "unknown type " + e.typeName
}

func (e *unknownTypeError) Unwrap() error {
	return ErrUnknownType
}
