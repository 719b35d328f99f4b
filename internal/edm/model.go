package edm

import (
	"errors"
	"fmt"
)

// ErrComplexTypePromotion is returned when a definition would turn an existing
// complex type into an entity type (or the reverse). The documentation has to
// declare a key property consistently for the type instead.
var ErrComplexTypePromotion = errors.New("complex type cannot be promoted to entity type")

// Model is the root of a synthesized entity data model.
// Elements reference each other by qualified name only.
type Model struct {
	Schemas []*Schema
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Schemas: make([]*Schema, 0)}
}

// Schema returns the schema for the namespace or nil.
func (m *Model) Schema(namespace string) *Schema {
	for _, s := range m.Schemas {
		if s.Namespace == namespace {
			return s
		}
	}
	return nil
}

// AddSchema appends a new schema for the namespace. An existing schema is
// returned unchanged.
func (m *Model) AddSchema(namespace string) *Schema {
	if existing := m.Schema(namespace); existing != nil {
		return existing
	}
	s := &Schema{Namespace: namespace}
	m.Schemas = append(m.Schemas, s)
	return s
}

// RemoveSchemas drops every schema for which remove returns true and returns
// the namespaces that were removed.
func (m *Model) RemoveSchemas(remove func(*Schema) bool) []string {
	var removed []string
	kept := m.Schemas[:0]
	for _, s := range m.Schemas {
		if remove(s) {
			removed = append(removed, s.Namespace)
			continue
		}
		kept = append(kept, s)
	}
	m.Schemas = kept
	return removed
}

// LookupEntityType resolves a qualified entity type name.
func (m *Model) LookupEntityType(qualifiedName string) *EntityType {
	s := m.Schema(NamespaceOnly(qualifiedName))
	if s == nil {
		return nil
	}
	return s.EntityType(TypeOnly(qualifiedName))
}

// LookupComplexType resolves a qualified complex type name.
func (m *Model) LookupComplexType(qualifiedName string) *ComplexType {
	s := m.Schema(NamespaceOnly(qualifiedName))
	if s == nil {
		return nil
	}
	return s.ComplexType(TypeOnly(qualifiedName))
}

// EntityContainers returns all containers across schemas in schema order.
func (m *Model) EntityContainers() []*EntityContainer {
	var containers []*EntityContainer
	for _, s := range m.Schemas {
		containers = append(containers, s.EntityContainers...)
	}
	return containers
}

// Container returns the model's single entity container. It returns nil when
// there is none or when more than one schema declares a container.
func (m *Model) Container() *EntityContainer {
	var found *EntityContainer
	for _, s := range m.Schemas {
		if len(s.EntityContainers) == 0 {
			continue
		}
		if found != nil {
			return nil
		}
		found = s.EntityContainers[0]
	}
	return found
}

// Schema groups the elements declared for one namespace.
type Schema struct {
	Namespace        string
	EntityTypes      []*EntityType
	ComplexTypes     []*ComplexType
	EntityContainers []*EntityContainer
	Terms            []*Term
	Actions          []*Operation
	Functions        []*Operation
}

// EntityType returns the entity type with the given unqualified name.
func (s *Schema) EntityType(name string) *EntityType {
	for _, t := range s.EntityTypes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ComplexType returns the complex type with the given unqualified name.
func (s *Schema) ComplexType(name string) *ComplexType {
	for _, t := range s.ComplexTypes {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// AddEntityType appends an entity type. A complex type already declared under
// the same name is a documentation consistency error.
func (s *Schema) AddEntityType(t *EntityType) error {
	if s.ComplexType(t.Name) != nil {
		return fmt.Errorf("%w: %s.%s", ErrComplexTypePromotion, s.Namespace, t.Name)
	}
	s.EntityTypes = append(s.EntityTypes, t)
	return nil
}

// AddComplexType appends a complex type. An entity type already declared under
// the same name is never demoted.
func (s *Schema) AddComplexType(t *ComplexType) error {
	if s.EntityType(t.Name) != nil {
		return fmt.Errorf("%w: %s.%s is already an entity type", ErrComplexTypePromotion, s.Namespace, t.Name)
	}
	s.ComplexTypes = append(s.ComplexTypes, t)
	return nil
}

// ReplaceEntityType swaps the entity type with the same name, or appends it.
func (s *Schema) ReplaceEntityType(t *EntityType) error {
	for i, existing := range s.EntityTypes {
		if existing.Name == t.Name {
			s.EntityTypes[i] = t
			return nil
		}
	}
	return s.AddEntityType(t)
}

// ReplaceComplexType swaps the complex type with the same name, or appends it.
func (s *Schema) ReplaceComplexType(t *ComplexType) error {
	for i, existing := range s.ComplexTypes {
		if existing.Name == t.Name {
			s.ComplexTypes[i] = t
			return nil
		}
	}
	return s.AddComplexType(t)
}

// Term returns the term with the given name.
func (s *Schema) Term(name string) *Term {
	for _, t := range s.Terms {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Operations returns actions followed by functions.
func (s *Schema) Operations() []*Operation {
	ops := make([]*Operation, 0, len(s.Actions)+len(s.Functions))
	ops = append(ops, s.Actions...)
	return append(ops, s.Functions...)
}

// FindOperation returns an operation with the same kind, name and binding type.
func (s *Schema) FindOperation(kind OperationKind, name, bindingType string) *Operation {
	list := s.Actions
	if kind == FunctionKind {
		list = s.Functions
	}
	for _, op := range list {
		if op.Name == name && op.BindingType() == bindingType {
			return op
		}
	}
	return nil
}

// AddOperation appends the operation to the list matching its kind.
func (s *Schema) AddOperation(op *Operation) {
	if op.Kind == FunctionKind {
		s.Functions = append(s.Functions, op)
		return
	}
	s.Actions = append(s.Actions, op)
}

// ComplexType is a named structural type without identity.
type ComplexType struct {
	Name        string
	OpenType    bool
	Properties  []*Property
	Annotations []*Annotation
}

// Property returns the structural property with the given name.
func (t *ComplexType) Property(name string) *Property {
	return findProperty(t.Properties, name)
}

// EntityType is a structural type with a key.
type EntityType struct {
	Name                 string
	OpenType             bool
	Key                  []string
	Properties           []*Property
	NavigationProperties []*NavigationProperty
	Annotations          []*Annotation
}

// Property returns the structural property with the given name.
func (t *EntityType) Property(name string) *Property {
	return findProperty(t.Properties, name)
}

// NavigationProperty returns the navigation property with the given name.
func (t *EntityType) NavigationProperty(name string) *NavigationProperty {
	for _, np := range t.NavigationProperties {
		if np.Name == name {
			return np
		}
	}
	return nil
}

func findProperty(props []*Property, name string) *Property {
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Property is a structural property.
type Property struct {
	Name        string
	Type        string
	Nullable    *bool
	Annotations []*Annotation
}

// NavigationProperty relates an entity type to another entity type.
type NavigationProperty struct {
	Name           string
	Type           string
	ContainsTarget bool
	Annotations    []*Annotation
}

// EntityContainer holds the root addressable entity sets and singletons.
type EntityContainer struct {
	Name        string
	EntitySets  []*EntitySet
	Singletons  []*Singleton
	Annotations []*Annotation
}

// EntitySet returns the entity set with the given name.
func (c *EntityContainer) EntitySet(name string) *EntitySet {
	for _, es := range c.EntitySets {
		if es.Name == name {
			return es
		}
	}
	return nil
}

// Singleton returns the singleton with the given name.
func (c *EntityContainer) Singleton(name string) *Singleton {
	for _, s := range c.Singletons {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// EntitySet is a root addressable collection of entities.
type EntitySet struct {
	Name        string
	EntityType  string
	Annotations []*Annotation
}

// Singleton is a root addressable single entity.
type Singleton struct {
	Name        string
	Type        string
	Annotations []*Annotation
}

// Term declares a vocabulary term, usually an instance annotation.
type Term struct {
	Name        string
	Type        string
	AppliesTo   string
	Annotations []*Annotation
}

// OperationKind distinguishes actions from functions.
type OperationKind int

const (
	// ActionKind operations may have side effects.
	ActionKind OperationKind = iota
	// FunctionKind operations are side-effect free.
	FunctionKind
)

func (k OperationKind) String() string {
	if k == FunctionKind {
		return "Function"
	}
	return "Action"
}

// BindingParameterName is the name of the implicit first parameter of bound operations.
const BindingParameterName = "bindingParameter"

// Operation is an action or function.
type Operation struct {
	Kind       OperationKind
	Name       string
	IsBound    bool
	Parameters []*Parameter
	ReturnType *ReturnType
}

// BindingType returns the type of the binding parameter or "" for unbound operations.
func (o *Operation) BindingType() string {
	if !o.IsBound || len(o.Parameters) == 0 {
		return ""
	}
	return o.Parameters[0].Type
}

// Parameter is an operation parameter.
type Parameter struct {
	Name     string
	Type     string
	Nullable *bool
}

// ReturnType describes the result of an operation.
type ReturnType struct {
	Type     string
	Nullable *bool
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
