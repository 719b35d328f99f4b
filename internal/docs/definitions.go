// Package docs defines the resource and method definitions extracted from API
// documentation, which are the input of model synthesis.
package docs

import (
	"net/http"
	"strings"
)

// ParameterLocation tells where a method parameter is transmitted.
type ParameterLocation string

const (
	LocationBody        ParameterLocation = "body"
	LocationQueryString ParameterLocation = "query"
	LocationPath        ParameterLocation = "path"
	LocationHeader      ParameterLocation = "header"
)

// ParameterDefinition describes a resource property or a method parameter.
type ParameterDefinition struct {
	Name         string            `json:"name" yaml:"name"`
	Type         string            `json:"type" yaml:"type"`
	IsNavigable  bool              `json:"isNavigable,omitempty" yaml:"isNavigable,omitempty"`
	IsAnnotation bool              `json:"isAnnotation,omitempty" yaml:"isAnnotation,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Required     *bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Location     ParameterLocation `json:"location,omitempty" yaml:"location,omitempty"`
}

// IsRequired reports whether the parameter was documented as required.
func (p ParameterDefinition) IsRequired() bool {
	return p.Required != nil && *p.Required
}

// IsInstanceAnnotation reports whether the parameter describes an instance
// annotation (@namespace.term) rather than a property.
func (p ParameterDefinition) IsInstanceAnnotation() bool {
	return p.IsAnnotation || strings.HasPrefix(p.Name, "@")
}

// ResourceDefinition describes one documented resource type.
type ResourceDefinition struct {
	// Name is the namespace qualified resource name, e.g. microsoft.graph.user.
	Name string `json:"name" yaml:"name"`
	// KeyProperty marks the resource as an entity type when set.
	KeyProperty string                `json:"keyProperty,omitempty" yaml:"keyProperty,omitempty"`
	OpenType    bool                  `json:"openType,omitempty" yaml:"openType,omitempty"`
	Parameters  []ParameterDefinition `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// MethodDefinition describes one documented request/response example.
type MethodDefinition struct {
	Identifier  string `json:"identifier" yaml:"identifier"`
	RequestPath string `json:"requestPath" yaml:"requestPath"`
	HTTPMethod  string `json:"httpMethod" yaml:"httpMethod"`
	// Idempotent overrides the idempotency derived from the HTTP method.
	Idempotent            *bool                 `json:"idempotent,omitempty" yaml:"idempotent,omitempty"`
	RequestBodyParameters []ParameterDefinition `json:"requestBodyParameters,omitempty" yaml:"requestBodyParameters,omitempty"`
	QueryParameters       []ParameterDefinition `json:"queryParameters,omitempty" yaml:"queryParameters,omitempty"`
	ExpectedResponseType  string                `json:"expectedResponseType,omitempty" yaml:"expectedResponseType,omitempty"`
	ExpectError           bool                  `json:"expectError,omitempty" yaml:"expectError,omitempty"`
}

// Verb returns the upper-cased HTTP method, defaulting to GET.
func (m MethodDefinition) Verb() string {
	verb := strings.ToUpper(strings.TrimSpace(m.HTTPMethod))
	if verb == "" {
		return http.MethodGet
	}
	return verb
}

// IsIdempotent reports whether repeating the request has no additional effect.
func (m MethodDefinition) IsIdempotent() bool {
	if m.Idempotent != nil {
		return *m.Idempotent
	}
	switch m.Verb() {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// DocSet is the full documentation input for one synthesis run.
type DocSet struct {
	Resources []ResourceDefinition `json:"resources" yaml:"resources"`
	Methods   []MethodDefinition   `json:"methods" yaml:"methods"`
}
