// Package csdl renders an entity data model as a CSDL XML document.
package csdl

import "encoding/xml"

const (
	edmxNamespace = "http://docs.oasis-open.org/odata/ns/edmx"
	edmNamespace  = "http://docs.oasis-open.org/odata/ns/edm"
	edmxVersion   = "4.0"
)

type edmxDocument struct {
	XMLName      xml.Name     `xml:"edmx:Edmx"`
	Version      string       `xml:"Version,attr"`
	Xmlns        string       `xml:"xmlns:edmx,attr"`
	DataServices dataServices `xml:"edmx:DataServices"`
}

type dataServices struct {
	Schemas []schema `xml:"Schema"`
}

type schema struct {
	Xmlns            string            `xml:"xmlns,attr"`
	Namespace        string            `xml:"Namespace,attr"`
	EntityTypes      []entityType      `xml:"EntityType,omitempty"`
	ComplexTypes     []complexType     `xml:"ComplexType,omitempty"`
	Terms            []term            `xml:"Term,omitempty"`
	Actions          []operation       `xml:"Action,omitempty"`
	Functions        []operation       `xml:"Function,omitempty"`
	EntityContainers []entityContainer `xml:"EntityContainer,omitempty"`
}

type entityType struct {
	Name                 string               `xml:"Name,attr"`
	OpenType             bool                 `xml:"OpenType,attr,omitempty"`
	Key                  *key                 `xml:"Key,omitempty"`
	Properties           []property           `xml:"Property,omitempty"`
	NavigationProperties []navigationProperty `xml:"NavigationProperty,omitempty"`
	Annotations          []annotation         `xml:"Annotation,omitempty"`
}

type key struct {
	PropertyRefs []propertyRef `xml:"PropertyRef"`
}

type propertyRef struct {
	Name string `xml:"Name,attr"`
}

type complexType struct {
	Name        string       `xml:"Name,attr"`
	OpenType    bool         `xml:"OpenType,attr,omitempty"`
	Properties  []property   `xml:"Property,omitempty"`
	Annotations []annotation `xml:"Annotation,omitempty"`
}

type property struct {
	Name        string       `xml:"Name,attr"`
	Type        string       `xml:"Type,attr"`
	Nullable    *bool        `xml:"Nullable,attr,omitempty"`
	Annotations []annotation `xml:"Annotation,omitempty"`
}

type navigationProperty struct {
	Name           string       `xml:"Name,attr"`
	Type           string       `xml:"Type,attr"`
	ContainsTarget bool         `xml:"ContainsTarget,attr,omitempty"`
	Annotations    []annotation `xml:"Annotation,omitempty"`
}

type term struct {
	Name        string       `xml:"Name,attr"`
	Type        string       `xml:"Type,attr"`
	AppliesTo   string       `xml:"AppliesTo,attr,omitempty"`
	Annotations []annotation `xml:"Annotation,omitempty"`
}

type operation struct {
	Name       string      `xml:"Name,attr"`
	IsBound    bool        `xml:"IsBound,attr,omitempty"`
	Parameters []parameter `xml:"Parameter,omitempty"`
	ReturnType *returnType `xml:"ReturnType,omitempty"`
}

type parameter struct {
	Name     string `xml:"Name,attr"`
	Type     string `xml:"Type,attr"`
	Nullable *bool  `xml:"Nullable,attr,omitempty"`
}

type returnType struct {
	Type     string `xml:"Type,attr"`
	Nullable *bool  `xml:"Nullable,attr,omitempty"`
}

type entityContainer struct {
	Name        string       `xml:"Name,attr"`
	EntitySets  []entitySet  `xml:"EntitySet,omitempty"`
	Singletons  []singleton  `xml:"Singleton,omitempty"`
	Annotations []annotation `xml:"Annotation,omitempty"`
}

type entitySet struct {
	Name        string       `xml:"Name,attr"`
	EntityType  string       `xml:"EntityType,attr"`
	Annotations []annotation `xml:"Annotation,omitempty"`
}

type singleton struct {
	Name        string       `xml:"Name,attr"`
	Type        string       `xml:"Type,attr"`
	Annotations []annotation `xml:"Annotation,omitempty"`
}

type annotation struct {
	Term    string  `xml:"Term,attr"`
	Bool    *bool   `xml:"Bool,attr,omitempty"`
	String  *string `xml:"String,attr,omitempty"`
	Int     *int64  `xml:"Int,attr,omitempty"`
	Decimal string  `xml:"Decimal,attr,omitempty"`
	Record  *record `xml:"Record,omitempty"`
}

type record struct {
	PropertyValues []propertyValue `xml:"PropertyValue"`
}

type propertyValue struct {
	Property string  `xml:"Property,attr"`
	Bool     *bool   `xml:"Bool,attr,omitempty"`
	String   *string `xml:"String,attr,omitempty"`
	Int      *int64  `xml:"Int,attr,omitempty"`
	Decimal  string  `xml:"Decimal,attr,omitempty"`
}
