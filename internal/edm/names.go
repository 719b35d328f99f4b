package edm

import "strings"

const (
	collectionPrefix = "Collection("
	primitivePrefix  = "Edm."
)

// NamespaceOnly returns everything before the last dot of a qualified name.
func NamespaceOnly(qualifiedName string) string {
	idx := strings.LastIndex(qualifiedName, ".")
	if idx < 0 {
		return ""
	}
	return qualifiedName[:idx]
}

// TypeOnly returns the local part of a qualified name.
func TypeOnly(qualifiedName string) string {
	idx := strings.LastIndex(qualifiedName, ".")
	if idx < 0 {
		return qualifiedName
	}
	return qualifiedName[idx+1:]
}

// HasNamespace reports whether name is namespace qualified.
func HasNamespace(name string) bool {
	idx := strings.LastIndex(name, ".")
	return idx > 0 && idx < len(name)-1
}

// Qualify joins a namespace and a local name.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// CollectionOf wraps a type name in Collection().
func CollectionOf(typeName string) string {
	return collectionPrefix + typeName + ")"
}

// ElementType unwraps Collection(T) and reports whether typeName was a collection.
func ElementType(typeName string) (string, bool) {
	if strings.HasPrefix(typeName, collectionPrefix) && strings.HasSuffix(typeName, ")") {
		return typeName[len(collectionPrefix) : len(typeName)-1], true
	}
	return typeName, false
}

// IsPrimitive reports whether typeName names an Edm primitive type.
func IsPrimitive(typeName string) bool {
	return strings.HasPrefix(typeName, primitivePrefix)
}

var primitiveTypeNames = map[string]string{
	"string":         "Edm.String",
	"boolean":        "Edm.Boolean",
	"bool":           "Edm.Boolean",
	"byte":           "Edm.Byte",
	"int16":          "Edm.Int16",
	"int32":          "Edm.Int32",
	"int":            "Edm.Int32",
	"integer":        "Edm.Int32",
	"int64":          "Edm.Int64",
	"long":           "Edm.Int64",
	"double":         "Edm.Double",
	"number":         "Edm.Double",
	"float":          "Edm.Single",
	"single":         "Edm.Single",
	"decimal":        "Edm.Decimal",
	"datetime":       "Edm.DateTimeOffset",
	"datetimeoffset": "Edm.DateTimeOffset",
	"timestamp":      "Edm.DateTimeOffset",
	"date":           "Edm.Date",
	"timeofday":      "Edm.TimeOfDay",
	"time":           "Edm.TimeOfDay",
	"duration":       "Edm.Duration",
	"timespan":       "Edm.Duration",
	"guid":           "Edm.Guid",
	"uuid":           "Edm.Guid",
	"stream":         "Edm.Stream",
	"binary":         "Edm.Binary",
	"base64":         "Edm.Binary",
	"object":         "Edm.Untyped",
	"json":           "Edm.Untyped",
}

// ResourceTypeName maps a documentation type name onto its EDM type name.
// Primitive aliases become Edm.* names, arrays (T[] or Collection(T)) become
// Collection(T) and qualified resource names pass through unchanged.
func ResourceTypeName(docType string) string {
	docType = strings.TrimSpace(docType)
	if docType == "" {
		return ""
	}
	if inner, ok := ElementType(docType); ok {
		return CollectionOf(ResourceTypeName(inner))
	}
	if strings.HasSuffix(docType, "[]") {
		return CollectionOf(ResourceTypeName(strings.TrimSuffix(docType, "[]")))
	}
	if IsPrimitive(docType) {
		return docType
	}
	if mapped, ok := primitiveTypeNames[strings.ToLower(docType)]; ok {
		return mapped
	}
	return docType
}
