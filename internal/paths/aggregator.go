package paths

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/nlstn/go-csdlgen/internal/docs"
)

// MethodCollection is the union of all documented methods sharing one generic path.
type MethodCollection struct {
	Methods []docs.MethodDefinition

	GetAllowed    bool
	PostAllowed   bool
	PutAllowed    bool
	PatchAllowed  bool
	DeleteAllowed bool

	// AllMethodsIdempotent is true while every contributing method is idempotent.
	AllMethodsIdempotent bool

	RequestBodyParameters []docs.ParameterDefinition
	QueryParameters       []docs.ParameterDefinition

	// ResponseType is the first response resource type documented for the path.
	ResponseType string
}

// NewMethodCollection returns an empty collection.
func NewMethodCollection() *MethodCollection {
	return &MethodCollection{AllMethodsIdempotent: true}
}

// Add folds a method into the collection.
func (mc *MethodCollection) Add(m docs.MethodDefinition) {
	mc.Methods = append(mc.Methods, m)

	switch m.Verb() {
	case http.MethodGet:
		mc.GetAllowed = true
	case http.MethodPost:
		mc.PostAllowed = true
	case http.MethodPut:
		mc.PutAllowed = true
	case http.MethodPatch:
		mc.PatchAllowed = true
	case http.MethodDelete:
		mc.DeleteAllowed = true
	}

	mc.AllMethodsIdempotent = mc.AllMethodsIdempotent && m.IsIdempotent()
	mc.RequestBodyParameters = unionParameters(mc.RequestBodyParameters, m.RequestBodyParameters)
	mc.QueryParameters = unionParameters(mc.QueryParameters, m.QueryParameters)

	if mc.ResponseType == "" && m.ExpectedResponseType != "" {
		mc.ResponseType = m.ExpectedResponseType
	}
}

// UpdateAllowed reports whether PUT or PATCH was observed.
func (mc *MethodCollection) UpdateAllowed() bool {
	return mc.PutAllowed || mc.PatchAllowed
}

// AllowedVerbs lists the observed verbs in a fixed order.
func (mc *MethodCollection) AllowedVerbs() []string {
	var verbs []string
	if mc.GetAllowed {
		verbs = append(verbs, http.MethodGet)
	}
	if mc.PostAllowed {
		verbs = append(verbs, http.MethodPost)
	}
	if mc.PutAllowed {
		verbs = append(verbs, http.MethodPut)
	}
	if mc.PatchAllowed {
		verbs = append(verbs, http.MethodPatch)
	}
	if mc.DeleteAllowed {
		verbs = append(verbs, http.MethodDelete)
	}
	return verbs
}

func unionParameters(existing, incoming []docs.ParameterDefinition) []docs.ParameterDefinition {
	for _, p := range incoming {
		if slices.ContainsFunc(existing, func(e docs.ParameterDefinition) bool { return e.Name == p.Name }) {
			continue
		}
		existing = append(existing, p)
	}
	return existing
}

// Index maps generic paths to their method collections. It is built once per
// synthesis run and not modified afterwards.
type Index struct {
	order       []string
	collections map[string]*MethodCollection
}

// Aggregate groups methods by generic path. Methods expected to fail and
// methods whose path lies outside the API root are skipped.
func Aggregate(methods []docs.MethodDefinition, baseURL string, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	idx := &Index{collections: make(map[string]*MethodCollection)}

	for _, m := range methods {
		if m.ExpectError {
			logger.Debug("Skipping method expected to error", "method", m.Identifier)
			continue
		}
		path, ok := GenericPath(m.RequestPath, baseURL)
		if !ok {
			logger.Debug("Skipping absolute request path", "method", m.Identifier, "path", m.RequestPath)
			continue
		}

		logger.Debug("Converted request path into generic form",
			"method", m.Identifier,
			"requestPath", m.RequestPath,
			"genericPath", path)

		mc, exists := idx.collections[path]
		if !exists {
			mc = NewMethodCollection()
			idx.collections[path] = mc
			idx.order = append(idx.order, path)
		}
		mc.Add(m)
	}
	return idx
}

// Len returns the number of unique generic paths.
func (idx *Index) Len() int {
	return len(idx.order)
}

// Paths returns the generic paths in discovery order.
func (idx *Index) Paths() []string {
	return slices.Clone(idx.order)
}

// SortedPaths returns the generic paths in lexicographic order.
func (idx *Index) SortedPaths() []string {
	sorted := slices.Clone(idx.order)
	slices.Sort(sorted)
	return sorted
}

// Get returns the method collection for a generic path.
func (idx *Index) Get(path string) (*MethodCollection, bool) {
	mc, ok := idx.collections[path]
	return mc, ok
}

// Fingerprint hashes the aggregated content. Equal inputs produce equal fingerprints.
func (idx *Index) Fingerprint() uint64 {
	d := xxhash.New()
	for _, path := range idx.order {
		mc := idx.collections[path]
		_, _ = d.WriteString(path)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strings.Join(mc.AllowedVerbs(), ","))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.FormatBool(mc.AllMethodsIdempotent))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(mc.ResponseType)
		for _, p := range mc.RequestBodyParameters {
			_, _ = d.WriteString("\x00b:" + p.Name + ":" + p.Type)
		}
		for _, p := range mc.QueryParameters {
			_, _ = d.WriteString("\x00q:" + p.Name + ":" + p.Type)
		}
		_, _ = d.WriteString("\x01")
	}
	return d.Sum64()
}
