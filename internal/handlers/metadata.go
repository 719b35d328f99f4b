// Package handlers serves a synthesized model over HTTP.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/nlstn/go-csdlgen/internal/csdl"
	"github.com/nlstn/go-csdlgen/internal/edm"
	"github.com/nlstn/go-csdlgen/internal/observability"
)

const (
	metadataPath = "/$metadata"
	rootPath     = "/"
)

// MetadataHandler serves $metadata and the service document for a model
type MetadataHandler struct {
	mu      sync.RWMutex
	model   *edm.Model
	runID   string
	options csdl.Options
	cached  []byte
	logger  *slog.Logger
}

// NewMetadataHandler creates a handler for model
func NewMetadataHandler(model *edm.Model, runID string) *MetadataHandler {
	return &MetadataHandler{
		model:   model,
		runID:   runID,
		options: csdl.DefaultOptions(),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger. Nil restores slog.Default().
func (h *MetadataHandler) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h.logger = logger
}

// SetOptions changes the CSDL formatting and drops the cached document
func (h *MetadataHandler) SetOptions(opts csdl.Options) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.options = opts
	h.cached = nil
}

// SetModel replaces the served model
func (h *MetadataHandler) SetModel(model *edm.Model, runID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.model = model
	h.runID = runID
	h.cached = nil
}

// RunID returns the id of the run that produced the served model
func (h *MetadataHandler) RunID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.runID
}

func (h *MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = requestWithRunID(r, h.RunID())
	switch r.URL.Path {
	case metadataPath:
		h.HandleMetadata(w, r)
	case rootPath, "":
		h.HandleServiceDocument(w, r)
	default:
		WriteError(w, r, http.StatusNotFound, ErrMsgNotFound,
			fmt.Sprintf("Resource %s not found", r.URL.Path))
	}
}

// HandleMetadata handles GET, HEAD and OPTIONS requests for $metadata
func (h *MetadataHandler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGetMetadata(w, r)
	case http.MethodOptions:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		w.WriteHeader(http.StatusOK)
	default:
		WriteError(w, r, http.StatusMethodNotAllowed, ErrMsgMethodNotAllowed,
			fmt.Sprintf("Method %s is not supported for $metadata", r.Method))
	}
}

func (h *MetadataHandler) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	body, err := h.document(r)
	if err != nil {
		runID, _ := RunIDFromContext(r.Context())
		h.logger.Error("Failed to render metadata", "runID", runID, "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrMsgInternalError, "failed to render metadata")
		return
	}
	if body == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ErrMsgModelUnavailable, "no model has been generated")
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("OData-Version", "4.0")
	if runID, ok := RunIDFromContext(r.Context()); ok {
		w.Header().Set("ETag", `W/"`+runID+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("Failed to write metadata response", "error", err)
	}
}

// document renders the model once per model change
func (h *MetadataHandler) document(r *http.Request) ([]byte, error) {
	h.mu.RLock()
	cached, model := h.cached, h.model
	h.mu.RUnlock()
	if cached != nil || model == nil {
		return cached, nil
	}

	metric := observability.StartServerTimingWithDesc(r.Context(), "render", "Render CSDL")
	defer metric.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cached != nil {
		return h.cached, nil
	}
	body, err := csdl.Marshal(h.model, h.options)
	if err != nil {
		return nil, err
	}
	h.cached = body
	return body, nil
}

type serviceDocument struct {
	Context string         `json:"@odata.context"`
	Value   []serviceEntry `json:"value"`
}

type serviceEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// HandleServiceDocument handles GET and HEAD requests for the service root
func (h *MetadataHandler) HandleServiceDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrMsgMethodNotAllowed,
			fmt.Sprintf("Method %s is not supported for the service document", r.Method))
		return
	}

	metric := observability.StartServerTiming(r.Context(), "service-document")
	doc := serviceDocument{Context: "$metadata", Value: []serviceEntry{}}
	h.mu.RLock()
	if h.model != nil {
		if c := h.model.Container(); c != nil {
			for _, es := range c.EntitySets {
				doc.Value = append(doc.Value, serviceEntry{Name: es.Name, Kind: "EntitySet", URL: es.Name})
			}
			for _, s := range c.Singletons {
				doc.Value = append(doc.Value, serviceEntry{Name: s.Name, Kind: "Singleton", URL: s.Name})
			}
		}
	}
	h.mu.RUnlock()
	metric.Stop()

	w.Header().Set("Content-Type", "application/json;odata.metadata=minimal")
	w.Header().Set("OData-Version", "4.0")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		h.logger.Debug("Failed to write service document", "error", err)
	}
}

// NewServer wraps handler with the Server-Timing middleware
func NewServer(handler http.Handler) http.Handler {
	return observability.ServerTimingMiddleware(handler)
}
