package csdlgen

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nlstn/go-csdlgen/internal/handlers"
)

// NewMetadataServer returns an http.Handler serving the model of result:
// the CSDL document at /$metadata and the service document at /.
// Responses carry a Server-Timing header.
func NewMetadataServer(result *Result, logger *slog.Logger) (http.Handler, error) {
	if result == nil || result.Model == nil {
		return nil, errors.New("a generated model is required")
	}
	h := handlers.NewMetadataHandler(result.Model, result.RunID)
	h.SetLogger(logger)
	return handlers.NewServer(h), nil
}
