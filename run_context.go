package csdlgen

import (
	"context"

	"github.com/nlstn/go-csdlgen/internal/handlers"
)

// RunIDFromContext returns the id of the run a context belongs to.
// Generate stores it in the context passed to its phases, and the metadata
// server stores the id of the run that produced the served model in every
// request context.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return handlers.RunIDFromContext(ctx)
}
