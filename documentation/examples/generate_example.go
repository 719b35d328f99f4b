//go:build example

// Package main demonstrates generating and serving CSDL metadata with csdlgen.
//
// This example shows how to:
// 1. Load a documentation set and configure the generator
// 2. Record runs in a SQLite store
// 3. Inspect the per-path report
// 4. Serve the model over HTTP with the metadata handler
//
// Note: This is a standalone example file. Run it with
//
//	go run -tags example ./documentation/examples
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	csdlgen "github.com/nlstn/go-csdlgen"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	set, err := csdlgen.LoadDocSet("testdata/graph.yaml")
	if err != nil {
		log.Fatal(err)
	}

	gen, err := csdlgen.NewGenerator(csdlgen.GeneratorConfig{
		BaseURL:            "https://graph.microsoft.com/v1.0",
		ExcludedNamespaces: []string{"microsoft.graph.internal"},
		StaticAnnotations: []csdlgen.StaticAnnotation{
			{Target: "users", Term: "Org.OData.Capabilities.V1.TopSupported", Value: "true"},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	gen.SetLogger(logger)

	store, err := csdlgen.OpenStore("runs.db", logger)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()
	gen.SetStore(store)

	result, err := gen.Generate(context.Background(), set)
	if err != nil {
		log.Fatal(err)
	}

	// Paths that did not resolve are skipped, not fatal
	for _, failure := range result.Report.Failures() {
		logger.Warn("Path skipped", "path", failure.Path, "error", failure.Error)
	}

	if err := csdlgen.WriteCSDL(os.Stdout, result.Model, csdlgen.DefaultCSDLOptions()); err != nil {
		log.Fatal(err)
	}

	handler, err := csdlgen.NewMetadataServer(result, logger)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Serving $metadata on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
