// Package cli implements the csdlgen command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	csdlgen "github.com/nlstn/go-csdlgen"
	"github.com/nlstn/go-csdlgen/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "csdlgen",
	Short: "Synthesize OData CSDL metadata from REST API documentation",
	Long: `csdlgen reads a documentation set of resource definitions and documented
request examples and synthesizes an OData v4 CSDL document from it.

Resources declaring a key property become entity types, the others complex
types. Root level request paths declare entity sets and singletons, deeper
paths annotate navigation properties with capability restrictions, and
qualified path segments become bound actions and functions.

Settings are read from csdlgen.yaml (or --config), then from CSDLGEN_*
environment variables and a .env file, then from command line flags.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the settings file (default: ./"+config.ConfigFileName+")")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	f := cmd.Flag("verbose")
	return f != nil && f.Value.String() == "true"
}

// newLogger writes text logs to w, at debug level when verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSettings resolves settings from the config file and the environment.
// A missing default config file is not an error; a missing explicit one is.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	path := ""
	if f := cmd.Flag("config"); f != nil {
		path = f.Value.String()
	}
	var (
		settings *config.Settings
		err      error
	)
	if path != "" {
		settings, err = config.LoadFile(path)
	} else {
		settings, err = config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			settings, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}
	return settings, nil
}

// generatorConfig maps settings onto the generator configuration.
func generatorConfig(s *config.Settings) csdlgen.GeneratorConfig {
	return csdlgen.GeneratorConfig{
		BaseURL:                   s.BaseURL,
		Namespaces:                s.Namespaces,
		ExcludedNamespaces:        s.ExcludedNamespaces,
		IncludeDescriptions:       s.IncludeDescriptions,
		FlattenActionsToNamespace: s.FlattenActionsToNamespace,
		ConflictPolicy:            csdlgen.ConflictPolicy(s.ConflictPolicy),
		StaticAnnotations:         s.StaticAnnotations,
	}
}

// csdlOptions maps the writer settings onto CSDL options.
func csdlOptions(s *config.Settings) csdlgen.CSDLOptions {
	opts := csdlgen.DefaultCSDLOptions()
	if s.IncludeXMLDeclaration != nil {
		opts.IncludeXMLDeclaration = *s.IncludeXMLDeclaration
	}
	if s.IndentXML != nil {
		opts.Indent = *s.IndentXML
	}
	return opts
}

// commandContext returns the command context, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
