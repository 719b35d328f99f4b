package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	csdlgen "github.com/nlstn/go-csdlgen"
	"github.com/nlstn/go-csdlgen/internal/config"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a CSDL document from a documentation set",
	Long: `Generate reads a JSON or YAML documentation set, synthesizes the model and
writes it as a CSDL XML document.

Paths that cannot be resolved against the model are reported and skipped.
The command fails only when no schema can own the entity container or the
resource definitions contradict each other.

Examples:
  # Generate metadata.csdl from the documentation set
  csdlgen generate --input graph-docs.yaml --base-url https://graph.microsoft.com/v1.0

  # Limit to one namespace and print to stdout
  csdlgen generate -i graph-docs.yaml --namespace microsoft.graph -o -

  # Record the run in a SQLite database
  csdlgen generate -i graph-docs.yaml --store runs.db`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

type generateFlagValues struct {
	input             string
	output            string
	baseURL           string
	namespaces        []string
	excludeNamespaces []string
	store             string
	flatten           string
	conflictPolicy    string
	descriptions      bool
}

var generateFlags generateFlagValues

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFlags.input, "input", "i", "",
		"Documentation set to read (.json, .yaml or .yml)")
	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "",
		"File to write the CSDL document to, - for stdout\n"+
			"(default: output_filename setting or "+config.DefaultOutputFilename+")")
	generateCmd.Flags().StringVar(&generateFlags.baseURL, "base-url", "",
		"Base URL stripped from documented request paths")
	generateCmd.Flags().StringSliceVar(&generateFlags.namespaces, "namespace", nil,
		"Only materialize these namespaces (repeatable)")
	generateCmd.Flags().StringSliceVar(&generateFlags.excludeNamespaces, "exclude-namespace", nil,
		"Remove these namespaces from the output (repeatable)")
	generateCmd.Flags().StringVar(&generateFlags.store, "store", "",
		"Record the run in this SQLite file or postgres:// database")
	generateCmd.Flags().StringVar(&generateFlags.flatten, "flatten-actions-to", "",
		"Place all synthesized operations in this namespace")
	generateCmd.Flags().StringVar(&generateFlags.conflictPolicy, "conflict-policy", "",
		"How duplicate resource definitions are handled: ignore|override")
	generateCmd.Flags().BoolVar(&generateFlags.descriptions, "descriptions", false,
		"Annotate properties with their documented descriptions")

	_ = generateCmd.MarkFlagRequired("input")
}

func resetGenerateFlags() {
	generateFlags = generateFlagValues{}
}

// applyGenerateFlags overrides settings with the flags that were set.
func applyGenerateFlags(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		s.OutputFilename = generateFlags.output
	}
	if flags.Changed("base-url") {
		s.BaseURL = generateFlags.baseURL
	}
	if flags.Changed("namespace") {
		s.Namespaces = generateFlags.namespaces
	}
	if flags.Changed("exclude-namespace") {
		s.ExcludedNamespaces = generateFlags.excludeNamespaces
	}
	if flags.Changed("store") {
		s.Store = generateFlags.store
	}
	if flags.Changed("flatten-actions-to") {
		s.FlattenActionsToNamespace = generateFlags.flatten
	}
	if flags.Changed("conflict-policy") {
		s.ConflictPolicy = generateFlags.conflictPolicy
	}
	if flags.Changed("descriptions") {
		s.IncludeDescriptions = generateFlags.descriptions
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, settings)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := generate(ctx, cmd, generateFlags.input, settings)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), settings.OutputFilename, result, csdlOptions(settings)); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "Run %s: %d paths processed, %d failed, %d skipped\n",
		result.RunID, result.Report.Processed, result.Report.Failed, result.Report.Skipped)
	for _, f := range result.Report.Failures() {
		fmt.Fprintf(errOut, "  %s: %s\n", f.Path, f.Error)
	}
	return nil
}

// generate loads the documentation set and runs the generator, recording the
// run when a store is configured.
func generate(ctx context.Context, cmd *cobra.Command, input string, settings *config.Settings) (*csdlgen.Result, error) {
	logger := newLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	set, err := csdlgen.LoadDocSet(input)
	if err != nil {
		return nil, err
	}

	gen, err := csdlgen.NewGenerator(generatorConfig(settings))
	if err != nil {
		return nil, err
	}
	gen.SetLogger(logger)
	gen.SetCSDLOptions(csdlOptions(settings))

	if settings.Store != "" {
		st, err := csdlgen.OpenStore(settings.Store, logger)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		gen.SetStore(st)
	}

	return gen.Generate(ctx, set)
}

func writeOutput(stdout io.Writer, filename string, result *csdlgen.Result, opts csdlgen.CSDLOptions) error {
	if filename == "-" {
		return csdlgen.WriteCSDL(stdout, result.Model, opts)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := csdlgen.WriteCSDL(f, result.Model, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return f.Close()
}
