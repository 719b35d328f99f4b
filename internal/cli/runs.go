package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	csdlgen "github.com/nlstn/go-csdlgen"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the CSDL document recorded for a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

type runsFlagValues struct {
	store string
	limit int
}

var runsFlags runsFlagValues

// errNoStore is returned when neither --store nor the store setting is set.
var errNoStore = errors.New("no run store configured: use --store or the store setting")

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd)

	runsCmd.PersistentFlags().StringVar(&runsFlags.store, "store", "",
		"SQLite file or postgres:// database holding the runs")
	runsListCmd.Flags().IntVarP(&runsFlags.limit, "limit", "n", 20, "Maximum number of runs to list, 0 for all")
}

func openRunStore(cmd *cobra.Command) (*csdlgen.Store, error) {
	dsn := runsFlags.store
	if dsn == "" {
		settings, err := loadSettings(cmd)
		if err != nil {
			return nil, err
		}
		dsn = settings.Store
	}
	if dsn == "" {
		return nil, errNoStore
	}
	return csdlgen.OpenStore(dsn, newLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd)))
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), runsFlags.limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tPATHS\tFAILED\tSETS\tSINGLETONS\tOPERATIONS\tFINGERPRINT")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Processed+r.Failed+r.Skipped,
			r.Failed,
			r.EntitySets,
			r.Singletons,
			r.Operations,
			r.Fingerprint)
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	st, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), run.CSDL)
	return err
}
