package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nlstn/go-csdlgen/internal/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated model over HTTP",
	Long: `Serve generates the model once and serves it as an OData service root:

  GET /           service document listing entity sets and singletons
  GET /$metadata  CSDL document

Responses carry a Server-Timing header.

Examples:
  csdlgen serve --input graph-docs.yaml --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

type serveFlagValues struct {
	addr  string
	input string
}

var serveFlags serveFlagValues

const shutdownTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringVarP(&serveFlags.input, "input", "i", "",
		"Documentation set to read (.json, .yaml or .yml)")

	_ = serveCmd.MarkFlagRequired("input")
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := generate(ctx, cmd, serveFlags.input, settings)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	h := handlers.NewMetadataHandler(result.Model, result.RunID)
	h.SetLogger(logger)
	h.SetOptions(csdlOptions(settings))

	srv := &http.Server{
		Addr:              serveFlags.addr,
		Handler:           handlers.NewServer(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving metadata", "addr", serveFlags.addr, "runID", result.RunID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down")
	return srv.Shutdown(shutdownCtx)
}
