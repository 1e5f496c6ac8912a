package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/footstats/internal/api"
	"github.com/pable/footstats/internal/api/handler"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the action vocabulary over HTTP",
	Long: `Start an HTTP API over the dataset.

  GET  /health
  GET  /api/v1/actions
  POST /api/v1/actions/{name}      JSON body = parameters
  GET  /api/v1/teams
  GET  /api/v1/teams/{team}/players
  POST /api/v1/reload
  POST /api/v1/ask                 {"question": "..."}; needs ANTHROPIC_API_KEY`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (or $API_HOST)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (or $API_PORT)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(os.Stdout)

	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	logger.Info("Dataset loaded", "path", a.src.Path(), "rows", a.src.Table().Len())

	var asker handler.Asker
	if assistant, err := newAssistant(a, nil); err != nil {
		logger.Info("Chat endpoint disabled", "reason", err)
	} else {
		assistant.Logger = logger
		asker = assistant
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	router := api.NewRouter(a.actions, a.src, asker, cfg.Server, logger)
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting footstats API", "addr", addr, "rate_limit", cfg.Server.RateLimit.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
	return nil
}
