package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mutgate-hq/mutgate/internal/api"
	"github.com/mutgate-hq/mutgate/internal/config"
	"github.com/mutgate-hq/mutgate/internal/db"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve run history over HTTP",
		Long: `Start the read-only report server backed by the history store.

Endpoints:
  GET /health
  GET /ready
  GET /api/v1/runs?limit=N
  GET /api/v1/runs/latest
  GET /api/v1/runs/{runID}
  GET /api/v1/stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.APIPort = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			store, err := db.Open(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()

			srv, err := api.NewServer(cfg, store)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			httpServer := &http.Server{
				Addr:         srv.Addr(),
				Handler:      srv.Router(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown
			done := make(chan bool)
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-quit
				log.Info().Msg("server is shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("could not gracefully shutdown the server")
				}
				close(done)
			}()

			log.Info().Int("port", cfg.APIPort).Msg("starting report server")
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}

			<-done
			log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8675, "Port to listen on")

	return cmd
}
