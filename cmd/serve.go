package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"moviegate/api"
	"moviegate/handlers"
	"moviegate/services/sessions"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for the web frontend",
		Long: `Starts the JSON API that backs the browser frontend. Each browser session
gets its own catalog state; the frontend relays what its injected wallet
provider reported.`,
		Example: `  # Start on the configured address (default :8080)
  moviegate serve

  # Start on a custom address
  moviegate serve --addr 127.0.0.1:3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}

			fs := afero.NewOsFs()
			client, err := newMetadataClient(cfg, fs)
			if err != nil {
				return err
			}

			store := sessions.NewService(client, cfg.Server.SessionTTL)
			defer store.Close()

			limiter := api.NewPerMinuteLimiter(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst)
			defer limiter.Close()

			router := handlers.NewAPIRouter(store, handlers.RouterOptions{
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Limiter:        limiter,
				Version:        handlers.NewVersionHandler(fs, Version),
			})

			server := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.Server.Addr).Info("moviegate API listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				log.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					log.WithError(err).Error("Server shutdown failed")
					return err
				}
				log.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}
