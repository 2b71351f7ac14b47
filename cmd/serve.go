package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/folio/internal/clock"
	"github.com/Zachkp/folio/internal/kv"
	"github.com/Zachkp/folio/internal/log"
	"github.com/Zachkp/folio/internal/server"
)

// sweepEvery is how often idle visitor sessions are dropped.
const sweepEvery = time.Minute

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port    string
		noTrack bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the portfolio web server",
		Long: `Starts the portfolio site. Preferences and uploaded images are kept in the
sqlite database from the config (storage.path); page views are recorded there
too unless --no-tracking is set.`,
		Example: `  # Start on the configured port (8080 by default)
  folio serve

  # Start on a custom port with a config file
  folio serve --config folio.yaml --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			logger := log.Init(log.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
			})
			defer log.Close()
			gin.SetMode(cfg.Server.Mode)

			store, err := kv.OpenSQLite(cfg.Storage.Path, cfg.Storage.QuotaBytes)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := server.Options{
				Config: cfg,
				Store:  store,
				Clock:  clock.Real(),
				Logger: logger,
			}
			if !noTrack {
				opts.DB = store.DB()
			}
			srv, err := server.New(ctx, opts)
			if err != nil {
				return err
			}
			defer srv.Close()

			g, gctx := errgroup.WithContext(ctx)

			addr := ":" + cfg.Server.Port
			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				// Event streams end with the request context, so they must not
				// outlive shutdown.
				BaseContext: func(net.Listener) context.Context { return gctx },
			}
			g.Go(func() error {
				slog.Info("Portfolio available", "addr", addr, "url", "http://localhost"+addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				return srv.Maintain(gctx, sweepEvery)
			})
			g.Go(func() error {
				<-gctx.Done()
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	cmd.Flags().BoolVar(&noTrack, "no-tracking", false, "Do not record page views")

	return cmd
}
