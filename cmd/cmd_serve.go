package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/manzanit0/tourplanner/pkg/api"
	"github.com/manzanit0/tourplanner/pkg/db"
	"github.com/manzanit0/tourplanner/pkg/mapview"
	"github.com/manzanit0/tourplanner/pkg/search"
)

var serveOptions struct {
	port    string
	migrate bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map widget and the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if serveOptions.port != "" {
			cfg.Port = serveOptions.port
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveOptions.migrate && cfg.DatabaseURL != "" {
			if err := migrate(ctx); err != nil {
				return err
			}
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		maps := mapview.NewRegistry()
		go func() {
			reaper := mapview.NewReaper(maps, time.Minute, cfg.MapIdleTimeout)
			if err := reaper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("map session reaper stopped", "error", err.Error())
			}
		}()

		r := api.NewRouter(api.Config{CORSOrigins: cfg.CORSOrigins, Debug: cfg.Debug}, api.Deps{
			Maps:     maps,
			Search:   search.NewHandler(a.geocoder),
			Geocoder: a.geocoder,
			Tours:    a.tours,
			Logs:     a.logs,
			Files:    a.files,
		})

		srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: r, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			slog.Info(fmt.Sprintf("serving HTTP on :%s", cfg.Port), "version", Version)

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server shutdown abruptly", "error", err.Error())
			} else {
				slog.Info("server shutdown gracefully")
			}

			stop()
		}()

		// Listen for OS interrupt
		<-ctx.Done()
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err.Error())
		}

		slog.Info("server exited")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return migrate(cmd.Context())
	},
}

func migrate(ctx context.Context) error {
	conn, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	slog.Info("database migrated")
	return nil
}

func init() {
	serveCmd.Flags().StringVarP(&serveOptions.port, "port", "p", "", "port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveOptions.migrate, "migrate", false, "apply migrations before serving")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}
