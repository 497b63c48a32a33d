package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/manzanit0/tourplanner/pkg/db"
	"github.com/manzanit0/tourplanner/pkg/env"
	"github.com/manzanit0/tourplanner/pkg/files"
	"github.com/manzanit0/tourplanner/pkg/geocode"
	"github.com/manzanit0/tourplanner/pkg/routing"
	"github.com/manzanit0/tourplanner/pkg/tours"
	"github.com/manzanit0/tourplanner/pkg/whttp"
)

// app is the dependency graph shared by the commands.
type app struct {
	geocoder geocode.Client
	tours    *tours.Service
	logs     *tours.LogService
	files    *files.Service

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Error("error closing resource", "error", err.Error())
		}
	}
}

// newApp wires the clients and services. Without DATABASE_URL tours live in
// memory; without REDIS_URL the geocode cache does too.
func newApp(ctx context.Context, cfg *env.Config) (*app, error) {
	a := &app{}

	geocoder, err := newGeocoder(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.geocoder = geocoder

	repo, err := newRepository(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	router := routing.NewORSClient(whttp.NewLoggingClient(cfg.HTTPTimeout), cfg.ORSURL, cfg.ORSAPIKey)
	if cfg.ORSAPIKey == "" {
		slog.Warn("ORS_API_KEY is not set, route computation will fail")
	}

	a.tours = tours.NewService(repo, router)
	a.logs = tours.NewLogService(repo)
	a.files = files.NewService(a.tours, a.logs)

	return a, nil
}

func newGeocoder(ctx context.Context, cfg *env.Config, a *app) (geocode.Client, error) {
	nominatim := geocode.NewNominatimClient(
		whttp.NewLoggingClient(cfg.HTTPTimeout),
		cfg.NominatimURL,
		geocode.WithUserAgent(cfg.NominatimUserAgent),
	)

	var store geocode.Store = geocode.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := geocode.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect geocode cache: %w", err)
		}

		a.closers = append(a.closers, rs.Close)
		store = rs
		slog.Info("geocode cache backed by redis")
	}

	return geocode.NewCachedClient(nominatim, store, cfg.GeocodeCacheTTL), nil
}

func newRepository(ctx context.Context, cfg *env.Config, a *app) (tours.Repository, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL is not set, tours are kept in memory")
		return tours.NewMemoryRepository(), nil
	}

	conn, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, conn.Close)
	return tours.NewPostgresRepository(conn), nil
}

func openDatabase(ctx context.Context, cfg *env.Config) (*sql.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	slog.Info("connected to the database successfully")
	return conn, nil
}
