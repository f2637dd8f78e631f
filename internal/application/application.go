// Package application turns a loaded configuration into a running service:
// it opens the configured store, applies migrations and builds core.Service.
// Both the HTTP server and the campctl CLI start through Open.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/colo/internal/config"
	"github.com/JonMunkholm/colo/internal/core"
	db "github.com/JonMunkholm/colo/internal/database"
	"github.com/JonMunkholm/colo/internal/store/memory"
	"github.com/JonMunkholm/colo/internal/store/postgres"
)

// App holds the service and the resources it was built from.
type App struct {
	Service *core.Service

	// Pool is nil for the memory backend.
	Pool *pgxpool.Pool
}

// Options tweak Open for callers that differ from the server.
type Options struct {
	// Migrate applies the schema regardless of DB_AUTO_MIGRATE.
	Migrate bool
}

// Open builds the store selected by cfg.Database.Backend and a service on top of it.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	svcCfg, err := ServiceConfig(cfg)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Database.Backend) {
	case config.BackendMemory:
		slog.Warn("using in-memory store, data is lost on exit")
		return &App{Service: core.NewService(memory.New(), svcCfg)}, nil

	case config.BackendPostgres:
		pool, err := OpenPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if opts.Migrate || cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			slog.Info("schema applied")
		}
		return &App{Service: core.NewService(postgres.New(pool), svcCfg), Pool: pool}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Database.Backend)
	}
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// OpenPool connects to PostgreSQL with the pool limits from cfg and pings it.
func OpenPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("connected to database", "name", databaseName(cfg.URL))
	return pool, nil
}

// ServiceConfig maps the import settings onto core.ServiceConfig,
// loading the custom column mappings file when one is configured.
func ServiceConfig(cfg *config.Config) (core.ServiceConfig, error) {
	svcCfg := core.ServiceConfig{
		ImportTimeout:       cfg.Import.Timeout,
		MaxConcurrentImport: cfg.Import.MaxConcurrent,
		MaxImportWait:       cfg.Import.MaxWaitTime,
	}
	if path := cfg.Import.ColumnMappingsFile; path != "" {
		mappings, err := core.LoadColumnMappings(path)
		if err != nil {
			return core.ServiceConfig{}, fmt.Errorf("column mappings: %w", err)
		}
		svcCfg.ColumnMappings = mappings
		slog.Info("custom column mappings loaded", "file", path)
	}
	return svcCfg, nil
}

// databaseName extracts the database name from a connection URL for logging.
func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
