// Package app builds the long-lived dependencies shared by the API server
// and the tripctl command: reference tables, remote clients and the planner.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/provider/amadeus"
	"github.com/pkordes/trip-planner/internal/provider/gemini"
	"github.com/pkordes/trip-planner/internal/provider/weather"
	"github.com/pkordes/trip-planner/internal/reference"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
	"github.com/pkordes/trip-planner/migrations"
)

// OpenPool connects to Postgres and verifies the connection.
func OpenPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("app.OpenPool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app.OpenPool: ping: %w", err)
	}
	return pool, nil
}

// LoadCatalog reads both reference tables from the configured source and
// binds them to a resolver. The tables are immutable once loaded.
func LoadCatalog(ctx context.Context, cfg config.Reference, logger *slog.Logger) (*reference.Catalog, error) {
	schema, err := reference.DefaultSchema()
	if err != nil {
		return nil, fmt.Errorf("app.LoadCatalog: %w", err)
	}

	var src reference.Source
	switch cfg.Source {
	case config.SourcePostgres:
		pool, err := OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("app.LoadCatalog: %w", err)
		}
		// Rows are copied into memory by Load, so the pool is only needed here.
		defer pool.Close()
		src = repo.NewReferenceRepo(pool, schema)
	default:
		src = reference.NewCSVSource(cfg.AirportsPath, cfg.AirlinesPath)
	}

	tables, err := reference.Load(ctx, src, schema)
	if err != nil {
		if repo.IsEmpty(err) {
			return nil, fmt.Errorf("app.LoadCatalog: reference tables are empty, run tripctl import-reference: %w", err)
		}
		return nil, fmt.Errorf("app.LoadCatalog: %w", err)
	}
	logger.Info("reference tables loaded",
		"source", cfg.Source,
		"airports", tables.Airports.Len(),
		"airlines", tables.Airlines.Len(),
	)
	return reference.NewCatalog(tables, reference.NewResolver(cfg.MatchThreshold)), nil
}

// Clients are the remote collaborators of the planner.
type Clients struct {
	Suggester *gemini.Client
	Flights   *amadeus.Client
	Weather   *weather.Client
}

// NewClients builds every remote client. All HTTP calls share one timeout.
func NewClients(ctx context.Context, cfg config.Config) (Clients, error) {
	hc := &http.Client{Timeout: cfg.ProviderTimeout}

	suggester, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return Clients{}, fmt.Errorf("app.NewClients: %w", err)
	}
	return Clients{
		Suggester: suggester,
		Flights: amadeus.New(amadeus.Config{
			BaseURL:       cfg.Amadeus.BaseURL,
			ClientID:      cfg.Amadeus.ClientID,
			ClientSecret:  cfg.Amadeus.ClientSecret,
			RatePerSecond: cfg.Amadeus.RateLimit,
			HTTPClient:    hc,
		}),
		Weather: NewWeather(cfg.Weather, hc),
	}, nil
}

// NewWeather builds the geocoding and forecast client.
func NewWeather(cfg config.Weather, hc *http.Client) *weather.Client {
	return weather.New(weather.Config{
		GeocodeURL:  cfg.OpenCageURL,
		GeocodeKey:  cfg.OpenCageKey,
		ForecastURL: cfg.MeteoblueURL,
		ForecastKey: cfg.MeteoblueKey,
		HTTPClient:  hc,
	})
}

// NewPlanner wires the planner from its collaborators.
func NewPlanner(cfg config.Config, catalog *reference.Catalog, clients Clients, hooks service.Hooks, logger *slog.Logger) *service.Planner {
	return service.NewPlanner(service.Deps{
		Catalog:   catalog,
		Suggester: clients.Suggester,
		Flights:   clients.Flights,
		Weather:   clients.Weather,
		Workers:   cfg.CandidateWorkers,
		Hooks:     hooks,
		Logger:    logger,
	})
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("app.Migrate: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("app.Migrate: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path)
	}
	return nil
}

// ImportReference replaces both reference tables with the CSV datasets.
// Migrations are applied first. Returns the row count per table.
func ImportReference(ctx context.Context, pool *pgxpool.Pool, airportsPath, airlinesPath string, logger *slog.Logger) (map[string]int64, error) {
	if err := Migrate(ctx, pool, logger); err != nil {
		return nil, err
	}
	schema, err := reference.DefaultSchema()
	if err != nil {
		return nil, fmt.Errorf("app.ImportReference: %w", err)
	}
	csv := reference.NewCSVSource(airportsPath, airlinesPath)
	store := repo.NewReferenceRepo(pool, schema)

	counts := make(map[string]int64, 2)
	for _, table := range []string{reference.Airports, reference.Airlines} {
		rows, err := csv.Rows(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("app.ImportReference: %w", err)
		}
		n, err := store.Replace(ctx, table, rows)
		if err != nil {
			return nil, fmt.Errorf("app.ImportReference: %w", err)
		}
		logger.Info("reference table imported", "table", table, "rows", n)
		counts[table] = n
	}
	return counts, nil
}
