// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/trip-planner/internal/app"
	"github.com/pkordes/trip-planner/internal/config"
	"github.com/pkordes/trip-planner/internal/handler"
	"github.com/pkordes/trip-planner/internal/metrics"
	"github.com/pkordes/trip-planner/internal/middleware"
	"github.com/pkordes/trip-planner/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before the configured one exists.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Reference data ---------------------------------------------------
	// Loaded once; the tables are read-only for the life of the process.
	catalog, err := app.LoadCatalog(ctx, cfg.Reference, logger)
	if err != nil {
		slog.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}

	// --- Remote services --------------------------------------------------
	clients, err := app.NewClients(ctx, cfg)
	if err != nil {
		slog.Error("failed to build service clients", "error", err)
		os.Exit(1)
	}

	// --- Metrics ----------------------------------------------------------
	reg := metrics.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	planner := app.NewPlanner(cfg, catalog, clients, recorder.Hooks(), logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit. Recoverer sits inside the logger so a panic is
	// still logged as a 500.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})
	r.Handle("/metrics", metrics.Handler(reg))

	server := handler.NewServer(planner, catalog)
	r.Mount("/", handler.NewHTTPHandler(server, logger))

	// --- HTTP Server ------------------------------------------------------
	// A plan fans out to three remote services per candidate, so the write
	// timeout leaves room for several provider round trips.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 4 * cfg.ProviderTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "workers", cfg.CandidateWorkers)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
