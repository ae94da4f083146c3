// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server, which implements gen.StrictServerInterface.
// Methods are split into files per resource (health.go, plan.go, airports.go)
// but share the same Server struct.
package handler

import (
	"context"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/reference"
)

// Planner runs the trip-planning pipeline for one request.
type Planner interface {
	Plan(ctx context.Context, raw domain.RawTripRequest) ([]domain.TripResult, error)
}

// AirportLookup ranks reference rows against a free-text query.
type AirportLookup interface {
	Lookup(table, field, query string) ([]reference.Match, error)
}

// Server implements gen.StrictServerInterface for all API endpoints.
// Wire it in main.go via NewHTTPHandler.
type Server struct {
	planner  Planner
	airports AirportLookup
}

// NewServer constructs the Server with all its dependencies.
func NewServer(planner Planner, airports AirportLookup) *Server {
	return &Server{planner: planner, airports: airports}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil)
}
