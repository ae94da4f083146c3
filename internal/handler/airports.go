package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler/gen"
	"github.com/pkordes/trip-planner/internal/reference"
)

// ListAirports handles GET /airports.
// Supports ?field= (default name), ?page= and ?limit= (defaults: page=1, limit=10, max=100).
func (s *Server) ListAirports(ctx context.Context, req gen.ListAirportsRequestObject) (gen.ListAirportsResponseObject, error) {
	field := reference.FieldName
	if req.Params.Field != nil {
		field = string(*req.Params.Field)
	}
	params := domain.NewPaginationParams(req.Params.Page, req.Params.Limit)

	matches, err := s.airports.Lookup(reference.Airports, field, req.Params.Q)
	if err != nil {
		if errors.Is(err, reference.ErrUnknownField) {
			return gen.ListAirports400JSONResponse(requestBody(kindBadRequest, err.Error())), nil
		}
		return nil, fmt.Errorf("handler.ListAirports: %w", err)
	}

	start, end := params.Window(len(matches))
	data := make([]gen.AirportMatch, 0, end-start)
	for _, m := range matches[start:end] {
		var a reference.Airport
		if err := m.Record.Decode(&a); err != nil {
			return nil, fmt.Errorf("handler.ListAirports: %w", err)
		}
		data = append(data, gen.AirportMatch{
			Name:    a.Name,
			City:    a.City,
			Country: a.Country,
			Iata:    a.IATA,
			Icao:    a.ICAO,
			Score:   m.Score,
		})
	}
	return gen.ListAirports200JSONResponse{
		Data: data,
		Pagination: gen.Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: len(matches),
		},
	}, nil
}
