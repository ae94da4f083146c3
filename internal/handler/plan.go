package handler

import (
	"context"
	"log/slog"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler/gen"
	"github.com/pkordes/trip-planner/internal/service"
)

// CreatePlan handles POST /plans.
// Validation failures map to 422, unsatisfiable requests to 404 and upstream
// failures to 502. Every response body lists all records of the failure.
func (s *Server) CreatePlan(ctx context.Context, req gen.CreatePlanRequestObject) (gen.CreatePlanResponseObject, error) {
	if req.Body == nil {
		return gen.CreatePlan422JSONResponse(requestBody(kindBadRequest, "request body is required")), nil
	}

	trips, err := s.planner.Plan(ctx, *req.Body)
	if err == nil {
		if trips == nil {
			trips = []domain.TripResult{}
		}
		return gen.CreatePlan200JSONResponse{Trips: trips}, nil
	}

	f, ok := domain.AsFailure(err)
	if !ok {
		return nil, err
	}
	switch service.Outcome(f) {
	case service.OutcomeValidation:
		return gen.CreatePlan422JSONResponse(failureBody(f)), nil
	case service.OutcomeDomain:
		return gen.CreatePlan404JSONResponse(failureBody(f)), nil
	}
	slog.WarnContext(ctx, "upstream failure", "error", err)
	return gen.CreatePlan502JSONResponse(redactCauses(failureBody(f))), nil
}

// redactCauses replaces upstream error text, which can carry request URLs
// and credentials, with the user-facing message.
func redactCauses(body gen.ErrorResponse) gen.ErrorResponse {
	for i := range body.Errors {
		body.Errors[i].Cause = body.Errors[i].Message
	}
	return body
}
