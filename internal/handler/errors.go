package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/handler/gen"
)

// Kinds for failures rejected before reaching the planner.
const (
	kindBadRequest      = "BadRequestError"
	kindRequestTooLarge = "RequestTooLargeError"
	kindInternal        = "InternalError"
)

// failureBody renders every record of f, in order.
func failureBody(f domain.Failure) gen.ErrorResponse {
	recs := domain.Serialize(f)
	out := gen.ErrorResponse{Errors: make([]gen.ErrorDetail, len(recs))}
	for i, r := range recs {
		out.Errors[i] = gen.ErrorDetail{Kind: r.Kind, Message: r.Message, Cause: r.Cause}
	}
	return out
}

// requestBody returns an ErrorResponse for a request rejected by the
// transport layer (bad JSON, bad query parameter, oversize body).
func requestBody(kind, message string) gen.ErrorResponse {
	return gen.ErrorResponse{Errors: []gen.ErrorDetail{{Kind: kind, Message: message, Cause: message}}}
}

func writeError(w http.ResponseWriter, status int, body gen.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestError handles bodies the strict handler could not decode and query
// parameters the router could not bind.
func requestError(w http.ResponseWriter, _ *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, requestBody(kindRequestTooLarge, "request body too large"))
		return
	}
	writeError(w, http.StatusBadRequest, requestBody(kindBadRequest, err.Error()))
}

// responseError handles errors a handler returned instead of a typed response.
// The error text is logged, never sent.
func responseError(logger *slog.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, requestBody(kindInternal, domain.UnexpectedMessage))
	}
}

// NewHTTPHandler wires s into the generated chi router with JSON error
// bodies for transport-level failures.
func NewHTTPHandler(s *Server, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	strict := gen.NewStrictHandlerWithOptions(s, nil, gen.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  requestError,
		ResponseErrorHandlerFunc: responseError(logger),
	})
	return gen.HandlerWithOptions(strict, gen.ChiServerOptions{ErrorHandlerFunc: requestError})
}
