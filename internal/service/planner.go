package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/reference"
)

// Suggester proposes destinations for a validated request.
type Suggester interface {
	Suggest(ctx context.Context, q domain.SuggestionQuery) ([]domain.CandidateTrip, error)
}

// FlightSearcher returns priced offers for one origin/destination pair.
type FlightSearcher interface {
	SearchOffers(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error)
}

// WeatherService geocodes a place and forecasts the next seven days there.
type WeatherService interface {
	Geocode(ctx context.Context, place string) (domain.Coordinates, error)
	Forecast(ctx context.Context, at domain.Coordinates) (domain.WeatherDaily, error)
}

// ErrMalformedOffer is returned when a flight offer has no segments.
var ErrMalformedOffer = errors.New("flight offer has no segments")

// Deps is everything a Planner needs. It is built once in main and treated
// as read-only afterwards.
type Deps struct {
	Catalog   Catalog
	Suggester Suggester
	Flights   FlightSearcher
	Weather   WeatherService

	// Clock supplies "today" for date checks. Defaults to time.Now.
	Clock func() time.Time
	// Workers bounds concurrent per-candidate processing. Values below 2
	// process candidates one at a time.
	Workers int
	Hooks   Hooks
	Logger  *slog.Logger
}

// Planner runs the full pipeline for one request at a time; a single
// Planner is safe for concurrent Plan calls.
type Planner struct {
	deps      Deps
	validator *Validator
	log       *slog.Logger
}

// NewPlanner constructs a Planner.
func NewPlanner(d Deps) *Planner {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Planner{deps: d, validator: NewValidator(d.Catalog, d.Clock), log: log}
}

// origin is the resolved departure airport.
type origin struct {
	name string
	code string
}

// Plan validates raw, gathers candidates and returns one result per
// candidate in suggestion order. Any failure aborts the whole plan: the
// result is either the full list or a single domain.Failure.
func (p *Planner) Plan(ctx context.Context, raw domain.RawTripRequest) ([]domain.TripResult, error) {
	r := &run{p: p, id: uuid.NewString(), started: time.Now()}
	r.log = p.log.With("plan_id", r.id)

	results, err := r.execute(ctx, raw)
	if err != nil {
		r.log.Warn("plan failed", "outcome", Outcome(err), "error", err)
	} else {
		r.log.Info("plan complete", "results", len(results), "duration_ms", time.Since(r.started).Milliseconds())
	}
	if h := p.deps.Hooks.OnPlanDone; h != nil {
		h(ctx, &PlanEvent{PlanID: r.id, Outcome: Outcome(err), Duration: time.Since(r.started), Results: len(results)})
	}
	return results, err
}

type run struct {
	p       *Planner
	id      string
	log     *slog.Logger
	started time.Time
}

func (r *run) execute(ctx context.Context, raw domain.RawTripRequest) ([]domain.TripResult, error) {
	var req domain.TripRequest
	err := r.step(ctx, StageValidating, noCandidate, func() error {
		var err error
		req, err = r.p.validator.Validate(raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	var from origin
	err = r.step(ctx, StageResolvingOrigin, noCandidate, func() error {
		var err error
		from, err = r.resolveOrigin(req.OriginAirport)
		return err
	})
	if err != nil {
		return nil, err
	}

	var candidates []domain.CandidateTrip
	err = r.step(ctx, StageFetchingCandidates, noCandidate, func() error {
		var err error
		candidates, err = r.p.deps.Suggester.Suggest(ctx, domain.SuggestionQuery{
			MaxPrice:      req.MaxPrice,
			OriginAirport: from.name,
			Descriptors:   req.Descriptors,
		})
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return domain.NewErrorRecord(domain.KindNoTripsFound, "No trips were found with the specified parameters")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	flights := make([]domain.FlightSummary, len(candidates))
	weather := make([]domain.WeatherDaily, len(candidates))
	err = r.forEachCandidate(len(candidates), func(i int) error {
		var err error
		flights[i], weather[i], err = r.processCandidate(ctx, req, from, i, candidates[i])
		return err
	})
	if err != nil {
		return nil, err
	}

	var results []domain.TripResult
	_ = r.step(ctx, StageAggregating, noCandidate, func() error {
		results = make([]domain.TripResult, len(candidates))
		for i := range candidates {
			results[i] = domain.TripResult{Candidate: candidates[i], Flight: flights[i], Weather: weather[i]}
		}
		return nil
	})
	return results, nil
}

func (r *run) resolveOrigin(text string) (origin, error) {
	matches, err := r.p.deps.Catalog.Lookup(reference.Airports, reference.FieldName, text)
	if err != nil {
		return origin{}, err
	}
	if len(matches) == 0 {
		return origin{}, errOriginNotFound()
	}
	top := matches[0].Record
	code := top.Get(reference.FieldIATA)
	if code == "" {
		return origin{}, domain.NewErrorRecord(domain.KindInvalidAirport, "The specified airport has no IATA code")
	}
	return origin{name: top.Get(reference.FieldName), code: code}, nil
}

// forEachCandidate calls fn for indexes 0..n-1. With one worker it stops at
// the first failure. With more, it still reports the lowest failing index,
// and stops scheduling candidates past a known failure.
func (r *run) forEachCandidate(n int, fn func(i int) error) error {
	workers := r.p.deps.Workers
	if workers < 2 || n < 2 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		mu       sync.Mutex
		firstBad = n
		errs     = make([]error, n)
		g        errgroup.Group
	)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		mu.Lock()
		skip := i > firstBad
		mu.Unlock()
		if skip {
			break
		}
		g.Go(func() error {
			if err := fn(i); err != nil {
				mu.Lock()
				errs[i] = err
				if i < firstBad {
					firstBad = i
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) processCandidate(ctx context.Context, req domain.TripRequest, from origin, i int, c domain.CandidateTrip) (domain.FlightSummary, domain.WeatherDaily, error) {
	var destCode string
	err := r.step(ctx, StageResolvingDestination, i, func() error {
		matches, err := r.p.deps.Catalog.Lookup(reference.Airports, reference.FieldName, c.DestinationAirport)
		if err != nil {
			return err
		}
		if len(matches) > 0 {
			destCode = matches[0].Record.Get(reference.FieldIATA)
		}
		if destCode == "" {
			msg := fmt.Sprintf("The destination airport %q could not be found", c.DestinationAirport)
			return domain.NewErrorRecord(domain.KindAirportNotFound, msg)
		}
		return nil
	})
	if err != nil {
		return domain.FlightSummary{}, domain.WeatherDaily{}, err
	}

	var summary domain.FlightSummary
	err = r.step(ctx, StageFetchingFlight, i, func() error {
		offers, err := r.p.deps.Flights.SearchOffers(ctx, flightQuery(req, from.code, destCode))
		if err != nil {
			return err
		}
		summary, err = r.summarize(offers, destCode)
		return err
	})
	if err != nil {
		return domain.FlightSummary{}, domain.WeatherDaily{}, err
	}

	var forecast domain.WeatherDaily
	err = r.step(ctx, StageFetchingWeather, i, func() error {
		at, err := r.p.deps.Weather.Geocode(ctx, c.Location.Place())
		if err != nil {
			return err
		}
		forecast, err = r.p.deps.Weather.Forecast(ctx, at)
		return err
	})
	if err != nil {
		return domain.FlightSummary{}, domain.WeatherDaily{}, err
	}
	return summary, forecast, nil
}

func flightQuery(req domain.TripRequest, originCode, destCode string) domain.FlightQuery {
	q := domain.FlightQuery{
		OriginCode:      originCode,
		DestinationCode: destCode,
		DepartureDate:   req.DepartureDate.ISO(),
		Adults:          req.Adults,
		Children:        req.Children,
		Infants:         req.Infants,
		TravelClass:     req.TravelClass,
		NonStop:         req.NonStop,
		MaxPrice:        req.MaxPrice,
	}
	if req.ReturnDate != nil {
		iso := req.ReturnDate.ISO()
		q.ReturnDate = &iso
	}
	return q
}

// summarize reduces offers to the cheapest one. Ties keep the earlier offer.
func (r *run) summarize(offers []domain.FlightOffer, destCode string) (domain.FlightSummary, error) {
	if len(offers) == 0 {
		msg := fmt.Sprintf("No flights were found to %s with the specified parameters", destCode)
		return domain.FlightSummary{}, domain.NewErrorRecord(domain.KindNoFlightsFound, msg)
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.TotalPrice < best.TotalPrice {
			best = o
		}
	}
	if len(best.Segments) == 0 {
		return domain.FlightSummary{}, ErrMalformedOffer
	}
	first, last := best.Segments[0], best.Segments[len(best.Segments)-1]
	return domain.FlightSummary{
		Cost:     best.TotalPrice,
		Currency: best.Currency,
		Airline:  r.displayName(reference.Airlines, best.CarrierCode),
		Seats:    best.Seats,
		Departure: domain.FlightEndpoint{
			Time:    first.Departure.At,
			Airport: r.displayName(reference.Airports, first.Departure.Code),
		},
		Arrival: domain.FlightEndpoint{
			Time:    last.Arrival.At,
			Airport: r.displayName(reference.Airports, last.Arrival.Code),
		},
	}, nil
}

// displayName maps an IATA code to its table's display name, falling back
// to the code.
func (r *run) displayName(table, code string) string {
	matches, err := r.p.deps.Catalog.Lookup(table, reference.FieldIATA, code)
	if err != nil || len(matches) == 0 {
		return code
	}
	if name := matches[0].Record.Get(reference.FieldName); name != "" {
		return name
	}
	return code
}

// step runs fn as one pipeline stage, firing hooks around it. Errors that
// are not already a domain.Failure are replaced by an unexpected-error
// record carrying the original as its cause.
func (r *run) step(ctx context.Context, stage Stage, candidate int, fn func() error) error {
	ev := &StageEvent{PlanID: r.id, Stage: stage, Candidate: candidate}
	if h := r.p.deps.Hooks.OnStageEnter; h != nil {
		h(ctx, ev)
	}
	r.log.Debug("stage enter", "stage", stage, "candidate", candidate)

	start := time.Now()
	err := fn()
	if err != nil {
		if f, ok := domain.AsFailure(err); ok {
			err = f
		} else {
			err = domain.Unexpected(err)
		}
	}

	ev.Duration = time.Since(start)
	ev.Err = err
	if h := r.p.deps.Hooks.OnStageLeave; h != nil {
		h(ctx, ev)
	}
	if err != nil {
		r.log.Debug("stage failed", "stage", stage, "candidate", candidate, "error", err)
	}
	return err
}
