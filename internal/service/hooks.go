package service

import (
	"context"
	"errors"
	"time"

	"github.com/pkordes/trip-planner/internal/domain"
)

// Stage names one step of the planning pipeline.
type Stage string

const (
	StageValidating           Stage = "validating"
	StageResolvingOrigin      Stage = "resolving_origin"
	StageFetchingCandidates   Stage = "fetching_candidates"
	StageResolvingDestination Stage = "resolving_destination"
	StageFetchingFlight       Stage = "fetching_flight"
	StageFetchingWeather      Stage = "fetching_weather"
	StageAggregating          Stage = "aggregating"
)

// noCandidate marks run-level stage events.
const noCandidate = -1

// StageEvent describes one stage execution. Duration and Err are set only
// when the stage is left.
type StageEvent struct {
	PlanID    string
	Stage     Stage
	Candidate int
	Duration  time.Duration
	Err       error
}

// PlanEvent is emitted once per Plan call.
type PlanEvent struct {
	PlanID   string
	Outcome  string
	Duration time.Duration
	Results  int
}

// Hooks observe the pipeline. Nil hooks are skipped. With more than one
// worker, stage hooks fire from several goroutines.
type Hooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStageLeave func(context.Context, *StageEvent)
	OnPlanDone   func(context.Context, *PlanEvent)
}

// Plan outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeDomain     = "domain"
	OutcomeUnexpected = "unexpected"
)

var validationKinds = map[string]bool{
	domain.KindInvalidAirport:       true,
	domain.KindInvalidPrice:         true,
	domain.KindInvalidPassenger:     true,
	domain.KindTooManyPassengers:    true,
	domain.KindTooManyInfants:       true,
	domain.KindInvalidDepartureDate: true,
	domain.KindInvalidReturnDate:    true,
	domain.KindInvalidClass:         true,
	domain.KindInvalidNonStop:       true,
	domain.KindInvalidDescriptors:   true,
}

var domainKinds = map[string]bool{
	domain.KindNoTripsFound:    true,
	domain.KindAirportNotFound: true,
	domain.KindNoFlightsFound:  true,
}

// Outcome classifies a Plan error by the kind of its first record.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var f domain.Failure
	if !errors.As(err, &f) {
		return OutcomeUnexpected
	}
	recs := f.Records()
	if len(recs) == 0 {
		return OutcomeUnexpected
	}
	switch kind := recs[0].Kind; {
	case validationKinds[kind]:
		return OutcomeValidation
	case domainKinds[kind]:
		return OutcomeDomain
	}
	return OutcomeUnexpected
}
