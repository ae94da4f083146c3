package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/metrics"
	"github.com/pkordes/trip-planner/internal/service"
)

func TestRecorder_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	hooks := rec.Hooks()
	ctx := context.Background()

	for _, stage := range []service.Stage{service.StageValidating, service.StageFetchingFlight, service.StageFetchingFlight} {
		ev := &service.StageEvent{Stage: stage}
		hooks.OnStageEnter(ctx, ev)
		ev.Duration = 40 * time.Millisecond
		hooks.OnStageLeave(ctx, ev)
	}
	hooks.OnStageLeave(ctx, &service.StageEvent{Stage: service.StageFetchingWeather, Err: errors.New("boom")})
	hooks.OnPlanDone(ctx, &service.PlanEvent{Outcome: service.OutcomeOK})
	hooks.OnPlanDone(ctx, &service.PlanEvent{Outcome: service.OutcomeDomain})
	hooks.OnPlanDone(ctx, &service.PlanEvent{Outcome: service.OutcomeOK})

	expected := `
# HELP tripplanner_plans_total Completed plan requests, by outcome.
# TYPE tripplanner_plans_total counter
tripplanner_plans_total{outcome="domain"} 1
tripplanner_plans_total{outcome="ok"} 2
# HELP tripplanner_stage_failures_total Pipeline stages that ended in a failure, by stage.
# TYPE tripplanner_stage_failures_total counter
tripplanner_stage_failures_total{stage="fetching_weather"} 1
# HELP tripplanner_stage_total Pipeline stages entered, by stage.
# TYPE tripplanner_stage_total counter
tripplanner_stage_total{stage="fetching_flight"} 2
tripplanner_stage_total{stage="validating"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"tripplanner_plans_total", "tripplanner_stage_failures_total", "tripplanner_stage_total"))
	n, err := testutil.GatherAndCount(reg, "tripplanner_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	_, err = metrics.NewRecorder(reg)

	assert.Error(t, err)
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := metrics.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	rec.Hooks().OnPlanDone(context.Background(), &service.PlanEvent{Outcome: service.OutcomeValidation})

	w := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `tripplanner_plans_total{outcome="validation"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
