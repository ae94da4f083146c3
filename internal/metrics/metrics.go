// Package metrics exports planner activity as Prometheus series.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/trip-planner/internal/service"
)

const namespace = "tripplanner"

// Recorder turns planner hooks into counters and histograms.
type Recorder struct {
	stages    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	plans     *prometheus.CounterVec
}

// NewRecorder registers the planner series on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Pipeline stages entered, by stage.",
		}, []string{"stage"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stages that ended in a failure, by stage.",
		}, []string{"stage"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{.001, .005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Completed plan requests, by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{r.stages, r.failures, r.durations, r.plans} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Hooks returns planner hooks feeding this recorder.
func (r *Recorder) Hooks() service.Hooks {
	return service.Hooks{
		OnStageEnter: func(_ context.Context, e *service.StageEvent) {
			r.stages.WithLabelValues(string(e.Stage)).Inc()
		},
		OnStageLeave: func(_ context.Context, e *service.StageEvent) {
			r.durations.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
			if e.Err != nil {
				r.failures.WithLabelValues(string(e.Stage)).Inc()
			}
		},
		OnPlanDone: func(_ context.Context, e *service.PlanEvent) {
			r.plans.WithLabelValues(e.Outcome).Inc()
		},
	}
}

// NewRegistry returns a registry preloaded with Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
