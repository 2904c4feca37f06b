// Package prom provides a Prometheus backend for the observability hooks.
//
// Register it at startup:
//
//	collector := prom.New(nil, "")
//	observability.SetPlannerHooks(collector)
//	observability.SetCacheHooks(collector)
//	observability.SetDriverHooks(collector)
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jdalgard/pageplan/pkg/observability"
)

// Collector implements the planner, cache, and driver hook interfaces backed
// by Prometheus metrics.
type Collector struct {
	passes       prometheus.Counter
	passDuration prometheus.Histogram
	passOutcomes *prometheus.CounterVec
	cacheOps     *prometheus.CounterVec
	measurements prometheus.Counter
	statusMoves  *prometheus.CounterVec
	commits      *prometheus.CounterVec
}

// Compile-time assertions that Collector implements the hook interfaces.
var (
	_ observability.PlannerHooks = (*Collector)(nil)
	_ observability.CacheHooks   = (*Collector)(nil)
	_ observability.DriverHooks  = (*Collector)(nil)
)

// New creates a Prometheus-backed hooks collector and registers its metrics.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: metrics namespace (defaults to "pageplan" if empty)
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "pageplan"
	}

	c := &Collector{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "passes_total",
			Help:      "Total planning passes started.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "pass_duration_seconds",
			Help:      "Planning pass durations in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		passOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "segments_total",
			Help:      "Total segment outcomes by intent.",
		}, []string{"intent"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reroute",
			Name:      "cache_ops_total",
			Help:      "Total reroute cache operations by kind.",
		}, []string{"op"}),
		measurements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "measurements_total",
			Help:      "Total height measurements recorded.",
		}),
		statusMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "status_transitions_total",
			Help:      "Total measurement status transitions.",
		}, []string{"from", "to"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "driver",
			Name:      "commits_total",
			Help:      "Total plan commits by freshness.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.passes, c.passDuration, c.passOutcomes,
		c.cacheOps, c.measurements, c.statusMoves, c.commits,
	)
	return c
}

// OnPassStart implements observability.PlannerHooks.
func (c *Collector) OnPassStart(ctx context.Context, segments, regions int) {
	c.passes.Inc()
}

// OnPassComplete implements observability.PlannerHooks.
func (c *Collector) OnPassComplete(ctx context.Context, placed, deferred int, duration time.Duration) {
	c.passDuration.Observe(duration.Seconds())
	c.passOutcomes.WithLabelValues("place").Add(float64(placed))
	c.passOutcomes.WithLabelValues("defer").Add(float64(deferred))
}

// OnHit implements observability.CacheHooks.
func (c *Collector) OnHit(ctx context.Context, key string) {
	c.cacheOps.WithLabelValues("hit").Inc()
}

// OnMiss implements observability.CacheHooks.
func (c *Collector) OnMiss(ctx context.Context, key string) {
	c.cacheOps.WithLabelValues("miss").Inc()
}

// OnRemember implements observability.CacheHooks.
func (c *Collector) OnRemember(ctx context.Context, key, region string) {
	c.cacheOps.WithLabelValues("remember").Inc()
}

// OnClear implements observability.CacheHooks.
func (c *Collector) OnClear(ctx context.Context, key string) {
	c.cacheOps.WithLabelValues("clear").Inc()
}

// OnMeasurement implements observability.DriverHooks.
func (c *Collector) OnMeasurement(ctx context.Context, key string, height float64) {
	c.measurements.Inc()
}

// OnStatusChange implements observability.DriverHooks.
func (c *Collector) OnStatusChange(ctx context.Context, from, to string) {
	c.statusMoves.WithLabelValues(from, to).Inc()
}

// OnCommit implements observability.DriverHooks.
func (c *Collector) OnCommit(ctx context.Context, placed, deferred int, stale bool) {
	result := "committed"
	if stale {
		result = "stale"
	}
	c.commits.WithLabelValues(result).Inc()
}
