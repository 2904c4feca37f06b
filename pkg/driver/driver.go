// Package driver owns the convergence loop around the planner: it accepts
// content and measurement updates, derives measurement completeness, and runs
// a planning pass only when the data is complete and the stability window has
// elapsed.
//
// The driver is the sole owner of the long-lived state — the reroute store
// and the committed cursor offsets. Everything else (region models, plans) is
// rebuilt per pass and discarded. Planning passes are serialized by an
// internal mutex; a pending plan is only committed if no measurement arrived
// after the pass started (last-completed-wins, keyed by the measurement
// version counter).
package driver

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/measure"
	"github.com/jdalgard/pageplan/pkg/observability"
	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
	"github.com/jdalgard/pageplan/pkg/reroute"
	"github.com/jdalgard/pageplan/pkg/segment"
)

// DefaultStability is the quiet period after the last measurement before a
// planning pass may run. It bounds how often the sweep runs under rapid
// successive re-measurements (font loading, image decode).
const DefaultStability = 300 * time.Millisecond

// Config configures a Driver.
type Config struct {
	// Stability is the measurement debounce window.
	Stability time.Duration

	// Spacing is the default post-segment spacing passed to the planner.
	Spacing float64

	// ForceOverflow tolerates overflow in the last region instead of
	// emitting no-next-region deferrals.
	ForceOverflow bool

	// CarryCursors feeds each committed pass's final region cursors into the
	// next pass as start offsets.
	CarryCursors bool
}

// SetDefaults fills unset config values.
func (c *Config) SetDefaults() {
	if c.Stability <= 0 {
		c.Stability = DefaultStability
	}
	if c.Spacing <= 0 {
		c.Spacing = plan.DefaultSpacing
	}
}

// pendingPlan is a computed but uncommitted plan, tagged with the measurement
// version observed at pass start.
type pendingPlan struct {
	plan    *plan.Plan
	cursors map[string]float64
	version uint64
}

// Driver drives measurement and planning to convergence.
type Driver struct {
	mu sync.Mutex

	cfg    Config
	store  reroute.Store
	logger *log.Logger
	clock  func() time.Time
	sink   plan.Sink

	segments []segment.Descriptor
	regions  []region.Config
	set      *measure.Set
	cursors  map[string]float64

	status       Status
	dirty        bool
	lastMeasured time.Time
	pending      *pendingPlan
	committed    *plan.Plan
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithClock injects a clock for deterministic debounce tests.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.clock = now }
}

// WithSink attaches a planner diagnostics sink.
func WithSink(s plan.Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// New creates a driver. A nil store gets a fresh in-memory reroute store,
// owned by the driver for its lifetime.
func New(cfg Config, store reroute.Store, opts ...Option) *Driver {
	cfg.SetDefaults()
	if store == nil {
		store = reroute.NewMemoryStore()
	}

	d := &Driver{
		cfg:     cfg,
		store:   store,
		logger:  log.New(io.Discard),
		clock:   time.Now,
		set:     measure.NewSet(),
		cursors: make(map[string]float64),
		status:  StatusIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetSegments replaces the segment list. Any pending plan is discarded: it
// was computed against content that no longer exists.
func (d *Driver) SetSegments(segments []segment.Descriptor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.segments = make([]segment.Descriptor, len(segments))
	copy(d.segments, segments)
	d.dirty = true
	d.pending = nil
	d.updateStatusLocked(context.Background())
}

// SetRegions replaces the region configuration and marks the layout dirty.
func (d *Driver) SetRegions(configs []region.Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.regions = make([]region.Config, len(configs))
	copy(d.regions, configs)
	d.dirty = true
}

// Record stores one measured height, restarts the stability window, and
// marks the layout dirty.
func (d *Driver) Record(ctx context.Context, key string, height float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recordLocked(ctx, key, height)
}

// RecordAll stores a batch of measured heights.
func (d *Driver) RecordAll(ctx context.Context, heights map[string]float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, h := range heights {
		d.recordLocked(ctx, key, h)
	}
}

func (d *Driver) recordLocked(ctx context.Context, key string, height float64) {
	d.set.Record(key, height)
	d.lastMeasured = d.clock()
	d.dirty = true
	observability.Driver().OnMeasurement(ctx, key, height)
	d.updateStatusLocked(ctx)
}

// updateStatusLocked re-derives the status from the live segment list and
// measurement set, firing the transition hook on change.
func (d *Driver) updateStatusLocked(ctx context.Context) {
	next := StatusIdle
	if len(measure.Required(d.segments)) > 0 {
		next = StatusMeasuring
		if measure.Complete(d.segments, d.set) {
			next = StatusComplete
		}
	}

	if next != d.status {
		observability.Driver().OnStatusChange(ctx, d.status.String(), next.String())
		d.logger.Debug("status change", "from", d.status, "to", next)
		d.status = next
	}
}

// TryPlan runs a planning pass if the layout is dirty, measurement is
// complete, and the stability window has elapsed since the last measurement.
// Returns ok=false (with a nil plan and nil error) when gated.
//
// The resulting plan is held as pending until [Driver.Commit] promotes it.
func (d *Driver) TryPlan(ctx context.Context) (*plan.Plan, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dirty {
		return nil, false, nil
	}
	if !measure.Complete(d.segments, d.set) {
		return nil, false, nil
	}
	if d.clock().Sub(d.lastMeasured) < d.cfg.Stability {
		return nil, false, nil
	}

	version := d.set.Version()

	model, err := region.NewModel(d.carriedConfigsLocked())
	if err != nil {
		return nil, false, err
	}
	planner, err := plan.New(model, d.store, plan.Options{
		Spacing:       d.cfg.Spacing,
		ForceOverflow: d.cfg.ForceOverflow,
		Sink:          d.sink,
		Logger:        d.logger,
	})
	if err != nil {
		return nil, false, err
	}

	out, err := planner.Run(ctx, d.set.Apply(d.segments))
	if err != nil {
		return nil, false, err
	}

	d.pending = &pendingPlan{plan: out, cursors: model.Cursors(), version: version}
	d.dirty = false
	return out, true, nil
}

// carriedConfigsLocked merges committed cursor offsets into the region
// configuration for the next pass.
func (d *Driver) carriedConfigsLocked() []region.Config {
	configs := make([]region.Config, len(d.regions))
	copy(configs, d.regions)
	if !d.cfg.CarryCursors {
		return configs
	}
	for i := range configs {
		if offset, ok := d.cursors[configs[i].Key]; ok {
			configs[i].StartOffset = offset
		}
	}
	return configs
}

// Commit promotes the pending plan to committed if no measurement has arrived
// since its pass started. A superseded pending plan is discarded
// (last-completed-wins) and Commit returns ok=false.
func (d *Driver) Commit(ctx context.Context) (*plan.Plan, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return nil, false
	}

	pending := d.pending
	d.pending = nil

	if pending.version != d.set.Version() {
		observability.Driver().OnCommit(ctx, pending.plan.Metrics.Placed, pending.plan.Metrics.Deferred, true)
		d.logger.Debug("discarding stale pending plan",
			"plan_version", pending.version,
			"current_version", d.set.Version(),
		)
		return nil, false
	}

	d.committed = pending.plan
	if d.cfg.CarryCursors {
		d.cursors = pending.cursors
	}
	observability.Driver().OnCommit(ctx, pending.plan.Metrics.Placed, pending.plan.Metrics.Deferred, false)
	return pending.plan, true
}

// Run measures every segment with the estimator, waits out the stability
// window, and returns the committed plan. Convenience loop for the CLI and
// for callers with a synchronous measurer.
func (d *Driver) Run(ctx context.Context, est measure.Estimator) (*plan.Plan, error) {
	d.RecordAll(ctx, measure.MeasureAll(est, d.Segments()))

	if !measure.Complete(d.Segments(), d.set) {
		return nil, errors.New(errors.ErrCodeMeasurementIncomplete, "measurement incomplete after estimator pass")
	}

	for {
		_, ok, err := d.TryPlan(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			if committed, promoted := d.Commit(ctx); promoted {
				return committed, nil
			}
			continue // superseded mid-pass, replan
		}

		// Gated on the stability window; wait out the remainder.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.remainingStability()):
		}
	}
}

func (d *Driver) remainingStability() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	remaining := d.cfg.Stability - d.clock().Sub(d.lastMeasured)
	if remaining < 10*time.Millisecond {
		remaining = 10 * time.Millisecond
	}
	return remaining
}

// Status returns the current measurement status.
func (d *Driver) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Dirty reports whether the layout needs replanning.
func (d *Driver) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Stats derives measurement readiness for observability.
func (d *Driver) Stats() measure.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return measure.Compute(d.segments, d.set)
}

// Segments returns a copy of the current segment list.
func (d *Driver) Segments() []segment.Descriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]segment.Descriptor, len(d.segments))
	copy(out, d.segments)
	return out
}

// Committed returns the last committed plan, or nil.
func (d *Driver) Committed() *plan.Plan {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Store exposes the reroute store for diagnostics (cache snapshot commands).
func (d *Driver) Store() reroute.Store {
	return d.store
}

// Close releases the reroute store.
func (d *Driver) Close() error {
	return d.store.Close()
}
