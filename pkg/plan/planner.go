package plan

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jdalgard/pageplan/pkg/observability"
	"github.com/jdalgard/pageplan/pkg/region"
	"github.com/jdalgard/pageplan/pkg/reroute"
	"github.com/jdalgard/pageplan/pkg/segment"
)

// DefaultSpacing is the post-segment spacing applied when a descriptor does
// not carry an explicit one.
const DefaultSpacing = 12.0

// Options configures a Planner.
type Options struct {
	// Spacing is the default post-segment spacing in length units.
	Spacing float64

	// ForceOverflow places a segment into the last region even when it does
	// not fit, instead of emitting a no-next-region deferral. Off by default.
	ForceOverflow bool

	// Sink receives per-segment diagnostics. Never influences outcomes.
	Sink Sink

	// Logger for pass-level debug output. Defaults to a discard logger.
	Logger *log.Logger
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.Spacing <= 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Sink == nil {
		o.Sink = NoopSink{}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Planner runs placement passes against a region model and a reroute store.
//
// The model is mutated in place during a pass (cursor advances), so a Planner
// and its model must be exclusively owned by one in-flight pass. The store
// may be shared across passes but never across concurrent ones.
type Planner struct {
	model *region.Model
	store reroute.Store
	opts  Options
}

// New creates a planner. A nil store disables rerouting via [reroute.NullStore].
func New(model *region.Model, store reroute.Store, opts Options) (*Planner, error) {
	if model == nil {
		return nil, fmt.Errorf("planner requires a region model")
	}
	if store == nil {
		store = reroute.NewNullStore()
	}
	opts.SetDefaults()
	return &Planner{model: model, store: store, opts: opts}, nil
}

// Run executes one forward sweep over segments in the given order and returns
// an ordered plan with one entry per segment.
//
// Per segment the sweep:
//  1. Resolves the target region: a non-expired cached deferral target if it
//     still exists in the model (purging the entry when it does not), else
//     the segment's home region. If neither exists the segment defers with
//     missing-region and any cache entry is cleared.
//  2. Probes the target for fit.
//  3. On fit, commits the cursor advance, clears the cache entry, and emits
//     Place (reason cached-region when the region came from cache).
//  4. On no fit, remembers the region after the attempted one as the new
//     deferral target and emits Defer — insufficient-space when a next
//     region exists, no-next-region when the attempted region is last.
//
// Errors surface only from store I/O; the in-memory path never errors.
func (p *Planner) Run(ctx context.Context, segments []segment.Descriptor) (*Plan, error) {
	start := time.Now()
	p.opts.Sink.OnPassStart(len(segments), p.model.Len())
	observability.Planner().OnPassStart(ctx, len(segments), p.model.Len())

	out := &Plan{Entries: make([]Entry, 0, len(segments))}
	for _, seg := range segments {
		entry, err := p.planSegment(ctx, seg)
		if err != nil {
			return nil, err
		}
		switch intent := entry.Intent.(type) {
		case Place:
			out.Metrics.Placed++
			p.opts.Sink.OnPlace(seg, intent)
		case Defer:
			out.Metrics.Deferred++
			p.opts.Sink.OnDefer(seg, intent)
		}
		out.Entries = append(out.Entries, entry)
	}

	p.opts.Sink.OnPassEnd(out.Metrics)
	observability.Planner().OnPassComplete(ctx, out.Metrics.Placed, out.Metrics.Deferred, time.Since(start))
	p.opts.Logger.Debug("planning pass complete",
		"segments", len(segments),
		"placed", out.Metrics.Placed,
		"deferred", out.Metrics.Deferred,
	)
	return out, nil
}

// planSegment decides the intent for one segment.
func (p *Planner) planSegment(ctx context.Context, seg segment.Descriptor) (Entry, error) {
	key := seg.Key()

	target, fromCache, err := p.resolveTarget(ctx, key, seg.HomeRegion)
	if err != nil {
		return Entry{}, err
	}
	if target == nil {
		// Configuration fault: neither cached nor home region exists.
		if err := p.store.Remember(ctx, key, ""); err != nil {
			return Entry{}, err
		}
		return Entry{Segment: seg, Intent: Defer{
			From:      seg.HomeRegion,
			Attempted: seg.HomeRegion,
			Reason:    DeferMissingRegion,
		}}, nil
	}

	spacing := seg.SpacingOr(p.opts.Spacing)
	fit, ok := target.Probe(seg.Height, spacing)
	if ok {
		target.Advance(fit)
		if err := p.store.Clear(ctx, key); err != nil {
			return Entry{}, err
		}
		reason := PlaceFits
		if fromCache {
			reason = PlaceCachedRegion
		}
		return Entry{Segment: seg, Intent: Place{
			Region:      target.Key,
			Top:         fit.Top,
			Bottom:      fit.Bottom,
			Height:      seg.Height,
			CursorAfter: fit.CursorAfter,
			FromCache:   fromCache,
			Reason:      reason,
		}}, nil
	}

	// Deferral routes from the attempted region, not the home region, so a
	// segment already rerouted once keeps walking forward.
	next := p.model.Next(target)
	if next == nil {
		if p.opts.ForceOverflow {
			forced := region.Fit{
				Top:         target.Cursor(),
				Bottom:      target.Cursor() + seg.Height,
				CursorAfter: target.Cursor() + seg.Height + spacing,
			}
			target.Advance(forced)
			if err := p.store.Clear(ctx, key); err != nil {
				return Entry{}, err
			}
			return Entry{Segment: seg, Intent: Place{
				Region:      target.Key,
				Top:         forced.Top,
				Bottom:      forced.Bottom,
				Height:      seg.Height,
				CursorAfter: forced.CursorAfter,
				FromCache:   fromCache,
				Reason:      PlaceForced,
			}}, nil
		}

		if err := p.store.Remember(ctx, key, ""); err != nil {
			return Entry{}, err
		}
		return Entry{Segment: seg, Intent: Defer{
			From:      seg.HomeRegion,
			Attempted: target.Key,
			Reason:    DeferNoNextRegion,
		}}, nil
	}

	if err := p.store.Remember(ctx, key, next.Key); err != nil {
		return Entry{}, err
	}
	return Entry{Segment: seg, Intent: Defer{
		From:      seg.HomeRegion,
		To:        next.Key,
		Attempted: target.Key,
		Reason:    DeferInsufficientSpace,
	}}, nil
}

// resolveTarget picks the region to attempt: the cached deferral target when
// one exists in the current model, else the home region. A cached key that no
// longer exists purges the stale entry and falls through to home.
func (p *Planner) resolveTarget(ctx context.Context, key segment.Key, home string) (*region.Region, bool, error) {
	cached, ok, err := p.store.Resolve(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		if r, exists := p.model.Region(cached); exists {
			return r, true, nil
		}
		if err := p.store.Clear(ctx, key); err != nil {
			return nil, false, err
		}
	}

	if r, exists := p.model.Region(home); exists {
		return r, false, nil
	}
	return nil, false, nil
}
