package driver

import (
	"context"
	"testing"
	"time"

	"github.com/jdalgard/pageplan/pkg/measure"
	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
	"github.com/jdalgard/pageplan/pkg/segment"
)

// fakeClock is a manually advanced clock for debounce tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testSegments() []segment.Descriptor {
	return []segment.Descriptor{
		{Component: "event", ID: "meta", MeasureKey: "m1", HomeRegion: "p1c1", Height: 0, Metadata: true},
		{Component: "guests", ID: "list-0", MeasureKey: "m2", HomeRegion: "p1c1"},
	}
}

func testRegions() []region.Config {
	return []region.Config{
		{Key: "p1c1", MaxHeight: 300},
		{Key: "p1c2", MaxHeight: 300},
	}
}

func newTestDriver(clock *fakeClock) *Driver {
	d := New(Config{}, nil, WithClock(clock.Now))
	d.SetSegments(testSegments())
	d.SetRegions(testRegions())
	return d
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := New(Config{}, nil, WithClock(clock.Now))
	defer d.Close()

	if d.Status() != StatusIdle {
		t.Errorf("initial status = %v, want idle", d.Status())
	}

	d.SetSegments(testSegments())
	if d.Status() != StatusMeasuring {
		t.Errorf("status after SetSegments = %v, want measuring", d.Status())
	}

	d.Record(ctx, "m1", 80)
	if d.Status() != StatusMeasuring {
		t.Errorf("status with missing keys = %v, want measuring", d.Status())
	}

	d.Record(ctx, "m2", 120)
	if d.Status() != StatusComplete {
		t.Errorf("status when complete = %v, want complete", d.Status())
	}

	// New content falls back to measuring
	segs := testSegments()
	segs = append(segs, segment.Descriptor{Component: "vendors", ID: "v0", MeasureKey: "m3", HomeRegion: "p1c2"})
	d.SetSegments(segs)
	if d.Status() != StatusMeasuring {
		t.Errorf("status after new content = %v, want measuring", d.Status())
	}
}

func TestTryPlanGatedOnCompleteness(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := newTestDriver(clock)
	defer d.Close()

	// No measurements at all: gated
	if _, ok, err := d.TryPlan(ctx); ok || err != nil {
		t.Errorf("TryPlan with no measurements = ok=%v err=%v, want gated", ok, err)
	}

	// Partial measurements: still gated
	d.Record(ctx, "m1", 80)
	clock.Advance(time.Second)
	if _, ok, _ := d.TryPlan(ctx); ok {
		t.Error("TryPlan with missing keys should be gated")
	}
}

func TestTryPlanGatedOnStability(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := newTestDriver(clock)
	defer d.Close()

	d.Record(ctx, "m1", 80)
	d.Record(ctx, "m2", 120)

	// Complete, but the stability window has not elapsed
	if _, ok, _ := d.TryPlan(ctx); ok {
		t.Error("TryPlan inside stability window should be gated")
	}

	clock.Advance(DefaultStability)
	out, ok, err := d.TryPlan(ctx)
	if err != nil {
		t.Fatalf("TryPlan error: %v", err)
	}
	if !ok {
		t.Fatal("TryPlan after stability window should run")
	}
	if out.Metrics.Placed != 2 {
		t.Errorf("placed = %d, want 2", out.Metrics.Placed)
	}
}

func TestStabilityWindowRestartsOnMeasurement(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := newTestDriver(clock)
	defer d.Close()

	d.Record(ctx, "m1", 80)
	clock.Advance(200 * time.Millisecond)
	d.Record(ctx, "m2", 120) // restarts the window

	clock.Advance(200 * time.Millisecond)
	if _, ok, _ := d.TryPlan(ctx); ok {
		t.Error("window should have restarted on the second measurement")
	}

	clock.Advance(150 * time.Millisecond)
	if _, ok, _ := d.TryPlan(ctx); !ok {
		t.Error("TryPlan should run once the restarted window elapses")
	}
}

func TestCommitLastCompletedWins(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := newTestDriver(clock)
	defer d.Close()

	d.Record(ctx, "m1", 80)
	d.Record(ctx, "m2", 120)
	clock.Advance(time.Second)

	if _, ok, _ := d.TryPlan(ctx); !ok {
		t.Fatal("TryPlan should run")
	}

	// A measurement lands after the pass: the pending plan is stale.
	d.Record(ctx, "m2", 180)
	if _, ok := d.Commit(ctx); ok {
		t.Error("stale pending plan must not commit")
	}

	// Replan with the new height commits cleanly.
	clock.Advance(time.Second)
	if _, ok, _ := d.TryPlan(ctx); !ok {
		t.Fatal("replan should run")
	}
	committed, ok := d.Commit(ctx)
	if !ok {
		t.Fatal("fresh plan should commit")
	}
	if d.Committed() != committed {
		t.Error("Committed() should return the promoted plan")
	}
}

func TestCommitWithoutPending(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	d := newTestDriver(clock)
	defer d.Close()

	if _, ok := d.Commit(context.Background()); ok {
		t.Error("Commit with no pending plan should return false")
	}
}

func TestDirtyClearsAfterPlan(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := newTestDriver(clock)
	defer d.Close()

	if !d.Dirty() {
		t.Error("driver should be dirty after SetSegments")
	}

	d.Record(ctx, "m1", 80)
	d.Record(ctx, "m2", 120)
	clock.Advance(time.Second)
	if _, ok, _ := d.TryPlan(ctx); !ok {
		t.Fatal("TryPlan should run")
	}

	if d.Dirty() {
		t.Error("driver should be clean after a pass")
	}

	// A clean driver does not replan
	if _, ok, _ := d.TryPlan(ctx); ok {
		t.Error("TryPlan on a clean driver should be gated")
	}
}

func TestCarryCursors(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Now()}
	d := New(Config{CarryCursors: true}, nil, WithClock(clock.Now))
	defer d.Close()

	d.SetSegments(testSegments())
	d.SetRegions(testRegions())
	d.Record(ctx, "m1", 80)
	d.Record(ctx, "m2", 120)
	clock.Advance(time.Second)

	if _, ok, _ := d.TryPlan(ctx); !ok {
		t.Fatal("TryPlan should run")
	}
	if _, ok := d.Commit(ctx); !ok {
		t.Fatal("Commit should promote")
	}

	// Replanning new content starts where the committed plan left off:
	// 80 + 12 + 120 + 12 = 224 into p1c1.
	d.SetSegments([]segment.Descriptor{
		{Component: "notes", ID: "n0", MeasureKey: "m4", HomeRegion: "p1c1"},
	})
	d.Record(ctx, "m4", 50)
	clock.Advance(time.Second)

	out, ok, err := d.TryPlan(ctx)
	if err != nil || !ok {
		t.Fatalf("TryPlan = ok=%v err=%v", ok, err)
	}

	place, isPlace := out.Entries[0].Intent.(plan.Place)
	if !isPlace {
		t.Fatalf("intent = %T, want Place", out.Entries[0].Intent)
	}
	if place.Top != 224 {
		t.Errorf("carried cursor top = %v, want 224", place.Top)
	}
}

func TestRunConvergesWithEstimator(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := New(Config{Stability: 20 * time.Millisecond}, nil)
	defer d.Close()

	d.SetSegments(testSegments())
	d.SetRegions(testRegions())

	out, err := d.Run(ctx, measure.NewRuleEstimator())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if out.Metrics.Placed != 2 || out.Metrics.Deferred != 0 {
		t.Errorf("metrics = %+v, want 2 placed", out.Metrics)
	}
}

func TestRunWithNothingToMeasure(t *testing.T) {
	d := New(Config{Stability: 10 * time.Millisecond}, nil)
	defer d.Close()

	d.SetRegions(testRegions())

	if _, err := d.Run(context.Background(), measure.NewRuleEstimator()); err == nil {
		t.Error("Run with no segments should error (empty required set is not complete)")
	}
}
