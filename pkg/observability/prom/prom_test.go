package prom

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, "test")
	ctx := context.Background()

	c.OnPassStart(ctx, 4, 2)
	c.OnPassComplete(ctx, 3, 1, 2*time.Millisecond)
	c.OnHit(ctx, "items/list-0")
	c.OnMiss(ctx, "items/list-1")
	c.OnRemember(ctx, "items/list-1", "p1c2")
	c.OnClear(ctx, "items/list-0")
	c.OnMeasurement(ctx, "k1", 80)
	c.OnStatusChange(ctx, "idle", "measuring")
	c.OnCommit(ctx, 3, 1, false)
	c.OnCommit(ctx, 3, 1, true)

	if got := testutil.ToFloat64(c.passes); got != 1 {
		t.Errorf("passes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.passOutcomes.WithLabelValues("place")); got != 3 {
		t.Errorf("placed = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.passOutcomes.WithLabelValues("defer")); got != 1 {
		t.Errorf("deferred = %v, want 1", got)
	}
	for _, op := range []string{"hit", "miss", "remember", "clear"} {
		if got := testutil.ToFloat64(c.cacheOps.WithLabelValues(op)); got != 1 {
			t.Errorf("cache op %s = %v, want 1", op, got)
		}
	}
	if got := testutil.ToFloat64(c.commits.WithLabelValues("committed")); got != 1 {
		t.Errorf("committed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.commits.WithLabelValues("stale")); got != 1 {
		t.Errorf("stale = %v, want 1", got)
	}
}

func TestNewDefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, "")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "pageplan_planner_pass_duration_seconds" {
			found = true
		}
	}
	if !found {
		t.Error("expected pageplan-namespaced metric after registration")
	}
}
