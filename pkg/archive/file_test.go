package archive

import (
	"context"
	"testing"
	"time"

	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/segment"
)

func testPlan() *plan.Plan {
	return &plan.Plan{
		Entries: []plan.Entry{
			{
				Segment: segment.Descriptor{Component: "intro", ID: "meta", Height: 80},
				Intent:  plan.Place{Region: "p1c1", Top: 0, Bottom: 80, Height: 80, CursorAfter: 92, Reason: plan.PlaceFits},
			},
			{
				Segment: segment.Descriptor{Component: "items", ID: "list-1", Height: 200},
				Intent:  plan.Defer{From: "p1c1", To: "p1c2", Attempted: "p1c1", Reason: plan.DeferInsufficientSpace},
			},
		},
		Metrics: plan.Metrics{Placed: 1, Deferred: 1},
	}
}

func TestFileArchivePutGet(t *testing.T) {
	ctx := context.Background()
	a, err := NewFileArchive(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileArchive: %v", err)
	}
	defer a.Close()

	rec := NewRecord("report.toml", testPlan())
	if rec.ID == "" {
		t.Fatal("NewRecord should assign an ID")
	}
	if err := a.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := a.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Document != "report.toml" {
		t.Errorf("document = %q", got.Document)
	}
	if len(got.Plan.Entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got.Plan.Entries))
	}
	place, ok := got.Plan.Entries[0].Intent.(plan.Place)
	if !ok {
		t.Fatalf("entry 0 decoded as %T", got.Plan.Entries[0].Intent)
	}
	if place.Region != "p1c1" || place.Bottom != 80 {
		t.Errorf("placement round trip wrong: %+v", place)
	}
	if _, ok := got.Plan.Entries[1].Intent.(plan.Defer); !ok {
		t.Fatalf("entry 1 decoded as %T", got.Plan.Entries[1].Intent)
	}
}

func TestFileArchiveDuplicate(t *testing.T) {
	ctx := context.Background()
	a, _ := NewFileArchive(t.TempDir())

	rec := NewRecord("doc", testPlan())
	if err := a.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	err := a.Put(ctx, rec)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("want INVALID_INPUT for duplicate, got %v", err)
	}
}

func TestFileArchiveGetMissing(t *testing.T) {
	a, _ := NewFileArchive(t.TempDir())
	_, err := a.Get(context.Background(), "nope")
	if !errors.Is(err, errors.ErrCodePlanNotFound) {
		t.Errorf("want PLAN_NOT_FOUND, got %v", err)
	}
}

func TestFileArchiveListNewestFirst(t *testing.T) {
	ctx := context.Background()
	a, _ := NewFileArchive(t.TempDir())

	older := NewRecord("first", testPlan())
	older.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := NewRecord("second", testPlan())
	newer.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, rec := range []Record{older, newer} {
		if err := a.Put(ctx, rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	list, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 summaries, got %d", len(list))
	}
	if list[0].Document != "second" || list[1].Document != "first" {
		t.Errorf("ordering wrong: %q then %q", list[0].Document, list[1].Document)
	}
	if list[0].Metrics.Placed != 1 || list[0].Metrics.Deferred != 1 {
		t.Errorf("summary metrics wrong: %+v", list[0].Metrics)
	}
}
