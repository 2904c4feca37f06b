// Package pkg provides the core libraries for pageplan segment placement.
//
// # Overview
//
// Pageplan packs variable-height content segments into fixed-capacity page
// regions. Measurements arrive asynchronously; planning runs only once every
// segment is measured and the measurements have stopped changing. The pkg
// directory is organized around that flow:
//
//	Document + Template
//	         ↓
//	    [document] (decompose into segments)  [template] (expand into regions)
//	         ↓
//	    [measure] (record heights, completeness)
//	         ↓
//	    [driver] (debounce, plan, commit)
//	         ↓
//	    [plan] (forward-sweep planner + intents)
//	         ↓
//	    [preview] / [archive] (render, persist)
//
// # Main Packages
//
// [segment] - Segment descriptors and identity. A segment is the atomic unit
// of placement: it has a home region, a measured or estimated height, and a
// stable measurement key.
//
// [region] - Region capacity model. Regions are ordered, have a fixed
// maximum height, and track a placement cursor. Probe is pure; Advance
// moves the cursor monotonically.
//
// [plan] - The forward-sweep planner and its placement intents. One pass,
// in input order, no backtracking: a segment either fits at the current
// cursor or is deferred toward the next region.
//
// [reroute] - The reroute cache that remembers deferrals across passes so
// re-planning converges instead of oscillating. Memory, Redis, and null
// backends.
//
// [measure] - Measurement bookkeeping: recorded heights, completeness
// selectors, and the rule-based height estimator.
//
// [driver] - Convergence driver gluing the above together: debounces
// measurement bursts, plans when complete and stable, and commits with
// last-completed-wins semantics.
//
// [document] / [template] - Input loading: JSON documents decompose into
// segments, TOML templates expand into region configurations.
//
// [preview] - Read-only plan renderers (SVG, JSON, Graphviz DOT).
//
// [archive] - Plan persistence (file and MongoDB backends).
//
// [observability] - Hook interfaces for planner, cache, and driver events,
// with a Prometheus implementation in observability/prom.
//
// [errors] - Coded errors shared across the module.
//
// # Quick Start
//
// Plan a document against a template:
//
//	tmpl, _ := template.Load("letter.toml")
//	doc, _ := document.Load("report.json")
//	segments := document.Decomposer{}.Decompose(doc, tmpl)
//
//	d := driver.New(driver.Config{}, reroute.NewMemoryStore())
//	d.SetRegions(tmpl.Regions())
//	d.SetSegments(segments)
//
//	p, err := d.Run(context.Background(), measure.NewRuleEstimator())
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...        # All tests
//	go test ./pkg/plan/...   # Specific package
//	go test -run Example     # Examples only
//
// [segment]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/segment
// [region]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/region
// [plan]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/plan
// [reroute]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/reroute
// [measure]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/measure
// [driver]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/driver
// [document]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/document
// [template]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/template
// [preview]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/preview
// [archive]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/archive
// [observability]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/observability
// [errors]: https://pkg.go.dev/github.com/jdalgard/pageplan/pkg/errors
package pkg
