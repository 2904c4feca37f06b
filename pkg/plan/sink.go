package plan

import (
	"github.com/charmbracelet/log"

	"github.com/jdalgard/pageplan/pkg/segment"
)

// Sink receives per-segment diagnostics during a pass. It is strictly an
// observer: implementations must not mutate their arguments, and running with
// any sink must produce the same plan as running with none.
type Sink interface {
	OnPassStart(segments, regions int)
	OnPlace(seg segment.Descriptor, intent Place)
	OnDefer(seg segment.Descriptor, intent Defer)
	OnPassEnd(metrics Metrics)
}

// NoopSink is the default sink.
type NoopSink struct{}

func (NoopSink) OnPassStart(int, int)              {}
func (NoopSink) OnPlace(segment.Descriptor, Place) {}
func (NoopSink) OnDefer(segment.Descriptor, Defer) {}
func (NoopSink) OnPassEnd(Metrics)                 {}

// LogSink writes per-segment debug lines to a logger.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) OnPassStart(segments, regions int) {
	s.Logger.Debug("pass start", "segments", segments, "regions", regions)
}

func (s LogSink) OnPlace(seg segment.Descriptor, intent Place) {
	s.Logger.Debug("place",
		"segment", seg.Key().String(),
		"region", intent.Region,
		"top", intent.Top,
		"bottom", intent.Bottom,
		"reason", intent.Reason,
	)
}

func (s LogSink) OnDefer(seg segment.Descriptor, intent Defer) {
	s.Logger.Debug("defer",
		"segment", seg.Key().String(),
		"from", intent.From,
		"to", intent.To,
		"reason", intent.Reason,
	)
}

func (s LogSink) OnPassEnd(metrics Metrics) {
	s.Logger.Debug("pass end", "placed", metrics.Placed, "deferred", metrics.Deferred)
}

// Ensure both sinks implement Sink.
var (
	_ Sink = NoopSink{}
	_ Sink = LogSink{}
)
