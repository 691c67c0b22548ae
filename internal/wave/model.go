// Package wave renders captured UART line activity in a Gio window.
package wave

import (
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// Trace is one named digital line.
type Trace struct {
	Name  string
	Edges []frame.Edge
}

// Segment is a span of constant level, [From, To).
type Segment struct {
	From, To uint64
	High     bool
}

// Segments turns a transition list into constant-level spans covering
// [0, end). The line idles high before the first edge; edges at or beyond
// end are ignored.
func Segments(edges []frame.Edge, end uint64) []Segment {
	var out []Segment
	level := true
	from := uint64(0)
	for _, e := range edges {
		if e.Time >= end {
			break
		}
		if e.Level == level {
			continue
		}
		if e.Time > from {
			out = append(out, Segment{From: from, To: e.Time, High: level})
		}
		from, level = e.Time, e.Level
	}
	if end > from {
		out = append(out, Segment{From: from, To: end, High: level})
	}
	return out
}

// Window is the visible cycle range.
type Window struct {
	Start, Span uint64
	End         uint64 // length of the capture
}

// Zoom scales the span around its centre, keeping at least minSpan cycles
// and never more than the capture.
func (w *Window) Zoom(factor float64) {
	const minSpan = 16
	centre := w.Start + w.Span/2
	span := uint64(float64(w.Span) * factor)
	if span < minSpan {
		span = minSpan
	}
	if w.End > 0 && span > w.End {
		span = w.End
	}
	w.Span = span
	if centre < span/2 {
		w.Start = 0
	} else {
		w.Start = centre - span/2
	}
	w.clamp()
}

// Pan shifts the window by a fraction of its span.
func (w *Window) Pan(fraction float64) {
	delta := int64(float64(w.Span) * fraction)
	if delta < 0 && uint64(-delta) > w.Start {
		w.Start = 0
	} else {
		w.Start = uint64(int64(w.Start) + delta)
	}
	w.clamp()
}

func (w *Window) clamp() {
	if w.End > w.Span && w.Start > w.End-w.Span {
		w.Start = w.End - w.Span
	}
	if w.End <= w.Span {
		w.Start = 0
	}
}

// Clip restricts segments to the window, in window-relative cycles.
func (w Window) Clip(segs []Segment) []Segment {
	var out []Segment
	stop := w.Start + w.Span
	for _, s := range segs {
		if s.To <= w.Start || s.From >= stop {
			continue
		}
		from, to := max(s.From, w.Start), min(s.To, stop)
		out = append(out, Segment{From: from - w.Start, To: to - w.Start, High: s.High})
	}
	return out
}
