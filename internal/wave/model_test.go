package wave

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

func TestSegments(t *testing.T) {
	edges := frame.Edges(frame.Format8N1.Encode(0x41), 10, 16)
	segs := Segments(edges, 200)

	want := []Segment{
		{From: 0, To: 10, High: true},
		{From: 10, To: 26, High: false},
		{From: 26, To: 42, High: true},
		{From: 42, To: 122, High: false},
		{From: 122, To: 138, High: true},
		{From: 138, To: 154, High: false},
		{From: 154, To: 200, High: true},
	}
	if len(segs) != len(want) {
		t.Fatalf("segments = %+v", segs)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestSegmentsEdgeCases(t *testing.T) {
	if segs := Segments(nil, 50); len(segs) != 1 || segs[0] != (Segment{0, 50, true}) {
		t.Fatalf("idle line = %+v", segs)
	}
	edges := []frame.Edge{{Time: 0, Level: false}, {Time: 60, Level: true}}
	segs := Segments(edges, 50)
	if len(segs) != 1 || segs[0] != (Segment{0, 50, false}) {
		t.Fatalf("truncated = %+v", segs)
	}
}

func TestWindowZoomAndPan(t *testing.T) {
	w := Window{Span: 1000, End: 1000}
	w.Zoom(0.5)
	if w.Start != 250 || w.Span != 500 {
		t.Fatalf("after zoom in: %+v", w)
	}
	w.Pan(1)
	if w.Start != 500 {
		t.Fatalf("pan past the end should clamp: %+v", w)
	}
	w.Pan(-4)
	if w.Start != 0 {
		t.Fatalf("pan before the start should clamp: %+v", w)
	}
	w.Zoom(10)
	if w.Span != 1000 || w.Start != 0 {
		t.Fatalf("zoom out beyond capture: %+v", w)
	}
	w.Zoom(0.0001)
	if w.Span != 16 {
		t.Fatalf("minimum span = %d", w.Span)
	}
}

func TestWindowClip(t *testing.T) {
	w := Window{Start: 100, Span: 50, End: 1000}
	segs := []Segment{{0, 120, true}, {120, 130, false}, {130, 400, true}}
	got := w.Clip(segs)
	want := []Segment{{0, 20, true}, {20, 30, false}, {30, 50, true}}
	if len(got) != len(want) {
		t.Fatalf("clip = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("clip %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
