package vector

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// Mismatch is one difference between expected and actual responses. A nil
// side means the record is missing there.
type Mismatch struct {
	Index    int
	Expected *Record
	Actual   *Record
}

func (m Mismatch) String() string {
	switch {
	case m.Expected == nil:
		return fmt.Sprintf("#%d: unexpected %s", m.Index, m.Actual)
	case m.Actual == nil:
		return fmt.Sprintf("#%d: missing %s", m.Index, m.Expected)
	default:
		return fmt.Sprintf("#%d: expected %s, got %s", m.Index, m.Expected, m.Actual)
	}
}

// Responses filters out stimulus records.
func Responses(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if !r.IsStimulus() {
			out = append(out, r)
		}
	}
	return out
}

// Compare matches the response records of expected and actual in order.
// Stimulus records on either side are ignored, so an expected file may
// interleave stimulus and responses.
func Compare(expected, actual []Record) []Mismatch {
	exp, act := Responses(expected), Responses(actual)
	var out []Mismatch
	n := max(len(exp), len(act))
	for i := 0; i < n; i++ {
		var e, a *Record
		if i < len(exp) {
			e = &exp[i]
		}
		if i < len(act) {
			a = &act[i]
		}
		if e != nil && a != nil && *e == *a {
			continue
		}
		out = append(out, Mismatch{Index: i, Expected: e, Actual: a})
	}
	return out
}

// TXEdges extracts TX transitions from a trace.
func TXEdges(trace []Record) []frame.Edge {
	var edges []frame.Edge
	for _, r := range trace {
		if r.Kind == KindTX {
			edges = append(edges, frame.Edge{Time: r.Cycle, Level: r.Value != 0})
		}
	}
	return edges
}

// DecodeTX decodes the TX transitions of a trace with the reference decoder.
// end bounds the trace; frames whose stop bit lies beyond it are dropped.
func DecodeTX(trace []Record, f frame.Format, bitPeriod, end uint64) []frame.Frame {
	return f.Decode(TXEdges(trace), bitPeriod, end)
}
