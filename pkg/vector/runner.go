package vector

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/exp/slices"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/bus"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

// DefaultMaxCycles bounds a run without an end record.
const DefaultMaxCycles = 1 << 24

// ErrTimeout is returned when a run without an end record never goes idle.
var ErrTimeout = errors.New("vector: core did not go idle")

// Runner replays stimulus against a core.
type Runner struct {
	// Core is clocked by the runner and receives RX line stimulus.
	Core *uart.Core
	// Bus carries register stimulus; defaults to a SimBus on Core.
	Bus bus.Bus
	// MaxCycles bounds runs without an end record.
	MaxCycles uint64
	// Observe, when set, sees the pins after every tick.
	Observe func(uart.Signals)
	Logger  *slog.Logger
}

// Run replays stimulus against core through a direct bus.
func Run(core *uart.Core, stimulus []Record) ([]Record, error) {
	r := &Runner{Core: core}
	return r.Run(stimulus)
}

// lineEvent is a scheduled RX level change produced by a frame record.
type lineEvent struct {
	cycle uint64
	level bool
}

// Run applies stimulus cycle by cycle and returns the response trace. At
// each cycle, scheduled RX line changes apply first, then that cycle's
// stimulus records in file order, then the core ticks. Cycles in both
// stimulus and trace count from the core's cycle at entry.
func (r *Runner) Run(stimulus []Record) ([]Record, error) {
	if r.Core == nil {
		return nil, fmt.Errorf("vector: runner has no core")
	}
	b := r.Bus
	if b == nil {
		b = bus.NewSimBus(r.Core)
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	limit := r.MaxCycles
	if limit == 0 {
		limit = DefaultMaxCycles
	}

	stim := make([]Record, 0, len(stimulus))
	for _, rec := range stimulus {
		if rec.IsStimulus() {
			stim = append(stim, rec)
		}
	}
	slices.SortStableFunc(stim, func(x, y Record) int { return cmp.Compare(x.Cycle, y.Cycle) })

	var (
		trace   []Record
		pending []lineEvent
		next    int
		base    = r.Core.Cycle()
		tx      = r.Core.TX()
		irq     = r.Core.IRQ()
	)
	for cycle := uint64(0); ; cycle++ {
		for len(pending) > 0 && pending[0].cycle <= cycle {
			r.Core.SetRX(pending[0].level)
			pending = pending[1:]
		}

		ended := false
		for next < len(stim) && stim[next].Cycle == cycle {
			rec := stim[next]
			next++
			switch rec.Kind {
			case KindWrite:
				if err := b.Write(rec.Reg, rec.Value); err != nil {
					logger.Debug("write rejected", "cycle", cycle, "reg", uart.RegisterName(rec.Reg), "err", err)
					trace = append(trace, Record{Cycle: cycle, Kind: KindNak, Reg: rec.Reg})
				}
			case KindRead:
				v, err := b.Read(rec.Reg)
				if err != nil {
					logger.Debug("read faulted", "cycle", cycle, "reg", uart.RegisterName(rec.Reg), "err", err)
					trace = append(trace, Record{Cycle: cycle, Kind: KindNak, Reg: rec.Reg})
					continue
				}
				trace = append(trace, ReadResult(cycle, rec.Reg, v))
			case KindLine:
				r.Core.SetRX(rec.Value != 0)
			case KindFrame:
				events, err := frameEvents(r.Core.Config(), rec)
				if err != nil {
					return trace, fmt.Errorf("vector: @%d: %w", cycle, err)
				}
				pending = mergeEvents(pending, events)
				for len(pending) > 0 && pending[0].cycle <= cycle {
					r.Core.SetRX(pending[0].level)
					pending = pending[1:]
				}
			case KindEnd:
				ended = true
			}
		}
		if ended {
			return trace, nil
		}

		if next >= len(stim) && len(pending) == 0 && (r.Core.Idle() || !r.Core.Enabled()) {
			return trace, nil
		}
		if cycle >= limit {
			return trace, fmt.Errorf("%w after %d cycles", ErrTimeout, cycle)
		}

		s := r.Core.Tick()
		if r.Observe != nil {
			r.Observe(s)
		}
		at := s.Cycle - base
		if s.TX != tx {
			trace = append(trace, Level(at, KindTX, s.TX))
			tx = s.TX
		}
		if s.IRQ != irq {
			trace = append(trace, Level(at, KindIRQ, s.IRQ))
			irq = s.IRQ
		}
	}
}

// frameEvents expands a frame record into RX line changes using the active
// format and bit period. The line always returns high after the frame.
func frameEvents(cfg uart.Config, rec Record) ([]lineEvent, error) {
	f := cfg.Format
	levels := f.Encode(uint16(rec.Value) & f.DataMask())
	if rec.BadParity {
		if f.Parity == frame.ParityNone {
			return nil, fmt.Errorf("badparity needs a parity bit in format %s", f)
		}
		i := 1 + f.DataBits
		levels[i] = !levels[i]
	}
	if rec.BadStop {
		levels[len(levels)-f.StopBits] = false
	}
	levels = append(levels, true)

	var events []lineEvent
	for _, e := range frame.Edges(levels, rec.Cycle, cfg.BitPeriod()) {
		events = append(events, lineEvent{cycle: e.Time, level: e.Level})
	}
	return events, nil
}

func mergeEvents(a, b []lineEvent) []lineEvent {
	out := append(append([]lineEvent(nil), a...), b...)
	slices.SortStableFunc(out, func(x, y lineEvent) int { return cmp.Compare(x.cycle, y.cycle) })
	return out
}
