// Package vector reads, writes and replays cycle-stamped test vectors
// against a UART core: bus transactions and RX line activity in, TX line,
// IRQ and bus read results out.
package vector

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

// Kind names a record type.
type Kind string

const (
	KindWrite Kind = "write"
	KindRead  Kind = "read"
	KindLine  Kind = "line"
	KindFrame Kind = "frame"
	KindEnd   Kind = "end"
	KindNak   Kind = "nak"
	KindTX    Kind = "tx"
	KindIRQ   Kind = "irq"
)

// Record is one line of a vector file.
type Record struct {
	Cycle uint64
	Kind  Kind

	Reg   uint32 // write, read, nak
	Value uint32 // write value, read result, line/tx/irq level, frame data

	// HasValue marks a read record as a response carrying Value.
	HasValue bool

	// Frame stimulus corruption
	BadStop   bool
	BadParity bool
}

// Write is a bus write stimulus.
func Write(cycle uint64, reg, value uint32) Record {
	return Record{Cycle: cycle, Kind: KindWrite, Reg: reg, Value: value}
}

// Read is a bus read stimulus.
func Read(cycle uint64, reg uint32) Record {
	return Record{Cycle: cycle, Kind: KindRead, Reg: reg}
}

// ReadResult is a bus read response.
func ReadResult(cycle uint64, reg, value uint32) Record {
	return Record{Cycle: cycle, Kind: KindRead, Reg: reg, Value: value, HasValue: true}
}

// Level is a line, tx or irq record.
func Level(cycle uint64, kind Kind, high bool) Record {
	r := Record{Cycle: cycle, Kind: kind}
	if high {
		r.Value = 1
	}
	return r
}

// IsStimulus reports whether the record drives the core rather than
// describing its output.
func (r Record) IsStimulus() bool {
	switch r.Kind {
	case KindWrite, KindLine, KindFrame, KindEnd:
		return true
	case KindRead:
		return !r.HasValue
	default:
		return false
	}
}

// String renders the record in text vector syntax.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%d %s", r.Cycle, r.Kind)
	switch r.Kind {
	case KindWrite:
		fmt.Fprintf(&b, " %s 0x%X", uart.RegisterName(r.Reg), r.Value)
	case KindRead:
		fmt.Fprintf(&b, " %s", uart.RegisterName(r.Reg))
		if r.HasValue {
			fmt.Fprintf(&b, " 0x%X", r.Value)
		}
	case KindNak:
		fmt.Fprintf(&b, " %s", uart.RegisterName(r.Reg))
	case KindLine, KindTX, KindIRQ:
		fmt.Fprintf(&b, " %d", r.Value)
	case KindFrame:
		fmt.Fprintf(&b, " 0x%02X", r.Value)
		if r.BadStop {
			b.WriteString(" badstop")
		}
		if r.BadParity {
			b.WriteString(" badparity")
		}
	}
	return b.String()
}
