package uart

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/baud"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/fifo"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// TxState is the frame position of the transmit shift register.
type TxState uint8

const (
	TxIdle TxState = iota
	TxStart
	TxData
	TxParity
	TxStop
)

var txStateNames = map[TxState]string{
	TxIdle:   "Idle",
	TxStart:  "SendingStart",
	TxData:   "SendingData",
	TxParity: "SendingParity",
	TxStop:   "SendingStop",
}

func (s TxState) String() string {
	if name, ok := txStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TxState(%d)", s)
}

// Transmitter serialises queued words onto the TX line. It advances only on
// baud generator ticks; every bit holds the line for baud.Oversample ticks.
type Transmitter struct {
	format frame.Format
	queue  *fifo.Queue

	state  TxState
	shift  uint16
	parity bool
	bit    int // index within the data or stop bits
	phase  int // ticks left in the current bit
	line   bool

	sent uint64
}

// NewTransmitter returns an idle transmitter draining queue.
func NewTransmitter(format frame.Format, queue *fifo.Queue) *Transmitter {
	return &Transmitter{format: format, queue: queue, line: true}
}

// State reports the current frame position.
func (t *Transmitter) State() TxState { return t.state }

// Idle reports whether no frame is in flight.
func (t *Transmitter) Idle() bool { return t.state == TxIdle }

// Line returns the level currently driven on TX.
func (t *Transmitter) Line() bool { return t.line }

// Sent returns the number of frames completed since construction.
func (t *Transmitter) Sent() uint64 { return t.sent }

// Format returns the active frame layout.
func (t *Transmitter) Format() frame.Format { return t.format }

// SetFormat changes the frame layout. It is refused mid-frame.
func (t *Transmitter) SetFormat(f frame.Format) error {
	if !t.Idle() {
		return configError("format", "transmitter is busy", nil)
	}
	t.format = f
	return nil
}

// Reset abandons any frame in flight and returns the line to idle.
func (t *Transmitter) Reset() {
	t.state = TxIdle
	t.shift = 0
	t.parity = false
	t.bit = 0
	t.phase = 0
	t.line = true
}

// Tick consumes one generator tick and reports whether the line changed.
func (t *Transmitter) Tick() bool {
	prev := t.line
	if t.state == TxIdle {
		t.load()
		return t.line != prev
	}
	t.phase--
	if t.phase <= 0 {
		t.advance()
	}
	return t.line != prev
}

// load starts a new frame if a word is waiting.
func (t *Transmitter) load() {
	e, ok := t.queue.Pop()
	if !ok {
		t.state = TxIdle
		t.line = true
		return
	}
	data := e.Data & t.format.DataMask()
	t.shift = data
	t.parity = t.format.ParityBit(data)
	t.state = TxStart
	t.bit = 0
	t.line = false
	t.phase = baud.Oversample
}

func (t *Transmitter) advance() {
	switch t.state {
	case TxStart:
		t.state = TxData
		t.bit = 0
		t.emitData()
	case TxData:
		t.bit++
		if t.bit < t.format.DataBits {
			t.emitData()
		} else if t.format.Parity != frame.ParityNone {
			t.state = TxParity
			t.line = t.parity
		} else {
			t.enterStop()
		}
	case TxParity:
		t.enterStop()
	case TxStop:
		t.bit++
		if t.bit >= t.format.StopBits {
			t.sent++
			// Back-to-back: the next start bit follows the last stop bit
			// without an idle gap.
			t.load()
			return
		}
	}
	t.phase = baud.Oversample
}

func (t *Transmitter) emitData() {
	t.line = t.shift&1 != 0
	t.shift >>= 1
}

func (t *Transmitter) enterStop() {
	t.state = TxStop
	t.bit = 0
	t.line = true
}
