package uart

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/baud"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// RxState is the frame position of the receive shift register.
type RxState uint8

const (
	RxIdle RxState = iota
	RxDetectStart
	RxData
	RxParity
	RxStop
)

var rxStateNames = map[RxState]string{
	RxIdle:        "Idle",
	RxDetectStart: "DetectingStart",
	RxData:        "SamplingData",
	RxParity:      "SamplingParity",
	RxStop:        "SamplingStop",
}

func (s RxState) String() string {
	if name, ok := rxStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RxState(%d)", s)
}

// Received is a completed frame handed from the receiver to the core.
type Received struct {
	Data       uint16
	FramingErr bool
	ParityErr  bool
}

// Receiver reconstructs frames from the RX line. It samples the line on every
// generator tick to find the start edge, then samples each bit once at its
// centre.
type Receiver struct {
	format frame.Format

	state      RxState
	prev       bool
	phase      int // ticks until the next sampling point
	bit        int
	data       uint16
	parityErr  bool
	framingErr bool

	glitches uint64
}

// NewReceiver returns an idle receiver expecting a high line.
func NewReceiver(format frame.Format) *Receiver {
	return &Receiver{format: format, prev: true}
}

// State reports the current frame position.
func (r *Receiver) State() RxState { return r.state }

// Idle reports whether no frame is being received.
func (r *Receiver) Idle() bool { return r.state == RxIdle }

// Glitches counts start edges rejected as noise.
func (r *Receiver) Glitches() uint64 { return r.glitches }

// SetFormat changes the frame layout. It is refused mid-frame.
func (r *Receiver) SetFormat(f frame.Format) error {
	if !r.Idle() {
		return configError("format", "receiver is busy", nil)
	}
	r.format = f
	return nil
}

// Reset abandons any frame in progress. line is the current RX level, so a
// line already held low is not mistaken for a start edge.
func (r *Receiver) Reset(line bool) {
	r.state = RxIdle
	r.prev = line
	r.phase = 0
	r.bit = 0
	r.data = 0
	r.parityErr = false
	r.framingErr = false
}

// Tick consumes one generator tick with the sampled line level. It returns a
// frame when the last stop bit has been sampled.
func (r *Receiver) Tick(line bool) (Received, bool) {
	defer func() { r.prev = line }()

	if r.state == RxIdle {
		if r.prev && !line {
			r.state = RxDetectStart
			r.phase = baud.Oversample/2 - 1
		}
		return Received{}, false
	}

	r.phase--
	if r.phase > 0 {
		return Received{}, false
	}
	return r.sample(line)
}

func (r *Receiver) sample(line bool) (Received, bool) {
	r.phase = baud.Oversample
	switch r.state {
	case RxDetectStart:
		if line {
			r.state = RxIdle
			r.glitches++
			return Received{}, false
		}
		r.state = RxData
		r.bit = 0
		r.data = 0
		r.parityErr = false
		r.framingErr = false
	case RxData:
		if line {
			r.data |= 1 << uint(r.bit)
		}
		r.bit++
		if r.bit == r.format.DataBits {
			r.bit = 0
			if r.format.Parity != frame.ParityNone {
				r.state = RxParity
			} else {
				r.state = RxStop
			}
		}
	case RxParity:
		r.parityErr = line != r.format.ParityBit(r.data)
		r.state = RxStop
		r.bit = 0
	case RxStop:
		if !line {
			r.framingErr = true
		}
		r.bit++
		if r.bit < r.format.StopBits {
			return Received{}, false
		}
		r.state = RxIdle
		return Received{
			Data:       r.data,
			FramingErr: r.framingErr,
			ParityErr:  r.parityErr,
		}, true
	}
	return Received{}, false
}
