// Package baud derives the oversampled bit-timing tick shared by the transmit
// and receive paths of the UART core.
//
// The generator counts reference-clock cycles and emits one tick every
// divisor cycles. Both serial paths consume the same tick stream and keep
// their own sub-counters, so one bit period is Oversample ticks long.
package baud

import (
	"errors"
	"fmt"
	"math"
)

// Oversample is the number of generator ticks per bit period.
const Oversample = 16

// ErrZeroDivisor is returned when a divisor of zero is requested.
var ErrZeroDivisor = errors.New("baud: divisor must be at least 1")

// Divisor computes the integer divisor that makes the tick rate closest to
// baud × Oversample for the given reference clock.
func Divisor(clockHz, baud uint32) (uint32, error) {
	if clockHz == 0 {
		return 0, fmt.Errorf("baud: clock frequency must be positive")
	}
	if baud == 0 {
		return 0, fmt.Errorf("baud: baud rate must be positive")
	}
	ticks := float64(baud) * Oversample
	div := math.Round(float64(clockHz) / ticks)
	if div < 1 {
		return 0, fmt.Errorf("baud: %d baud is too fast for a %d Hz clock", baud, clockHz)
	}
	if div > math.MaxUint32 {
		return 0, fmt.Errorf("baud: %d baud is too slow for a %d Hz clock", baud, clockHz)
	}
	return uint32(div), nil
}

// ActualBaud reports the bit rate a divisor really produces.
func ActualBaud(clockHz, divisor uint32) float64 {
	if divisor == 0 {
		return 0
	}
	return float64(clockHz) / (float64(divisor) * Oversample)
}

// ErrorPercent reports the relative deviation of the achieved rate from the
// requested one, in percent.
func ErrorPercent(clockHz, baud, divisor uint32) float64 {
	if baud == 0 {
		return 0
	}
	return (ActualBaud(clockHz, divisor) - float64(baud)) / float64(baud) * 100
}

// BitPeriod returns the number of reference cycles in one bit.
func BitPeriod(divisor uint32) uint64 {
	return uint64(divisor) * Oversample
}

// Generator is a free-running cycle counter producing the oversampled tick.
type Generator struct {
	divisor uint32
	count   uint32
}

// NewGenerator returns a generator with the given divisor. A zero divisor is
// treated as 1.
func NewGenerator(divisor uint32) *Generator {
	if divisor == 0 {
		divisor = 1
	}
	return &Generator{divisor: divisor}
}

// Divisor returns the active divisor.
func (g *Generator) Divisor() uint32 {
	return g.divisor
}

// SetDivisor replaces the divisor and restarts the cycle count. Callers are
// responsible for only doing so while both serial paths are idle.
func (g *Generator) SetDivisor(divisor uint32) error {
	if divisor == 0 {
		return ErrZeroDivisor
	}
	g.divisor = divisor
	g.count = 0
	return nil
}

// Reset restarts the cycle count without touching the divisor.
func (g *Generator) Reset() {
	g.count = 0
}

// Clock advances one reference-clock cycle and reports whether a tick fired.
func (g *Generator) Clock() bool {
	g.count++
	if g.count >= g.divisor {
		g.count = 0
		return true
	}
	return false
}
