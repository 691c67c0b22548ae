package uart

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/baud"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// Default queue depths and reference clock.
const (
	DefaultDepth   = 16
	DefaultClockHz = 100_000_000
	DefaultBaud    = 115200
)

// Config holds the static parameters of a core instance.
type Config struct {
	// Timing
	ClockHz  uint32 // Reference clock feeding the baud generator
	BaudRate uint32 // Target bit rate, used when Divisor is zero
	Divisor  uint32 // Reference cycles per oversampled tick (0 = derive from ClockHz/BaudRate)

	// Frame layout
	Format frame.Format

	// Queue capacities (N_tx, N_rx)
	TxDepth int
	RxDepth int

	// Internal TX→RX connection and initial interrupt enables
	Loopback bool
	IRQMask  Flags
}

// DefaultConfig returns a 115200 baud 8N1 configuration on a 100 MHz clock.
func DefaultConfig() *Config {
	return &Config{
		ClockHz:  DefaultClockHz,
		BaudRate: DefaultBaud,
		Format:   frame.Format8N1,
		TxDepth:  DefaultDepth,
		RxDepth:  DefaultDepth,
	}
}

// Validate checks the configuration, fills in defaults and derives the
// divisor when only a baud rate is given.
func (c *Config) Validate() error {
	if c.TxDepth < 1 {
		c.TxDepth = DefaultDepth
	}
	if c.RxDepth < 1 {
		c.RxDepth = DefaultDepth
	}
	if c.Format.DataBits == 0 && c.Format.StopBits == 0 {
		c.Format = frame.Format8N1
	}
	if err := c.Format.Validate(); err != nil {
		return configError("format", "unsupported frame format", err)
	}
	if c.IRQMask&^AllFlags != 0 {
		return configError("irq mask", "unknown interrupt enable bits", nil)
	}

	if c.Divisor == 0 {
		div, err := baud.Divisor(c.ClockHz, c.BaudRate)
		if err != nil {
			return configError("divisor", "cannot derive divisor", err)
		}
		c.Divisor = div
	} else if c.ClockHz > 0 {
		c.BaudRate = uint32(math.Round(baud.ActualBaud(c.ClockHz, c.Divisor)))
	}
	return nil
}

// BitPeriod returns the number of reference cycles in one bit.
func (c Config) BitPeriod() uint64 {
	return baud.BitPeriod(c.Divisor)
}

// FramePeriod returns the number of reference cycles in one frame.
func (c Config) FramePeriod() uint64 {
	return c.BitPeriod() * uint64(c.Format.Bits())
}
