package uart

import "strings"

// Flags is the STATUS register bit set.
type Flags uint32

const (
	FlagTxEmpty Flags = 1 << iota
	FlagRxReady
	FlagRxFull
	FlagFramingError
	FlagParityError
	FlagOverrunError
	FlagTxFull
	FlagTxOverflow
)

const (
	// StickyFlags latch until written with 1.
	StickyFlags = FlagFramingError | FlagParityError | FlagOverrunError | FlagTxOverflow
	// LevelFlags follow queue occupancy.
	LevelFlags = FlagTxEmpty | FlagRxReady | FlagRxFull | FlagTxFull
	AllFlags   = StickyFlags | LevelFlags
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagTxEmpty, "tx_empty"},
	{FlagRxReady, "rx_ready"},
	{FlagRxFull, "rx_full"},
	{FlagFramingError, "framing_error"},
	{FlagParityError, "parity_error"},
	{FlagOverrunError, "overrun_error"},
	{FlagTxFull, "tx_full"},
	{FlagTxOverflow, "tx_overflow"},
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// FlagNames lists every flag name in bit order.
func FlagNames() []string {
	names := make([]string, len(flagNames))
	for i, fn := range flagNames {
		names[i] = fn.name
	}
	return names
}

// Status is the interrupt/status aggregator: sticky error latches plus the
// interrupt enable mask. Level flags are supplied by the caller on demand.
type Status struct {
	sticky Flags
	mask   Flags
}

// Raise latches sticky bits. Level bits are ignored.
func (s *Status) Raise(f Flags) {
	s.sticky |= f & StickyFlags
}

// Clear implements write-1-to-clear for sticky bits.
func (s *Status) Clear(w1c Flags) {
	s.sticky &^= w1c & StickyFlags
}

// Sticky returns the latched error bits.
func (s *Status) Sticky() Flags { return s.sticky }

// Mask returns the interrupt enable mask.
func (s *Status) Mask() Flags { return s.mask }

// SetMask replaces the interrupt enable mask.
func (s *Status) SetMask(m Flags) { s.mask = m & AllFlags }

// Flags merges the current level flags with the sticky latches.
func (s *Status) Flags(level Flags) Flags {
	return level&LevelFlags | s.sticky
}

// IRQ is the OR of every flag gated by its enable bit.
func (s *Status) IRQ(level Flags) bool {
	return s.Flags(level)&s.mask != 0
}

// Reset drops latches and enables.
func (s *Status) Reset() {
	s.sticky = 0
	s.mask = 0
}
