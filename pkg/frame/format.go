// Package frame describes the asynchronous serial frame layout and provides a
// reference encoder/decoder that is independent of the UART core.
//
// A frame is one start bit (low), DataBits data bits sent LSB first, an
// optional parity bit and StopBits stop bits (high). The idle line is high.
package frame

import (
	"fmt"
	"strings"
)

// Parity selects the parity bit mode.
type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

var parityNames = map[Parity]string{
	ParityNone: "none",
	ParityEven: "even",
	ParityOdd:  "odd",
}

func (p Parity) String() string {
	if name, ok := parityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Parity(%d)", p)
}

// Letter returns the conventional single-letter code (N, E, O).
func (p Parity) Letter() string {
	switch p {
	case ParityNone:
		return "N"
	case ParityEven:
		return "E"
	case ParityOdd:
		return "O"
	}
	return "?"
}

// ParseParity accepts "none", "even", "odd" or their letters.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none":
		return ParityNone, nil
	case "e", "even":
		return ParityEven, nil
	case "o", "odd":
		return ParityOdd, nil
	}
	return 0, fmt.Errorf("frame: unknown parity %q", s)
}

// Limits on the supported frame layout.
const (
	MinDataBits = 5
	MaxDataBits = 9
)

// Format is the frame layout shared by the transmitter and receiver.
type Format struct {
	DataBits int
	Parity   Parity
	StopBits int
}

// Format8N1 is the ubiquitous 8 data bits, no parity, 1 stop bit layout.
var Format8N1 = Format{DataBits: 8, Parity: ParityNone, StopBits: 1}

// Validate checks the layout against the supported ranges.
func (f Format) Validate() error {
	if f.DataBits < MinDataBits || f.DataBits > MaxDataBits {
		return fmt.Errorf("frame: data bits must be %d-%d, got %d", MinDataBits, MaxDataBits, f.DataBits)
	}
	if _, ok := parityNames[f.Parity]; !ok {
		return fmt.Errorf("frame: invalid parity mode %d", f.Parity)
	}
	if f.StopBits != 1 && f.StopBits != 2 {
		return fmt.Errorf("frame: stop bits must be 1 or 2, got %d", f.StopBits)
	}
	return nil
}

// Bits returns the total number of bit periods in one frame.
func (f Format) Bits() int {
	n := 1 + f.DataBits + f.StopBits
	if f.Parity != ParityNone {
		n++
	}
	return n
}

// DataMask masks a value down to DataBits bits.
func (f Format) DataMask() uint16 {
	return uint16(1)<<uint(f.DataBits) - 1
}

func (f Format) String() string {
	return fmt.Sprintf("%d%s%d", f.DataBits, f.Parity.Letter(), f.StopBits)
}

// ParseFormat parses the compact "8N1" notation.
func ParseFormat(s string) (Format, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return Format{}, fmt.Errorf("frame: format %q must look like 8N1", s)
	}
	p, err := ParseParity(s[1:2])
	if err != nil {
		return Format{}, err
	}
	f := Format{
		DataBits: int(s[0] - '0'),
		Parity:   p,
		StopBits: int(s[2] - '0'),
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// ParityBit returns the parity bit value for data under the format. The
// result is meaningless for ParityNone.
func (f Format) ParityBit(data uint16) bool {
	ones := 0
	for i := 0; i < f.DataBits; i++ {
		if data&(1<<uint(i)) != 0 {
			ones++
		}
	}
	odd := ones%2 == 1
	if f.Parity == ParityOdd {
		return !odd
	}
	return odd
}
