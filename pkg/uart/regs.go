package uart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// Register offsets (byte addressed, 32-bit words).
const (
	RegControl uint32 = 0x00
	RegStatus  uint32 = 0x04
	RegDivisor uint32 = 0x08
	RegTxData  uint32 = 0x0C
	RegRxData  uint32 = 0x10

	// RegSpan is the size of the register window.
	RegSpan uint32 = 0x14
)

// CONTROL fields.
const (
	ControlEnable   uint32 = 1 << 0
	ControlStop2    uint32 = 1 << 6
	ControlLoopback uint32 = 1 << 7

	controlWidthShift  = 1
	controlWidthMask   = 0x7
	controlParityShift = 4
	controlParityMask  = 0x3
	controlIRQShift    = 8
	controlIRQMask     = 0xFF

	// ResetControl is 8N1, disabled, no interrupts.
	ResetControl uint32 = 0x06
)

// RXDATA fields above the data bits.
const (
	RxDataFraming uint32 = 1 << 9
	RxDataParity  uint32 = 1 << 10
	rxDataMask    uint32 = 0x1FF
)

// Register describes one entry of the register map.
type Register struct {
	Offset      uint32
	Name        string
	Access      string
	Description string
}

// Registers is the register map in offset order.
var Registers = []Register{
	{RegControl, "CONTROL", "R/W", "enable, data width, parity, stop bits, loopback, IRQ enables"},
	{RegStatus, "STATUS", "R/W1C", "level flags and sticky error latches"},
	{RegDivisor, "DIVISOR", "R/W", "reference cycles per oversampled tick, writable while disabled"},
	{RegTxData, "TXDATA", "W", "push one word into the transmit queue"},
	{RegRxData, "RXDATA", "R", "pop one word from the receive queue"},
}

// RegisterByName looks a register up by case-insensitive name.
func RegisterByName(name string) (Register, bool) {
	for _, r := range Registers {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Register{}, false
}

// RegisterName returns the name for an offset, or its hex form.
func RegisterName(offset uint32) string {
	for _, r := range Registers {
		if r.Offset == offset {
			return r.Name
		}
	}
	return fmt.Sprintf("0x%02X", offset)
}

// ParseRegister accepts a register name or a numeric offset.
func ParseRegister(s string) (uint32, error) {
	if r, ok := RegisterByName(s); ok {
		return r.Offset, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("uart: unknown register %q", s)
	}
	return uint32(v), nil
}

// Control is the decoded CONTROL register.
type Control struct {
	Enable   bool
	Format   frame.Format
	Loopback bool
	IRQMask  Flags
}

// DecodeControl splits a CONTROL word into fields. Unsupported field codes
// yield a ConfigurationError.
func DecodeControl(v uint32) (Control, error) {
	width := int((v>>controlWidthShift)&controlWidthMask) + frame.MinDataBits
	if width > frame.MaxDataBits {
		return Control{}, configError("CONTROL", fmt.Sprintf("data width code %d is unsupported", width-frame.MinDataBits), nil)
	}
	parity := frame.Parity((v >> controlParityShift) & controlParityMask)
	if parity > frame.ParityOdd {
		return Control{}, configError("CONTROL", fmt.Sprintf("parity code %d is unsupported", parity), nil)
	}
	stop := 1
	if v&ControlStop2 != 0 {
		stop = 2
	}
	return Control{
		Enable:   v&ControlEnable != 0,
		Format:   frame.Format{DataBits: width, Parity: parity, StopBits: stop},
		Loopback: v&ControlLoopback != 0,
		IRQMask:  Flags((v >> controlIRQShift) & controlIRQMask),
	}, nil
}

// Encode packs the fields back into a CONTROL word.
func (c Control) Encode() uint32 {
	var v uint32
	if c.Enable {
		v |= ControlEnable
	}
	v |= (uint32(c.Format.DataBits-frame.MinDataBits) & controlWidthMask) << controlWidthShift
	v |= (uint32(c.Format.Parity) & controlParityMask) << controlParityShift
	if c.Format.StopBits == 2 {
		v |= ControlStop2
	}
	if c.Loopback {
		v |= ControlLoopback
	}
	v |= (uint32(c.IRQMask) & controlIRQMask) << controlIRQShift
	return v
}

func (c Control) String() string {
	state := "disabled"
	if c.Enable {
		state = "enabled"
	}
	s := fmt.Sprintf("%s %s irq=%s", state, c.Format, c.IRQMask)
	if c.Loopback {
		s += " loopback"
	}
	return s
}
