package bus

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

// Bridge command IDs
const (
	CmdInfo  = 0x00
	CmdRead  = 0x01
	CmdWrite = 0x02
)

// Response status codes
const (
	StatusOK       = 0x00
	StatusBusFault = 0x01
	StatusRejected = 0x02
	StatusError    = 0xFF
)

// Protocol encodes bridge requests and decodes their responses. Addresses and
// values travel little-endian.
type Protocol struct {
	PacketSize int
}

// NewProtocol creates a protocol handler for packetSize byte packets.
func NewProtocol(packetSize int) *Protocol {
	return &Protocol{PacketSize: packetSize}
}

// EncodeInfo builds an info request.
func (p *Protocol) EncodeInfo() []byte {
	return []byte{CmdInfo}
}

// DecodeInfo parses an info response: [cmd][status][len][text].
func (p *Protocol) DecodeInfo(resp []byte) (string, error) {
	if err := checkHeader(resp, CmdInfo, 3); err != nil {
		return "", err
	}
	n := int(resp[2])
	if len(resp) < 3+n {
		return "", fmt.Errorf("bus: incomplete info string")
	}
	return string(resp[3 : 3+n]), nil
}

// EncodeRead builds a register read request.
func (p *Protocol) EncodeRead(addr uint32) []byte {
	cmd := make([]byte, 5)
	cmd[0] = CmdRead
	binary.LittleEndian.PutUint32(cmd[1:], addr)
	return cmd
}

// DecodeRead parses a register read response: [cmd][status][value].
func (p *Protocol) DecodeRead(resp []byte) (uint32, error) {
	if err := checkHeader(resp, CmdRead, 2); err != nil {
		return 0, err
	}
	if len(resp) < 6 {
		return 0, fmt.Errorf("bus: read response too short")
	}
	return binary.LittleEndian.Uint32(resp[2:6]), nil
}

// EncodeWrite builds a register write request.
func (p *Protocol) EncodeWrite(addr, value uint32) []byte {
	cmd := make([]byte, 9)
	cmd[0] = CmdWrite
	binary.LittleEndian.PutUint32(cmd[1:], addr)
	binary.LittleEndian.PutUint32(cmd[5:], value)
	return cmd
}

// DecodeWrite parses a register write response: [cmd][status].
func (p *Protocol) DecodeWrite(resp []byte) error {
	return checkHeader(resp, CmdWrite, 2)
}

// checkHeader validates the command echo and maps the status byte onto the
// errors a local core would have returned.
func checkHeader(resp []byte, cmd byte, min int) error {
	if len(resp) < min {
		return fmt.Errorf("bus: response too short")
	}
	if resp[0] != cmd {
		return fmt.Errorf("bus: invalid command ID: 0x%02X", resp[0])
	}
	switch resp[1] {
	case StatusOK:
		return nil
	case StatusBusFault:
		return fmt.Errorf("bus: bridge reported fault: %w", uart.ErrBadAddress)
	case StatusRejected:
		return fmt.Errorf("%w: %w", ErrRejected, uart.ErrConfiguration)
	default:
		return fmt.Errorf("bus: bridge error status 0x%02X", resp[1])
	}
}

// StatusFor maps a core error onto a response status byte.
func StatusFor(err error) byte {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, uart.ErrBadAddress):
		return StatusBusFault
	case errors.Is(err, uart.ErrConfiguration), errors.Is(err, ErrRejected):
		return StatusRejected
	default:
		return StatusError
	}
}
