package bus

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

// SimInfo is the identification string served by SimTransport.
const SimInfo = "OpenTraceUART simulator"

// SimTransport answers bridge packets from an in-process core, the way the
// bridge firmware would.
type SimTransport struct {
	core *uart.Core

	mu     sync.Mutex
	closed bool
	served int
}

// NewSimTransport serves core.
func NewSimTransport(core *uart.Core) *SimTransport {
	return &SimTransport{core: core}
}

// WriteRead handles one request packet.
func (t *SimTransport) WriteRead(cmd []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, fmt.Errorf("bus: transport closed")
	}
	if len(cmd) == 0 {
		return nil, fmt.Errorf("bus: empty command")
	}
	t.served++

	switch cmd[0] {
	case CmdInfo:
		resp := []byte{CmdInfo, StatusOK, byte(len(SimInfo))}
		return append(resp, SimInfo...), nil
	case CmdRead:
		if len(cmd) < 5 {
			return []byte{CmdRead, StatusError}, nil
		}
		v, err := t.core.ReadReg(binary.LittleEndian.Uint32(cmd[1:5]))
		resp := make([]byte, 6)
		resp[0] = CmdRead
		resp[1] = StatusFor(err)
		binary.LittleEndian.PutUint32(resp[2:], v)
		return resp, nil
	case CmdWrite:
		if len(cmd) < 9 {
			return []byte{CmdWrite, StatusError}, nil
		}
		err := t.core.WriteReg(binary.LittleEndian.Uint32(cmd[1:5]), binary.LittleEndian.Uint32(cmd[5:9]))
		return []byte{CmdWrite, StatusFor(err)}, nil
	default:
		return []byte{cmd[0], StatusError}, nil
	}
}

// Served reports how many packets have been handled.
func (t *SimTransport) Served() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.served
}

// Close stops serving packets.
func (t *SimTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
