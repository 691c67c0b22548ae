package bus

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubEndpoints stands in for the bulk endpoints of a bridge. A nil reply
// makes the IN side block until the context expires.
type stubEndpoints struct {
	written []byte
	reply   []byte
}

func (s *stubEndpoints) WriteContext(ctx context.Context, buf []byte) (int, error) {
	s.written = append([]byte(nil), buf...)
	return len(buf), nil
}

func (s *stubEndpoints) ReadContext(ctx context.Context, buf []byte) (int, error) {
	if s.reply == nil {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return copy(buf, s.reply), nil
}

func newStubTransport(ep *stubEndpoints) *USBTransport {
	return &USBTransport{epOut: ep, epIn: ep, packetSize: DefaultPacketSize, timeout: DefaultTimeout}
}

func TestUSBTransportPadsAndReads(t *testing.T) {
	ep := &stubEndpoints{reply: []byte{CmdInfo, StatusOK, 0}}
	tr := newStubTransport(ep)

	resp, err := tr.WriteRead([]byte{CmdInfo})
	if err != nil {
		t.Fatalf("WriteRead: %v", err)
	}
	if len(ep.written) != DefaultPacketSize || ep.written[0] != CmdInfo {
		t.Fatalf("wrote % X, want one padded INFO packet", ep.written)
	}
	if len(resp) != 3 || resp[1] != StatusOK {
		t.Fatalf("response = % X", resp)
	}
	if _, err := tr.WriteRead(make([]byte, DefaultPacketSize+1)); err == nil {
		t.Fatal("oversized command accepted")
	}
}

func TestUSBTransportTimesOutOnSilentBridge(t *testing.T) {
	tr := newStubTransport(&stubEndpoints{})
	tr.SetTimeout(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := tr.WriteRead([]byte{CmdRead, 0, 0, 0, 0})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("WriteRead error = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WriteRead did not honour its timeout")
	}
}

func TestDiscoverInterfacesIncludesSimulator(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	found, err := DiscoverInterfaces(ctx)
	if err != nil {
		t.Skipf("USB enumeration unavailable: %v", err)
	}
	if len(found) == 0 || found[len(found)-1].Kind != InterfaceKindSim {
		t.Fatalf("simulator entry missing: %+v", found)
	}
	for _, info := range found {
		t.Logf("  %s", info.Label())
	}
}

// Integration test - only runs with a bridge attached
func TestUSBTransportIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	transport, err := NewUSBTransport(VendorIDPidCodes, ProductIDUARTBrdg)
	if err != nil {
		t.Skipf("No bridge hardware found: %v", err)
	}
	b := NewPacketBus(transport)
	defer b.Close()

	info, err := b.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	t.Logf("Bridge: %s (packet size %d)", info, transport.PacketSize())
}
