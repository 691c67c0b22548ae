package bus

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

func newCore(t *testing.T) *uart.Core {
	t.Helper()
	cfg := uart.DefaultConfig()
	cfg.Divisor = 1
	c, err := uart.NewCore(*cfg)
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	return c
}

// exercise runs the same register sequence against any Bus.
func exercise(t *testing.T, b Bus) {
	t.Helper()
	if err := b.Write(uart.RegDivisor, 5); err != nil {
		t.Fatalf("write DIVISOR: %v", err)
	}
	if v, err := b.Read(uart.RegDivisor); err != nil || v != 5 {
		t.Fatalf("read DIVISOR = %d, %v; want 5", v, err)
	}
	if err := b.Write(uart.RegControl, uart.ResetControl|uart.ControlEnable); err != nil {
		t.Fatalf("enable: %v", err)
	}

	err := b.Write(uart.RegDivisor, 9)
	if !errors.Is(err, uart.ErrConfiguration) {
		t.Fatalf("DIVISOR write while enabled = %v, want ErrConfiguration", err)
	}
	if _, err := b.Read(0x40); !errors.Is(err, uart.ErrBadAddress) {
		t.Fatalf("read 0x40 = %v, want ErrBadAddress", err)
	}
	if v, err := b.Read(uart.RegStatus); err != nil || uart.Flags(v)&uart.FlagTxEmpty == 0 {
		t.Fatalf("STATUS = 0x%X, %v; want tx_empty", v, err)
	}
}

func TestSimBus(t *testing.T) {
	b := NewSimBus(newCore(t))
	var seen []Access
	b.OnAccess = func(a Access) { seen = append(seen, a) }

	exercise(t, b)

	if b.Accesses() != len(seen) || len(seen) != 6 {
		t.Fatalf("hook saw %d accesses, bus counted %d", len(seen), b.Accesses())
	}
	last := b.LastAccess()
	if last.Write || last.Addr != uart.RegStatus || last.Err != nil {
		t.Fatalf("last access = %+v", last)
	}
	if !seen[3].Write || !errors.Is(seen[3].Err, uart.ErrConfiguration) {
		t.Fatalf("rejected write recorded as %+v", seen[3])
	}
}

func TestPacketBusOverSimTransport(t *testing.T) {
	tr := NewSimTransport(newCore(t))
	b := NewPacketBus(tr)

	info, err := b.Info()
	if err != nil || info != SimInfo {
		t.Fatalf("Info = %q, %v", info, err)
	}
	exercise(t, b)

	if err := b.Write(uart.RegDivisor, 9); !errors.Is(err, ErrRejected) {
		t.Fatalf("rejected write = %v, want ErrRejected", err)
	}
	if got := tr.Served(); got != 8 {
		t.Fatalf("served %d packets, want 8", got)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := b.Read(uart.RegStatus); err == nil {
		t.Fatal("read after Close should fail")
	}
}

func TestSimTransportMalformed(t *testing.T) {
	tr := NewSimTransport(newCore(t))
	tests := []struct {
		name string
		cmd  []byte
		want []byte
	}{
		{"short read", []byte{CmdRead, 0x00}, []byte{CmdRead, StatusError}},
		{"short write", []byte{CmdWrite, 0, 0, 0, 0}, []byte{CmdWrite, StatusError}},
		{"unknown", []byte{0x7E}, []byte{0x7E, StatusError}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tr.WriteRead(tt.cmd)
			if err != nil {
				t.Fatalf("WriteRead: %v", err)
			}
			if string(resp) != string(tt.want) {
				t.Errorf("resp = %v, want %v", resp, tt.want)
			}
		})
	}
	if _, err := tr.WriteRead(nil); err == nil {
		t.Fatal("empty command should fail")
	}
}

func TestClassifyUSBDevice(t *testing.T) {
	info, ok := classifyUSBDevice(0x0403, 0x6014)
	if !ok || info.Kind != InterfaceKindFTDI {
		t.Fatalf("FT232H classified as %+v, %v", info, ok)
	}
	if _, ok := classifyUSBDevice(0x2E8A, 0x000C); ok {
		t.Fatal("unrelated probe should not be classified as a bridge")
	}
	if l := (InterfaceInfo{Kind: InterfaceKindBridge, VendorID: 0x1209, ProductID: 1}).Label(); l != "uart-bridge (1209:0001)" {
		t.Fatalf("Label = %q", l)
	}
}
