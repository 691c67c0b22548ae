package uart

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

func TestControlRoundTrip(t *testing.T) {
	for bits := frame.MinDataBits; bits <= frame.MaxDataBits; bits++ {
		for _, p := range []frame.Parity{frame.ParityNone, frame.ParityEven, frame.ParityOdd} {
			for stop := 1; stop <= 2; stop++ {
				want := Control{
					Enable:   bits%2 == 0,
					Format:   frame.Format{DataBits: bits, Parity: p, StopBits: stop},
					Loopback: stop == 2,
					IRQMask:  FlagRxReady | FlagOverrunError,
				}
				got, err := DecodeControl(want.Encode())
				if err != nil {
					t.Fatalf("DecodeControl(%s): %v", want, err)
				}
				if got != want {
					t.Fatalf("round trip: got %+v, want %+v", got, want)
				}
			}
		}
	}
}

func TestResetControlIs8N1(t *testing.T) {
	ctl, err := DecodeControl(ResetControl)
	if err != nil {
		t.Fatalf("DecodeControl: %v", err)
	}
	if ctl.Enable || ctl.Format != frame.Format8N1 || ctl.IRQMask != 0 {
		t.Fatalf("reset control decodes to %s", ctl)
	}
}

func TestDecodeControlRejects(t *testing.T) {
	for _, v := range []uint32{5 << 1, 6 << 1, 7 << 1, 3 << 4} {
		_, err := DecodeControl(v)
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) || cfgErr.Field != "CONTROL" {
			t.Fatalf("DecodeControl(0x%X) = %v, want CONTROL ConfigurationError", v, err)
		}
	}
}

func TestParseRegister(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
		err  bool
	}{
		{"CONTROL", RegControl, false},
		{"status", RegStatus, false},
		{"RxData", RegRxData, false},
		{"0x0c", RegTxData, false},
		{"8", RegDivisor, false},
		{"BAUD", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRegister(tt.in)
		if tt.err {
			if err == nil {
				t.Fatalf("ParseRegister(%q) should fail", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseRegister(%q) = 0x%X, %v; want 0x%X", tt.in, got, err, tt.want)
		}
	}
	if name := RegisterName(0x40); name != "0x40" {
		t.Fatalf("RegisterName(0x40) = %q", name)
	}
}

func TestFlagsString(t *testing.T) {
	if s := Flags(0).String(); s != "none" {
		t.Fatalf("Flags(0) = %q", s)
	}
	if s := (FlagTxEmpty | FlagParityError).String(); s != "tx_empty|parity_error" {
		t.Fatalf("String = %q", s)
	}
	if n := len(FlagNames()); n != 8 {
		t.Fatalf("FlagNames has %d entries", n)
	}
}

func TestStatusLatchAndMask(t *testing.T) {
	var s Status
	s.Raise(FlagRxReady | FlagOverrunError)
	if s.Sticky() != FlagOverrunError {
		t.Fatalf("Raise latched %s, want only overrun_error", s.Sticky())
	}
	if s.IRQ(FlagRxReady) {
		t.Fatal("IRQ asserted with an empty mask")
	}
	s.SetMask(FlagOverrunError)
	if !s.IRQ(0) {
		t.Fatal("IRQ not asserted for a latched, enabled flag")
	}
	s.Clear(FlagRxReady)
	if s.Sticky() != FlagOverrunError {
		t.Fatal("clearing a level bit touched the latches")
	}
	s.Clear(FlagOverrunError)
	if s.IRQ(0) {
		t.Fatal("IRQ still asserted after W1C")
	}
}

func TestStateNames(t *testing.T) {
	if TxStop.String() != "SendingStop" || RxDetectStart.String() != "DetectingStart" {
		t.Fatalf("state names: %s, %s", TxStop, RxDetectStart)
	}
	if s := TxState(42).String(); s != "TxState(42)" {
		t.Fatalf("unknown state = %q", s)
	}
}
