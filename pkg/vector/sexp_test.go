package vector

import (
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

func TestParseSexpString(t *testing.T) {
	input := `
(write 0 CONTROL 0x07)
(write 0 TXDATA 0x41)
(frame 10 0x55 badstop)
(read 400 STATUS)
(end 400)
`
	got, err := ParseSexpString(input)
	if err != nil {
		t.Fatalf("ParseSexpString: %v", err)
	}
	want := []Record{
		Write(0, uart.RegControl, 7),
		Write(0, uart.RegTxData, 0x41),
		{Cycle: 10, Kind: KindFrame, Value: 0x55, BadStop: true},
		Read(400, uart.RegStatus),
		{Cycle: 400, Kind: KindEnd},
	}
	if len(got) != len(want) {
		t.Fatalf("parsed %d records, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSexpRoundTrip(t *testing.T) {
	records := []Record{
		Write(0, uart.RegDivisor, 3),
		ReadResult(20, uart.RegRxData, 0x241),
		Level(30, KindTX, false),
		{Cycle: 31, Kind: KindNak, Reg: uart.RegDivisor},
	}
	var b strings.Builder
	if err := WriteSexp(&b, records); err != nil {
		t.Fatalf("WriteSexp: %v", err)
	}
	if !strings.HasPrefix(b.String(), "(write 0 DIVISOR 0x3)\n") {
		t.Fatalf("unexpected rendering:\n%s", b.String())
	}
	again, err := ParseSexpString(b.String())
	if err != nil {
		t.Fatalf("ParseSexpString(%q): %v", b.String(), err)
	}
	if len(again) != len(records) {
		t.Fatalf("round trip gave %d records", len(again))
	}
	for i := range records {
		if again[i] != records[i] {
			t.Errorf("record %d: %s -> %s", i, records[i], again[i])
		}
	}
}

func TestParseSexpErrors(t *testing.T) {
	for _, input := range []string{
		"(write)",
		"(write 0 CONTROL)",
		"(write 0 (CONTROL) 1)",
		"(bogus 0)",
	} {
		if _, err := ParseSexpString(input); err == nil {
			t.Errorf("ParseSexpString(%q) should fail", input)
		}
	}
}
