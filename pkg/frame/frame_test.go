package frame

import "testing"

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
	}{
		{"8N1", Format{8, ParityNone, 1}},
		{"7e2", Format{7, ParityEven, 2}},
		{"9O1", Format{9, ParityOdd, 1}},
		{"5N2", Format{5, ParityNone, 2}},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFormat(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		if got.String() != tc.want.String() {
			t.Fatalf("String() = %s, want %s", got.String(), tc.want.String())
		}
	}

	for _, bad := range []string{"4N1", "8X1", "8N3", "10N1", ""} {
		if _, err := ParseFormat(bad); err == nil {
			t.Fatalf("ParseFormat(%q) expected error", bad)
		}
	}
}

func TestParityBit(t *testing.T) {
	even := Format{DataBits: 8, Parity: ParityEven, StopBits: 1}
	odd := Format{DataBits: 8, Parity: ParityOdd, StopBits: 1}

	// 0x41 has two ones.
	if even.ParityBit(0x41) {
		t.Fatal("even parity of 0x41 should be 0")
	}
	if !odd.ParityBit(0x41) {
		t.Fatal("odd parity of 0x41 should be 1")
	}
	// 0x07 has three ones.
	if !even.ParityBit(0x07) {
		t.Fatal("even parity of 0x07 should be 1")
	}
	if odd.ParityBit(0x07) {
		t.Fatal("odd parity of 0x07 should be 0")
	}
}

func TestEncode8N1(t *testing.T) {
	got := Format8N1.Encode(0x41)
	want := []bool{false, true, false, false, false, false, false, true, false, true}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEncodeDecodeAllFormats(t *testing.T) {
	for bits := MinDataBits; bits <= MaxDataBits; bits++ {
		for _, p := range []Parity{ParityNone, ParityEven, ParityOdd} {
			for stop := 1; stop <= 2; stop++ {
				f := Format{DataBits: bits, Parity: p, StopBits: stop}
				for data := uint16(0); data <= f.DataMask(); data += 7 {
					fr, err := f.DecodeLevels(f.Encode(data))
					if err != nil {
						t.Fatalf("%s: decode 0x%X: %v", f, data, err)
					}
					if fr.Data != data || !fr.Valid() {
						t.Fatalf("%s: round trip 0x%X -> %+v", f, data, fr)
					}
				}
			}
		}
	}
}

func TestDecodeLevelsFlagsErrors(t *testing.T) {
	f := Format{DataBits: 8, Parity: ParityEven, StopBits: 1}
	levels := f.Encode(0x55)
	levels[len(levels)-1] = false
	fr, err := f.DecodeLevels(levels)
	if err != nil {
		t.Fatalf("DecodeLevels: %v", err)
	}
	if !fr.FramingErr {
		t.Fatal("expected framing error")
	}

	levels = f.Encode(0x55)
	levels[9] = !levels[9]
	fr, _ = f.DecodeLevels(levels)
	if !fr.ParityErr {
		t.Fatal("expected parity error")
	}

	if _, err := f.DecodeLevels([]bool{true}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestDecodeEdgesBackToBack(t *testing.T) {
	const period = 16
	levels := append(Format8N1.Encode(0x41), Format8N1.Encode(0x42)...)
	edges := Edges(levels, 100, period)

	frames := Format8N1.Decode(edges, period, 100+uint64(len(levels))*period)
	if len(frames) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(frames))
	}
	if frames[0].Data != 0x41 || frames[1].Data != 0x42 {
		t.Fatalf("frames = %+v", frames)
	}
	if frames[0].Start != 100 || frames[1].Start != 100+10*period {
		t.Fatalf("frame starts = %d, %d", frames[0].Start, frames[1].Start)
	}
}

func TestDecodeIgnoresGlitch(t *testing.T) {
	edges := []Edge{{Time: 10, Level: false}, {Time: 12, Level: true}}
	if frames := Format8N1.Decode(edges, 16, 1000); len(frames) != 0 {
		t.Fatalf("glitch decoded as %+v", frames)
	}
}

func TestLevelAt(t *testing.T) {
	edges := []Edge{{Time: 5, Level: false}, {Time: 9, Level: true}}
	if !LevelAt(edges, 4) || LevelAt(edges, 5) || LevelAt(edges, 8) || !LevelAt(edges, 9) {
		t.Fatal("LevelAt returned wrong levels")
	}
}
