package frame

import "fmt"

// Encode returns the line levels of a complete frame carrying data, one
// entry per bit period starting with the start bit.
func (f Format) Encode(data uint16) []bool {
	data &= f.DataMask()
	levels := make([]bool, 0, f.Bits())
	levels = append(levels, false)
	for i := 0; i < f.DataBits; i++ {
		levels = append(levels, data&(1<<uint(i)) != 0)
	}
	if f.Parity != ParityNone {
		levels = append(levels, f.ParityBit(data))
	}
	for i := 0; i < f.StopBits; i++ {
		levels = append(levels, true)
	}
	return levels
}

// Frame is one decoded frame.
type Frame struct {
	Start      uint64 // cycle of the start-bit falling edge
	Data       uint16
	ParityErr  bool
	FramingErr bool
}

// Valid reports whether the frame passed every check.
func (fr Frame) Valid() bool {
	return !fr.ParityErr && !fr.FramingErr
}

// DecodeLevels decodes a frame from per-bit line levels as produced by Encode.
func (f Format) DecodeLevels(levels []bool) (Frame, error) {
	if len(levels) < f.Bits() {
		return Frame{}, fmt.Errorf("frame: need %d levels, got %d", f.Bits(), len(levels))
	}
	if levels[0] {
		return Frame{}, fmt.Errorf("frame: missing start bit")
	}
	var fr Frame
	for i := 0; i < f.DataBits; i++ {
		if levels[1+i] {
			fr.Data |= 1 << uint(i)
		}
	}
	pos := 1 + f.DataBits
	if f.Parity != ParityNone {
		fr.ParityErr = levels[pos] != f.ParityBit(fr.Data)
		pos++
	}
	for i := 0; i < f.StopBits; i++ {
		if !levels[pos+i] {
			fr.FramingErr = true
		}
	}
	return fr, nil
}

// Edge is a line transition at a reference-clock cycle.
type Edge struct {
	Time  uint64
	Level bool
}

// LevelAt returns the line level at cycle t given a transition list sorted by
// time. The line idles high before the first edge.
func LevelAt(edges []Edge, t uint64) bool {
	level := true
	for _, e := range edges {
		if e.Time > t {
			break
		}
		level = e.Level
	}
	return level
}

// Decode is the reference receiver: it finds every falling edge on an idle
// line and samples each bit at its centre using bitPeriod cycles per bit.
// Frames whose sampling points extend past end are not reported.
func (f Format) Decode(edges []Edge, bitPeriod, end uint64) []Frame {
	if bitPeriod == 0 {
		return nil
	}
	var frames []Frame
	nbits := uint64(f.Bits())
	searchFrom := uint64(0)
	for _, e := range edges {
		if e.Level || e.Time < searchFrom {
			continue
		}
		// The line must have been high just before a start edge.
		if e.Time > 0 && !LevelAt(edges, e.Time-1) {
			continue
		}
		last := e.Time + (nbits-1)*bitPeriod + bitPeriod/2
		if last > end {
			break
		}
		levels := make([]bool, nbits)
		for i := uint64(0); i < nbits; i++ {
			levels[i] = LevelAt(edges, e.Time+i*bitPeriod+bitPeriod/2)
		}
		fr, err := f.DecodeLevels(levels)
		if err != nil {
			// A glitch that does not hold low through mid-start.
			continue
		}
		fr.Start = e.Time
		frames = append(frames, fr)
		searchFrom = last
	}
	return frames
}

// Edges converts consecutive frames' levels into a transition list starting
// at cycle start, bitPeriod cycles per bit, skipping levels equal to the
// previous one.
func Edges(levels []bool, start, bitPeriod uint64) []Edge {
	var out []Edge
	prev := true
	for i, l := range levels {
		if l == prev {
			continue
		}
		out = append(out, Edge{Time: start + uint64(i)*bitPeriod, Level: l})
		prev = l
	}
	return out
}
