package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/baud"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

var (
	encodeFormat  string
	encodeDivisor uint32
)

var encodeCmd = &cobra.Command{
	Use:   "encode <byte>...",
	Short: "Show the line levels of serialised bytes",
	Long: `Print the frame bits of each byte, grouped as start, data (LSB first),
parity and stop bits. With --divisor the TX transitions are listed too.

Examples:
  uart encode 0x41
  uart encode --format 7O2 0x41 0x7F
  uart encode --divisor 1 0x41 0x42`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeFormat, "format", "f", "8N1", "frame format")
	encodeCmd.Flags().Uint32Var(&encodeDivisor, "divisor", 0, "list TX transitions at this baud divisor")
}

func runEncode(cmd *cobra.Command, args []string) error {
	f, err := frame.ParseFormat(encodeFormat)
	if err != nil {
		return err
	}

	var levels []bool
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 0, f.DataBits)
		if err != nil {
			return fmt.Errorf("%q does not fit in %d data bits", arg, f.DataBits)
		}
		bits := f.Encode(uint16(v))
		levels = append(levels, bits...)
		fmt.Printf("0x%02X %s: %s\n", v, f, groupBits(f, bits))
	}

	if encodeDivisor == 0 {
		return nil
	}
	fmt.Printf("TX transitions at divisor %d (%d cycles per bit):\n", encodeDivisor, baud.BitPeriod(encodeDivisor))
	for _, e := range frame.Edges(levels, 0, baud.BitPeriod(encodeDivisor)) {
		level := 0
		if e.Level {
			level = 1
		}
		fmt.Printf("  @%d tx %d\n", e.Time, level)
	}
	return nil
}

func groupBits(f frame.Format, bits []bool) string {
	str := func(bs []bool) string {
		var b strings.Builder
		for _, v := range bs {
			if v {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		return b.String()
	}
	groups := []string{str(bits[:1]), str(bits[1 : 1+f.DataBits])}
	rest := bits[1+f.DataBits:]
	if f.Parity != frame.ParityNone {
		groups = append(groups, str(rest[:1]))
		rest = rest[1:]
	}
	groups = append(groups, str(rest))
	return strings.Join(groups, " ")
}
