package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/internal/wave"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

var waveCmd = &cobra.Command{
	Use:   "wave <stimulus>",
	Short: "Replay a vector file and plot TX, RX and IRQ",
	Long: `Run a vector file like 'uart run' and open a window with the captured line
activity. Use +/- or the toolbar to zoom and the arrow keys to pan.`,
	Args: cobra.ExactArgs(1),
	RunE: runWave,
}

func init() {
	rootCmd.AddCommand(waveCmd)
	addCoreFlags(waveCmd)
}

// lineCapture records transitions of the three pins.
type lineCapture struct {
	tx, rx, irq []frame.Edge
	last        uart.Signals
	started     bool
}

func (c *lineCapture) observe(s uart.Signals) {
	if !c.started {
		c.last = uart.Signals{TX: true, RX: true}
		c.started = true
	}
	if s.TX != c.last.TX {
		c.tx = append(c.tx, frame.Edge{Time: s.Cycle, Level: s.TX})
	}
	if s.RX != c.last.RX {
		c.rx = append(c.rx, frame.Edge{Time: s.Cycle, Level: s.RX})
	}
	if s.IRQ != c.last.IRQ {
		c.irq = append(c.irq, frame.Edge{Time: s.Cycle, Level: s.IRQ})
	}
	c.last = s
}

func runWave(cmd *cobra.Command, args []string) error {
	var capture lineCapture
	core, _, err := replay(args[0], capture.observe)
	if err != nil {
		return err
	}

	// IRQ idles low; Segments assumes a high idle level.
	irq := append([]frame.Edge{{Time: 0, Level: false}}, capture.irq...)
	traces := []wave.Trace{
		{Name: "TX", Edges: capture.tx},
		{Name: "RX", Edges: capture.rx},
		{Name: "IRQ", Edges: irq},
	}
	end := core.Cycle()
	if end == 0 {
		return fmt.Errorf("%s ran for zero cycles", args[0])
	}
	wave.Show(fmt.Sprintf("uart wave - %s", filepath.Base(args[0])), traces, end, core.Config().BitPeriod())
	return nil
}
