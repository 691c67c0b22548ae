package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/preset"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

// Core construction flags shared by run, reg and wave.
var (
	presetName string
	clockHz    uint32
	baudRate   uint32
	divisor    uint32
	formatName string
	depth      int
)

func addCoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "named line settings (see 'uart presets')")
	cmd.Flags().Uint32Var(&clockHz, "clock", uart.DefaultClockHz, "reference clock in Hz")
	cmd.Flags().Uint32VarP(&baudRate, "baud", "b", uart.DefaultBaud, "target baud rate")
	cmd.Flags().Uint32Var(&divisor, "divisor", 0, "baud divisor (overrides --baud)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "8N1", "frame format, e.g. 8N1, 7E2, 9N1")
	cmd.Flags().IntVar(&depth, "depth", uart.DefaultDepth, "TX and RX queue depth")
}

func resetCoreFlags() {
	presetName = ""
	clockHz = uart.DefaultClockHz
	baudRate = uart.DefaultBaud
	divisor = 0
	formatName = "8N1"
	depth = uart.DefaultDepth
}

// coreConfig builds the configuration selected by the core flags.
func coreConfig() (*uart.Config, error) {
	if presetName != "" {
		p, err := preset.Find(presetName)
		if err != nil {
			return nil, err
		}
		cfg, err := p.Config(clockHz)
		if err != nil {
			return nil, err
		}
		cfg.TxDepth, cfg.RxDepth = depth, depth
		return cfg, nil
	}

	f, err := frame.ParseFormat(formatName)
	if err != nil {
		return nil, fmt.Errorf("--format: %w", err)
	}
	cfg := uart.DefaultConfig()
	cfg.ClockHz = clockHz
	cfg.BaudRate = baudRate
	cfg.Divisor = divisor
	cfg.Format = f
	cfg.TxDepth, cfg.RxDepth = depth, depth
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newCore() (*uart.Core, error) {
	cfg, err := coreConfig()
	if err != nil {
		return nil, err
	}
	if verbose {
		fmt.Printf("Core: %s, divisor %d (%d baud at %d Hz), depth %d\n",
			cfg.Format, cfg.Divisor, cfg.BaudRate, cfg.ClockHz, cfg.TxDepth)
	}
	return uart.NewCore(*cfg, uart.WithLogger(newLogger()))
}
