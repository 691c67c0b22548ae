package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/baud"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/preset"
)

var presetClock uint32

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List named line settings",
	Long: `List the built-in presets with the divisor each needs on the given reference
clock and the resulting baud rate error.

Examples:
  uart presets
  uart presets --clock 48000000`,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
	presetsCmd.Flags().Uint32Var(&presetClock, "clock", 100_000_000, "reference clock in Hz")
}

func runPresets(cmd *cobra.Command, args []string) error {
	fmt.Printf("%-10s %8s  %-6s %8s  %7s  %s\n", "NAME", "BAUD", "FORMAT", "DIVISOR", "ERROR", "DESCRIPTION")
	for _, p := range preset.All() {
		div, err := baud.Divisor(presetClock, p.Baud)
		if err != nil {
			fmt.Printf("%-10s %8d  %-6s %8s  %7s  %s\n", p.Name, p.Baud, p.Format, "-", "n/a", p.Description)
			continue
		}
		fmt.Printf("%-10s %8d  %-6s %8d  %6.2f%%  %s\n",
			p.Name, p.Baud, p.Format, div, baud.ErrorPercent(presetClock, p.Baud, div), p.Description)
	}
	return nil
}
