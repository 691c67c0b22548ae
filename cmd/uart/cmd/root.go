package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "uart",
	Short: "UART interconnect model and test harness",
	Long: `A cycle-accurate model of a memory-mapped UART bridge with a vector-driven
test harness, register tools and a waveform viewer.

Examples:
  uart run testdata/hello.vec --expect testdata/hello.expected.vec
  uart encode --format 8E1 0x41 0x42
  uart reg read STATUS --interface sim
  uart presets --clock 48000000
  uart wave testdata/hello.vec`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger returns a debug-level stderr logger with --verbose and a
// discarding one otherwise.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
