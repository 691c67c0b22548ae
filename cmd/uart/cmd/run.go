package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/bus"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/vector"
)

var (
	expectFile string
	outFile    string
	bridgeMode string
	outSexp    bool
	decodeTX   bool
	maxCycles  uint64
)

var runCmd = &cobra.Command{
	Use:   "run <stimulus>",
	Short: "Replay a test vector file against the core",
	Long: `Apply the stimulus records of a vector file (.vec text or .sexp) cycle by
cycle and print the resulting trace: TX and IRQ transitions, bus read results
and rejected accesses.

With --expect the trace is compared with the response records of another
vector file and the command fails on any mismatch.

Examples:
  uart run testdata/hello.vec
  uart run testdata/hello.vec --expect testdata/hello.expected.vec
  uart run testdata/loopback.sexp --bridge packet --decode`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addCoreFlags(runCmd)

	runCmd.Flags().StringVarP(&expectFile, "expect", "e", "", "expected vector file to compare against")
	runCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the trace to a file instead of stdout")
	runCmd.Flags().StringVar(&bridgeMode, "bridge", "direct", "register path: direct or packet (bridge protocol over a simulated transport)")
	runCmd.Flags().BoolVar(&outSexp, "sexp", false, "print the trace as S-expressions")
	runCmd.Flags().BoolVar(&decodeTX, "decode", false, "decode TX frames from the trace")
	runCmd.Flags().Uint64Var(&maxCycles, "max-cycles", vector.DefaultMaxCycles, "cycle limit for vectors without an end record")
}

func resetRunFlags() {
	resetCoreFlags()
	expectFile, outFile, bridgeMode = "", "", "direct"
	outSexp, decodeTX = false, false
	maxCycles = vector.DefaultMaxCycles
}

// replay builds a core and runner from the flags and runs the stimulus file.
func replay(path string, observe func(uart.Signals)) (*uart.Core, []vector.Record, error) {
	stimulus, err := vector.Load(path)
	if err != nil {
		return nil, nil, err
	}
	core, err := newCore()
	if err != nil {
		return nil, nil, err
	}

	runner := &vector.Runner{
		Core:      core,
		MaxCycles: maxCycles,
		Logger:    slog.Default(),
		Observe:   observe,
	}
	switch bridgeMode {
	case "", "direct":
	case "packet":
		runner.Bus = bus.NewPacketBus(bus.NewSimTransport(core))
	default:
		return nil, nil, fmt.Errorf("unknown --bridge %q (want direct or packet)", bridgeMode)
	}

	trace, err := runner.Run(stimulus)
	return core, trace, err
}

func runRun(cmd *cobra.Command, args []string) error {
	core, trace, err := replay(args[0], nil)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", outFile, err)
		}
		defer f.Close()
		out = f
	}
	if outSexp {
		err = vector.WriteSexp(out, trace)
	} else {
		err = vector.WriteText(out, trace)
	}
	if err != nil {
		return err
	}

	if decodeTX {
		cfg := core.Config()
		frames := vector.DecodeTX(trace, cfg.Format, cfg.BitPeriod(), core.Cycle())
		fmt.Printf("Decoded %d TX frame(s) at %s:\n", len(frames), cfg.Format)
		for _, fr := range frames {
			fmt.Printf("  @%d 0x%02X", fr.Start, fr.Data)
			if fr.FramingErr {
				fmt.Print(" framing error")
			}
			if fr.ParityErr {
				fmt.Print(" parity error")
			}
			fmt.Println()
		}
	}

	if expectFile == "" {
		return nil
	}
	expected, err := vector.Load(expectFile)
	if err != nil {
		return err
	}
	mismatches := vector.Compare(expected, trace)
	if len(mismatches) == 0 {
		fmt.Printf("PASS: %d response record(s) match\n", len(vector.Responses(expected)))
		return nil
	}
	fmt.Printf("FAIL: %d mismatch(es)\n", len(mismatches))
	for _, m := range mismatches {
		fmt.Printf("  %s\n", m)
	}
	return fmt.Errorf("%d mismatch(es) against %s", len(mismatches), expectFile)
}
