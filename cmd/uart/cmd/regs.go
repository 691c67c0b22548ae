package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

var (
	decodeControl string
	decodeStatus  string
	decodeRxData  string
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Print the register map or decode register values",
	Long: `Without flags, list the register map. The --control, --status and --rxdata
flags decode a raw register value into its fields.

Examples:
  uart regs
  uart regs --control 0x287
  uart regs --status 0x19`,
	RunE: runRegs,
}

func init() {
	rootCmd.AddCommand(regsCmd)
	regsCmd.Flags().StringVar(&decodeControl, "control", "", "decode a CONTROL value")
	regsCmd.Flags().StringVar(&decodeStatus, "status", "", "decode a STATUS value")
	regsCmd.Flags().StringVar(&decodeRxData, "rxdata", "", "decode an RXDATA value")
}

func runRegs(cmd *cobra.Command, args []string) error {
	decoded := false
	if decodeControl != "" {
		v, err := parseWord(decodeControl)
		if err != nil {
			return err
		}
		ctl, err := uart.DecodeControl(v)
		if err != nil {
			return err
		}
		fmt.Printf("CONTROL 0x%08X: %s\n", v, ctl)
		decoded = true
	}
	if decodeStatus != "" {
		v, err := parseWord(decodeStatus)
		if err != nil {
			return err
		}
		fmt.Printf("STATUS 0x%08X: %s\n", v, uart.Flags(v))
		decoded = true
	}
	if decodeRxData != "" {
		v, err := parseWord(decodeRxData)
		if err != nil {
			return err
		}
		fmt.Printf("RXDATA 0x%08X: data 0x%03X", v, v&0x1FF)
		if v&uart.RxDataFraming != 0 {
			fmt.Print(" framing error")
		}
		if v&uart.RxDataParity != 0 {
			fmt.Print(" parity error")
		}
		fmt.Println()
		decoded = true
	}
	if decoded {
		return nil
	}

	fmt.Println("Offset  Name      Access  Description")
	for _, r := range uart.Registers {
		fmt.Printf("0x%02X    %-8s  %-6s  %s\n", r.Offset, r.Name, r.Access, r.Description)
	}
	fmt.Printf("\nSTATUS bits: ")
	for i, name := range uart.FlagNames() {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%d %s", i, name)
	}
	fmt.Println()
	return nil
}

func parseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid register value %q", s)
	}
	return uint32(v), nil
}
