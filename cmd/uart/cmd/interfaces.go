package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/bus"
)

var (
	interfacesHardware bool
	interfacesTimeout  time.Duration
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List bridges that reg --interface can open",
	Long: `Enumerate USB devices and print those with a known bridge VID:PID as a
table. The VID:PID column is what reg --vid/--pid expect. The simulator row
needs no hardware and is omitted with --hardware.`,
	RunE: runInterfaces,
}

func init() {
	interfacesCmd.Flags().BoolVar(&interfacesHardware, "hardware", false, "only list USB bridges")
	interfacesCmd.Flags().DurationVar(&interfacesTimeout, "timeout", 5*time.Second, "USB enumeration timeout")
	rootCmd.AddCommand(interfacesCmd)
}

func resetInterfacesFlags() {
	interfacesHardware = false
	interfacesTimeout = 5 * time.Second
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), interfacesTimeout)
	defer cancel()

	infos, err := bus.DiscoverInterfaces(ctx)
	if err != nil {
		return fmt.Errorf("discover interfaces: %w", err)
	}

	fmt.Printf("%-12s %-9s %-9s %s\n", "KIND", "VID:PID", "OPEN WITH", "DESCRIPTION")
	usb := 0
	for _, iface := range infos {
		id, open := "-", "sim"
		if iface.Kind == bus.InterfaceKindSim {
			if interfacesHardware {
				continue
			}
		} else {
			usb++
			id = fmt.Sprintf("%04X:%04X", iface.VendorID, iface.ProductID)
			open = "usb"
		}
		fmt.Printf("%-12s %-9s %-9s %s\n", iface.Kind, id, open, iface.Label())
	}
	fmt.Printf("%d USB bridge(s) found\n", usb)
	return nil
}
