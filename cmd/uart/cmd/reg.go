package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/bus"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

var (
	interfaceType string
	usbVID        uint16
	usbPID        uint16
)

var regCmd = &cobra.Command{
	Use:   "reg",
	Short: "Access core registers through a bridge",
	Long: `Read or write one register through the bridge packet protocol. The
simulator interface serves a fresh core per invocation; the usb interface
talks to a bridge attached over USB.

Examples:
  uart reg read STATUS
  uart reg write CONTROL 0x07 --interface usb
  uart reg read 0x10 --interface usb --vid 0x1209 --pid 0x0001`,
}

var regReadCmd = &cobra.Command{
	Use:   "read <reg>",
	Short: "Read a register",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegRead,
}

var regWriteCmd = &cobra.Command{
	Use:   "write <reg> <value>",
	Short: "Write a register",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegWrite,
}

func init() {
	rootCmd.AddCommand(regCmd)
	regCmd.AddCommand(regReadCmd, regWriteCmd)

	for _, c := range []*cobra.Command{regReadCmd, regWriteCmd} {
		addCoreFlags(c)
		c.Flags().StringVarP(&interfaceType, "interface", "i", "sim", "bridge interface (sim, usb)")
		c.Flags().Uint16Var(&usbVID, "vid", bus.VendorIDPidCodes, "USB vendor ID")
		c.Flags().Uint16Var(&usbPID, "pid", bus.ProductIDUARTBrdg, "USB product ID")
	}
}

func openBridge() (*bus.PacketBus, error) {
	switch interfaceType {
	case "sim", "simulator":
		core, err := newCore()
		if err != nil {
			return nil, err
		}
		return bus.NewPacketBus(bus.NewSimTransport(core)), nil
	case "usb":
		t, err := bus.NewUSBTransport(usbVID, usbPID)
		if err != nil {
			return nil, err
		}
		return bus.NewPacketBus(t), nil
	default:
		return nil, fmt.Errorf("unknown interface %q (want sim or usb)", interfaceType)
	}
}

func runRegRead(cmd *cobra.Command, args []string) error {
	reg, err := uart.ParseRegister(args[0])
	if err != nil {
		return err
	}
	b, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	if verbose {
		if info, err := b.Info(); err == nil {
			fmt.Printf("Bridge: %s\n", info)
		}
	}

	v, err := b.Read(reg)
	if err != nil {
		return fmt.Errorf("read %s: %w", uart.RegisterName(reg), err)
	}
	fmt.Printf("%s = 0x%08X", uart.RegisterName(reg), v)
	switch reg {
	case uart.RegStatus:
		fmt.Printf(" (%s)", uart.Flags(v))
	case uart.RegControl:
		if ctl, err := uart.DecodeControl(v); err == nil {
			fmt.Printf(" (%s)", ctl)
		}
	}
	fmt.Println()
	return nil
}

func runRegWrite(cmd *cobra.Command, args []string) error {
	reg, err := uart.ParseRegister(args[0])
	if err != nil {
		return err
	}
	v, err := parseWord(args[1])
	if err != nil {
		return err
	}
	b, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Write(reg, v); err != nil {
		return fmt.Errorf("write %s: %w", uart.RegisterName(reg), err)
	}
	fmt.Printf("%s <- 0x%08X\n", uart.RegisterName(reg), v)

	st, err := b.Read(uart.RegStatus)
	if err != nil {
		return fmt.Errorf("read STATUS: %w", err)
	}
	fmt.Printf("STATUS = 0x%08X (%s)\n", st, uart.Flags(st))
	return nil
}
