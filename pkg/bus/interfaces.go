package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// InterfaceKind categorizes bridge families.
type InterfaceKind string

const (
	InterfaceKindBridge InterfaceKind = "uart-bridge"
	InterfaceKindFTDI   InterfaceKind = "ftdi"
	InterfaceKindSim    InterfaceKind = "simulator"
)

// InterfaceInfo describes a detected bridge.
type InterfaceInfo struct {
	Kind        InterfaceKind
	Description string
	VendorID    uint16
	ProductID   uint16
}

// Label returns a user-friendly description for the interface.
func (i InterfaceInfo) Label() string {
	if i.Description != "" {
		return i.Description
	}
	return fmt.Sprintf("%s (%04X:%04X)", string(i.Kind), i.VendorID, i.ProductID)
}

// DiscoverInterfaces enumerates connected USB devices with known bridge
// VID/PID pairs. The simulator entry is always last so callers can run
// without hardware.
func DiscoverInterfaces(ctx context.Context) ([]InterfaceInfo, error) {
	var results []InterfaceInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if info, ok := classifyUSBDevice(uint16(desc.Vendor), uint16(desc.Product)); ok {
			results = append(results, info)
		}
		return false
	})
	if err != nil && !errors.Is(err, gousb.ErrorAccess) {
		return results, err
	}

	results = append(results, InterfaceInfo{
		Kind:        InterfaceKindSim,
		Description: "Simulator (no hardware)",
	})
	return results, ctx.Err()
}

func classifyUSBDevice(vid, pid uint16) (InterfaceInfo, bool) {
	for _, known := range knownBridges {
		if vid == known.VendorID && pid == known.ProductID {
			return known, true
		}
	}
	return InterfaceInfo{}, false
}

var knownBridges = []InterfaceInfo{
	{Kind: InterfaceKindBridge, VendorID: VendorIDPidCodes, ProductID: ProductIDUARTBrdg, Description: "OpenTraceUART bridge"},
	{Kind: InterfaceKindFTDI, VendorID: 0x0403, ProductID: 0x6010, Description: "FTDI FT2232H"},
	{Kind: InterfaceKindFTDI, VendorID: 0x0403, ProductID: 0x6014, Description: "FTDI FT232H"},
}
