package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

const (
	// pid.codes test PID used by the reference bridge firmware
	VendorIDPidCodes  = 0x1209
	ProductIDUARTBrdg = 0x0001

	DefaultPacketSize = 64
	DefaultTimeout    = 2 * time.Second
)

// Transport carries one request packet and returns the matching response.
type Transport interface {
	WriteRead(cmd []byte) ([]byte, error)
	Close() error
}

// Bulk endpoint halves, satisfied by *gousb.OutEndpoint and *gousb.InEndpoint.
type bulkOut interface {
	WriteContext(ctx context.Context, buf []byte) (int, error)
}

type bulkIn interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

// USBTransport talks to a bridge over the bulk endpoints of its vendor
// interface.
type USBTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface

	epOut bulkOut
	epIn  bulkIn

	packetSize int
	timeout    time.Duration
}

// NewUSBTransport opens the first device matching vid:pid.
func NewUSBTransport(vid, pid uint16) (*USBTransport, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("bus: USB error: %w", err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("bus: device not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}

	// Not supported on every platform.
	_ = dev.SetAutoDetach(true)

	t := &USBTransport{
		ctx:        ctx,
		dev:        dev,
		packetSize: DefaultPacketSize,
		timeout:    DefaultTimeout,
	}
	if err := t.claimInterface(); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}
	return t, nil
}

func (t *USBTransport) claimInterface() error {
	cfg, err := t.dev.Config(1)
	if err != nil {
		return fmt.Errorf("bus: failed to get config: %w", err)
	}

	num := 0
	for _, intf := range cfg.Desc.Interfaces {
		if len(intf.AltSettings) > 0 && intf.AltSettings[0].Class == gousb.ClassVendorSpec {
			num = intf.Number
			break
		}
	}

	intf, err := cfg.Interface(num, 0)
	if err != nil {
		cfg.Close()
		return fmt.Errorf("bus: failed to claim interface %d: %w", num, err)
	}
	t.cfg = cfg
	t.intf = intf

	if err := t.findEndpoints(); err != nil {
		intf.Close()
		cfg.Close()
		return err
	}
	return nil
}

func (t *USBTransport) findEndpoints() error {
	var outAddr, inAddr int
	for _, ep := range t.intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionOut && outAddr == 0:
			outAddr = ep.Number
		case ep.Direction == gousb.EndpointDirectionIn && inAddr == 0:
			inAddr = ep.Number
			t.packetSize = ep.MaxPacketSize
		}
	}
	if outAddr == 0 || inAddr == 0 {
		return fmt.Errorf("bus: bulk endpoints not found")
	}

	epOut, err := t.intf.OutEndpoint(outAddr)
	if err != nil {
		return fmt.Errorf("bus: failed to open OUT endpoint: %w", err)
	}
	epIn, err := t.intf.InEndpoint(inAddr)
	if err != nil {
		return fmt.Errorf("bus: failed to open IN endpoint: %w", err)
	}
	t.epOut, t.epIn = epOut, epIn
	return nil
}

// WriteRead sends cmd padded to one packet and reads one response packet.
// The whole exchange is bounded by the transport timeout.
func (t *USBTransport) WriteRead(cmd []byte) ([]byte, error) {
	if len(cmd) > t.packetSize {
		return nil, fmt.Errorf("bus: command of %d bytes exceeds packet size %d", len(cmd), t.packetSize)
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	packet := make([]byte, t.packetSize)
	copy(packet, cmd)
	if _, err := t.epOut.WriteContext(ctx, packet); err != nil {
		return nil, fmt.Errorf("bus: USB write failed: %w", err)
	}

	resp := make([]byte, t.packetSize)
	n, err := t.epIn.ReadContext(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("bus: USB read failed: %w", err)
	}
	return resp[:n], nil
}

// SetTimeout changes the per-exchange deadline. Non-positive values restore
// DefaultTimeout.
func (t *USBTransport) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	t.timeout = d
}

// PacketSize returns the negotiated bulk packet size.
func (t *USBTransport) PacketSize() int { return t.packetSize }

// Close releases USB resources.
func (t *USBTransport) Close() error {
	if t.intf != nil {
		t.intf.Close()
		t.intf = nil
	}
	if t.cfg != nil {
		t.cfg.Close()
		t.cfg = nil
	}
	if t.dev != nil {
		t.dev.Close()
		t.dev = nil
	}
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
	return nil
}
