package bus

// PacketBus issues register accesses as bridge packets over a Transport.
type PacketBus struct {
	transport Transport
	proto     *Protocol
}

// NewPacketBus creates a bus over transport.
func NewPacketBus(transport Transport) *PacketBus {
	size := DefaultPacketSize
	if u, ok := transport.(*USBTransport); ok {
		size = u.PacketSize()
	}
	return &PacketBus{transport: transport, proto: NewProtocol(size)}
}

// Info returns the identification string of the far end.
func (b *PacketBus) Info() (string, error) {
	resp, err := b.transport.WriteRead(b.proto.EncodeInfo())
	if err != nil {
		return "", err
	}
	return b.proto.DecodeInfo(resp)
}

func (b *PacketBus) Read(addr uint32) (uint32, error) {
	resp, err := b.transport.WriteRead(b.proto.EncodeRead(addr))
	if err != nil {
		return 0, err
	}
	return b.proto.DecodeRead(resp)
}

func (b *PacketBus) Write(addr, value uint32) error {
	resp, err := b.transport.WriteRead(b.proto.EncodeWrite(addr, value))
	if err != nil {
		return err
	}
	return b.proto.DecodeWrite(resp)
}

// Close releases the transport.
func (b *PacketBus) Close() error {
	return b.transport.Close()
}
