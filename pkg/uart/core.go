package uart

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/baud"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/fifo"
	"github.com/OpenTraceLab/OpenTraceUART/pkg/frame"
)

// Stats counts events since the last hardware reset.
type Stats struct {
	TxFrames      uint64
	RxFrames      uint64
	FramingErrors uint64
	ParityErrors  uint64
	Overruns      uint64
	TxRejected    uint64
	Glitches      uint64
}

// Signals is the externally visible pin state after one reference cycle.
type Signals struct {
	Cycle uint64
	TX    bool
	RX    bool
	IRQ   bool
}

// Snapshot is a consistent view of the core for inspection.
type Snapshot struct {
	Cycle    uint64
	Enabled  bool
	Control  Control
	Divisor  uint32
	TxState  TxState
	RxState  RxState
	TxQueued int
	RxQueued int
	Flags    Flags
	IRQ      bool
}

// Option customises a Core at construction.
type Option func(*Core)

// WithLogger routes core diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}

// Core is the bus-to-serial interconnect. The bus side (ReadReg, WriteReg)
// and the serial side (Tick, SetRX) may be driven from different goroutines;
// the queues and status flags are the only shared state and every access goes
// through mu.
type Core struct {
	mu sync.Mutex

	initial Config
	cfg     Config
	enabled bool

	gen    *baud.Generator
	txq    *fifo.Queue
	rxq    *fifo.Queue
	tx     *Transmitter
	rx     *Receiver
	status Status

	rxLine bool
	lastRX uint32
	cycle  uint64
	stats  Stats

	logger *slog.Logger
}

// NewCore builds a disabled core from cfg.
func NewCore(cfg Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{
		initial: cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hardReset()
	return c, nil
}

func (c *Core) hardReset() {
	c.cfg = c.initial
	c.enabled = false
	c.gen = baud.NewGenerator(c.cfg.Divisor)
	c.txq = fifo.New(c.cfg.TxDepth)
	c.rxq = fifo.New(c.cfg.RxDepth)
	c.tx = NewTransmitter(c.cfg.Format, c.txq)
	c.rx = NewReceiver(c.cfg.Format)
	c.status.Reset()
	c.status.SetMask(c.cfg.IRQMask)
	c.rxLine = true
	c.lastRX = 0
	c.cycle = 0
	c.stats = Stats{}
}

// Reset returns the core to its construction-time state, including sticky
// flags and the cycle counter.
func (c *Core) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hardReset()
	c.logger.Debug("hardware reset")
}

// Config returns the active configuration.
func (c *Core) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Configure replaces the configuration. It is rejected while the core is
// enabled; the previous configuration then stays in effect.
func (c *Core) Configure(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkReconfigurable("config"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := c.gen.SetDivisor(cfg.Divisor); err != nil {
		return configError("divisor", "rejected by baud generator", err)
	}
	if cfg.TxDepth != c.txq.Cap() {
		// The retired transmitter's count moves into the core totals.
		c.stats.TxFrames += c.tx.Sent()
		c.txq = fifo.New(cfg.TxDepth)
		c.tx = NewTransmitter(cfg.Format, c.txq)
	}
	if cfg.RxDepth != c.rxq.Cap() {
		c.rxq = fifo.New(cfg.RxDepth)
	}
	c.applyFormat(cfg.Format)
	c.status.SetMask(cfg.IRQMask)
	c.cfg = cfg
	c.logger.Debug("configured", "format", cfg.Format.String(), "divisor", cfg.Divisor, "baud", cfg.BaudRate)
	return nil
}

// Enable starts both serial paths.
func (c *Core) Enable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enable()
}

// Disable stops both serial paths and discards transient state.
func (c *Core) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disable()
}

// Enabled reports the enable bit.
func (c *Core) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Enqueue pushes one word into the transmit queue. A full queue returns
// ErrQueueFull and raises tx_overflow.
func (c *Core) Enqueue(data uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enqueue(data)
}

// ReadReg performs a bus read.
func (c *Core) ReadReg(offset uint32) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if offset%4 != 0 || offset >= RegSpan {
		return 0, fmt.Errorf("%w: read 0x%02X", ErrBadAddress, offset)
	}
	switch offset {
	case RegControl:
		return c.control().Encode(), nil
	case RegStatus:
		return uint32(c.status.Flags(c.levels())), nil
	case RegDivisor:
		return c.gen.Divisor(), nil
	case RegTxData:
		return 0, nil
	case RegRxData:
		return c.popRX(), nil
	}
	return 0, fmt.Errorf("%w: read 0x%02X", ErrBadAddress, offset)
}

// WriteReg performs a bus write. A TXDATA write into a full queue is not an
// error; it is reported through STATUS.
func (c *Core) WriteReg(offset, value uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if offset%4 != 0 || offset >= RegSpan {
		return fmt.Errorf("%w: write 0x%02X", ErrBadAddress, offset)
	}
	switch offset {
	case RegControl:
		return c.writeControl(value)
	case RegStatus:
		c.status.Clear(Flags(value))
		return nil
	case RegDivisor:
		return c.writeDivisor(value)
	case RegTxData:
		if err := c.enqueue(uint16(value & rxDataMask)); err != nil && !errors.Is(err, ErrQueueFull) {
			return err
		}
		return nil
	case RegRxData:
		return nil
	}
	return fmt.Errorf("%w: write 0x%02X", ErrBadAddress, offset)
}

// SetRX drives the external RX line.
func (c *Core) SetRX(level bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rxLine = level
}

// TX returns the level on the TX line.
func (c *Core) TX() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx.Line()
}

// IRQ returns the interrupt request output.
func (c *Core) IRQ() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.IRQ(c.levels())
}

// Flags returns the STATUS bits without side effects.
func (c *Core) Flags() Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Flags(c.levels())
}

// Idle reports whether nothing is queued for transmission and both paths
// are between frames.
func (c *Core) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txq.Empty() && c.tx.Idle() && c.rx.Idle()
}

// Cycle returns the number of reference cycles clocked so far.
func (c *Core) Cycle() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycle
}

// Stats returns event counters.
func (c *Core) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.TxFrames += c.tx.Sent()
	s.Glitches = c.rx.Glitches()
	return s
}

// Snapshot returns a consistent view of the whole core.
func (c *Core) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	lv := c.levels()
	return Snapshot{
		Cycle:    c.cycle,
		Enabled:  c.enabled,
		Control:  c.control(),
		Divisor:  c.gen.Divisor(),
		TxState:  c.tx.State(),
		RxState:  c.rx.State(),
		TxQueued: c.txq.Len(),
		RxQueued: c.rxq.Len(),
		Flags:    c.status.Flags(lv),
		IRQ:      c.status.IRQ(lv),
	}
}

// Tick advances one reference-clock cycle of the serial domain.
func (c *Core) Tick() Signals {
	c.mu.Lock()
	defer c.mu.Unlock()

	cycle := c.cycle
	c.cycle++
	if c.enabled && c.gen.Clock() {
		c.tx.Tick()
		if rcv, ok := c.rx.Tick(c.rxLevel()); ok {
			c.deliver(rcv)
		}
	}
	return Signals{
		Cycle: cycle,
		TX:    c.tx.Line(),
		RX:    c.rxLevel(),
		IRQ:   c.status.IRQ(c.levels()),
	}
}

// The helpers below expect mu to be held.

func (c *Core) rxLevel() bool {
	if c.cfg.Loopback {
		return c.tx.Line()
	}
	return c.rxLine
}

func (c *Core) levels() Flags {
	var f Flags
	if c.txq.Empty() && c.tx.Idle() {
		f |= FlagTxEmpty
	}
	if c.txq.Full() {
		f |= FlagTxFull
	}
	if !c.rxq.Empty() {
		f |= FlagRxReady
	}
	if c.rxq.Full() {
		f |= FlagRxFull
	}
	return f
}

func (c *Core) control() Control {
	return Control{
		Enable:   c.enabled,
		Format:   c.cfg.Format,
		Loopback: c.cfg.Loopback,
		IRQMask:  c.status.Mask(),
	}
}

func (c *Core) checkReconfigurable(field string) error {
	if c.enabled {
		return configError(field, "locked while the core is enabled", nil)
	}
	if !c.tx.Idle() || !c.rx.Idle() {
		return configError(field, "serial path is mid-frame", nil)
	}
	return nil
}

func (c *Core) applyFormat(f frame.Format) {
	// Both paths are idle here; SetFormat cannot fail.
	_ = c.tx.SetFormat(f)
	_ = c.rx.SetFormat(f)
	c.cfg.Format = f
}

func (c *Core) writeControl(value uint32) error {
	ctl, err := DecodeControl(value)
	if err != nil {
		c.logger.Warn("control write rejected", "value", fmt.Sprintf("0x%08X", value), "err", err)
		return err
	}

	if c.enabled {
		if !ctl.Enable {
			c.disable()
		} else if ctl.Format != c.cfg.Format || ctl.Loopback != c.cfg.Loopback {
			err := configError("CONTROL", "frame format is locked while the core is enabled", nil)
			c.logger.Warn("control write rejected", "value", fmt.Sprintf("0x%08X", value), "err", err)
			return err
		}
	}

	if !c.enabled {
		c.applyFormat(ctl.Format)
		c.cfg.Loopback = ctl.Loopback
	}
	c.status.SetMask(ctl.IRQMask)
	c.cfg.IRQMask = c.status.Mask()
	if ctl.Enable && !c.enabled {
		c.enable()
	}
	return nil
}

func (c *Core) writeDivisor(value uint32) error {
	if err := c.checkReconfigurable("DIVISOR"); err != nil {
		c.logger.Warn("divisor write rejected", "value", value, "err", err)
		return err
	}
	if err := c.gen.SetDivisor(value); err != nil {
		return configError("DIVISOR", "rejected by baud generator", err)
	}
	c.cfg.Divisor = value
	if c.cfg.ClockHz > 0 {
		c.cfg.BaudRate = uint32(math.Round(baud.ActualBaud(c.cfg.ClockHz, value)))
	}
	return nil
}

func (c *Core) enable() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.gen.Reset()
	c.tx.Reset()
	c.rx.Reset(c.rxLevel())
	c.logger.Debug("enabled", "format", c.cfg.Format.String(), "divisor", c.gen.Divisor())
}

func (c *Core) disable() {
	if !c.enabled {
		return
	}
	c.enabled = false
	c.gen.Reset()
	c.tx.Reset()
	c.rx.Reset(c.rxLevel())
	c.txq.Reset()
	c.rxq.Reset()
	c.logger.Debug("disabled")
}

func (c *Core) enqueue(data uint16) error {
	if err := c.txq.Push(fifo.Entry{Data: data & c.cfg.Format.DataMask()}); err != nil {
		c.status.Raise(FlagTxOverflow)
		c.stats.TxRejected++
		c.logger.Debug("tx queue full", "data", data)
		return ErrQueueFull
	}
	return nil
}

func (c *Core) popRX() uint32 {
	e, ok := c.rxq.Pop()
	if !ok {
		return c.lastRX
	}
	v := uint32(e.Data) & rxDataMask
	if e.Flags&fifo.FlagFraming != 0 {
		v |= RxDataFraming
	}
	if e.Flags&fifo.FlagParity != 0 {
		v |= RxDataParity
	}
	c.lastRX = v
	return v
}

func (c *Core) deliver(rcv Received) {
	var tags uint8
	if rcv.FramingErr {
		c.status.Raise(FlagFramingError)
		c.stats.FramingErrors++
		tags |= fifo.FlagFraming
	}
	if rcv.ParityErr {
		c.status.Raise(FlagParityError)
		c.stats.ParityErrors++
		tags |= fifo.FlagParity
	}
	if err := c.rxq.Push(fifo.Entry{Data: rcv.Data, Flags: tags}); err != nil {
		c.status.Raise(FlagOverrunError)
		c.stats.Overruns++
		c.logger.Debug("rx overrun", "data", rcv.Data, "cycle", c.cycle)
		return
	}
	c.stats.RxFrames++
}
