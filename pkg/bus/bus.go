// Package bus connects the register interface of a UART core to its
// initiators: an in-process simulator, or a USB bridge speaking a small
// packet protocol.
package bus

import (
	"errors"
	"sync"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

// Bus is the memory-mapped side of the interconnect as seen by an initiator.
type Bus interface {
	Read(addr uint32) (uint32, error)
	Write(addr, value uint32) error
}

// ErrRejected marks a write the core refused, as opposed to a bus fault.
var ErrRejected = errors.New("bus: write rejected")

// Access captures one bus transaction.
type Access struct {
	Write bool
	Addr  uint32
	Value uint32
	Err   error
}

// AccessHook observes every transaction after it completes.
type AccessHook func(Access)

// SimBus drives a uart.Core directly. It records the last access and can
// report every access to OnAccess for inspection within tests.
type SimBus struct {
	OnAccess AccessHook

	core *uart.Core

	mu       sync.Mutex
	last     Access
	accesses int
}

// NewSimBus wraps core.
func NewSimBus(core *uart.Core) *SimBus {
	return &SimBus{core: core}
}

// Core returns the wrapped core.
func (b *SimBus) Core() *uart.Core { return b.core }

func (b *SimBus) Read(addr uint32) (uint32, error) {
	v, err := b.core.ReadReg(addr)
	b.record(Access{Addr: addr, Value: v, Err: err})
	return v, err
}

func (b *SimBus) Write(addr, value uint32) error {
	err := b.core.WriteReg(addr, value)
	b.record(Access{Write: true, Addr: addr, Value: value, Err: err})
	return err
}

// LastAccess returns the most recent transaction.
func (b *SimBus) LastAccess() Access {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Accesses reports how many transactions have completed.
func (b *SimBus) Accesses() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accesses
}

func (b *SimBus) record(a Access) {
	b.mu.Lock()
	b.last = a
	b.accesses++
	hook := b.OnAccess
	b.mu.Unlock()
	if hook != nil {
		hook(a)
	}
}
