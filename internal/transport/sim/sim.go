// internal/transport/sim/sim.go
package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/gpsdoctl/internal/regmap"
	"github.com/tamzrod/gpsdoctl/internal/transport"
)

// Write is one bus write observed by the device.
type Write struct {
	Addr  regmap.Address
	Value uint16
}

// Device is an in-memory gpsdocfg register file speaking the 4-byte wire protocol.
// It implements transport.Conn.
//
// Read-only registers ignore bus writes; use Poke to play the hardware side.
type Device struct {
	mu     sync.Mutex
	regs   [regmap.Count]uint16
	writes []Write
	txs    int
	failAt int
	err    error
	closes int

	// BeforeRead runs before a read response is latched. It may Poke registers
	// to emulate the core updating mid-sequence.
	BeforeRead func(d *Device, addr regmap.Address)
}

// New returns a device with the reset register state of the core.
func New() *Device {
	return &Device{}
}

// FailAt makes the n-th transaction (1-based, counted from now) fail with err.
func (d *Device) FailAt(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAt = d.txs + n
	d.err = err
}

// Tx implements transport.Conn.
func (d *Device) Tx(w, r []byte) (int, error) {
	if len(w) != transport.FrameLen {
		return 0, fmt.Errorf("sim: frame length %d", len(w))
	}

	d.mu.Lock()
	d.txs++
	if d.failAt != 0 && d.txs == d.failAt {
		err := d.err
		d.failAt = 0
		d.mu.Unlock()
		if err == nil {
			err = errors.New("sim: injected fault")
		}
		return 0, err
	}
	hook := d.BeforeRead
	d.mu.Unlock()

	addr := regmap.Address(w[1])

	if transport.IsWrite(w) {
		v := uint16(w[2])<<8 | uint16(w[3])
		d.mu.Lock()
		d.writes = append(d.writes, Write{Addr: addr, Value: v})
		if reg, ok := regmap.Lookup(addr); ok && reg.Access == regmap.ReadWrite {
			d.regs[addr] = v
		}
		d.mu.Unlock()
		return fill(r, w, 0), nil
	}

	if hook != nil {
		hook(d, addr)
	}
	return fill(r, w, d.Peek(addr)), nil
}

func fill(r, w []byte, v uint16) int {
	var frame [transport.FrameLen]byte
	frame[0] = w[0]
	frame[1] = w[1]
	frame[2] = byte(v >> 8)
	frame[3] = byte(v)
	return copy(r, frame[:])
}

// Close implements transport.Conn.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

// Closes returns how many times Close was called.
func (d *Device) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// Poke sets a register from the hardware side, including read-only ones.
func (d *Device) Poke(addr regmap.Address, v uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if regmap.Valid(addr) {
		d.regs[addr] = v
	}
}

// Poke32 sets a register pair to a signed 32-bit value.
func (d *Device) Poke32(low, high regmap.Address, v int32) {
	u := uint32(v)
	d.Poke(low, uint16(u))
	d.Poke(high, uint16(u>>16))
}

// Peek returns a register value. Unknown addresses read as zero.
func (d *Device) Peek(addr regmap.Address) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !regmap.Valid(addr) {
		return 0
	}
	return d.regs[addr]
}

// Writes returns the bus writes seen so far, in order.
func (d *Device) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Write, len(d.writes))
	copy(out, d.writes)
	return out
}

// ResetWrites clears the write log.
func (d *Device) ResetWrites() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = nil
}

// Transactions returns the number of transactions attempted.
func (d *Device) Transactions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txs
}
