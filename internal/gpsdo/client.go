// internal/gpsdo/client.go
package gpsdo

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/regmap"
)

var (
	// ErrUnknownRegister is returned for addresses outside the register table.
	ErrUnknownRegister = errors.New("gpsdo: unknown register")

	// ErrReadOnly is returned when writing a read-only register.
	ErrReadOnly = errors.New("gpsdo: register is read-only")
)

// Registers is the single-register bus contract the client is built on.
// *transport.Transport implements it.
type Registers interface {
	ReadRegister(addr uint16) (uint16, error)
	WriteRegister(addr, value uint16) error
}

// Client exposes typed gpsdocfg operations.
// It is not safe for concurrent use: every method is a blocking sequence of bus transactions.
type Client struct {
	regs Registers
	log  zerolog.Logger
	now  func() time.Time
}

// New creates a client over regs.
func New(regs Registers, log zerolog.Logger) *Client {
	return &Client{regs: regs, log: log, now: time.Now}
}

// Read reads one register from the table.
func (c *Client) Read(addr regmap.Address) (uint16, error) {
	if !regmap.Valid(addr) {
		return 0, fmt.Errorf("%w: 0x%02X", ErrUnknownRegister, uint16(addr))
	}
	return c.regs.ReadRegister(uint16(addr))
}

// Write writes one read-write register from the table.
func (c *Client) Write(addr regmap.Address, value uint16) error {
	reg, ok := regmap.Lookup(addr)
	if !ok {
		return fmt.Errorf("%w: 0x%02X", ErrUnknownRegister, uint16(addr))
	}
	if reg.Access == regmap.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, reg.Name)
	}
	return c.regs.WriteRegister(uint16(addr), value)
}

// ComposeSigned32 joins a register pair into a two's-complement value: (high<<16)|low.
func ComposeSigned32(low, high uint16) int32 {
	return int32(uint32(high)<<16 | uint32(low))
}

// ReadSigned32 reads low then high as two separate transactions.
// The pair is not latched by the core; see Snapshot for the tearing hazard.
func (c *Client) ReadSigned32(low, high regmap.Address) (int32, error) {
	lo, err := c.Read(low)
	if err != nil {
		return 0, err
	}
	hi, err := c.Read(high)
	if err != nil {
		return 0, err
	}
	return ComposeSigned32(lo, hi), nil
}

// ReadError reads the measured error of one time base.
func (c *Client) ReadError(w regmap.Window) (int32, error) {
	return c.ReadSigned32(w.ErrL, w.ErrH)
}

// ReadStatus reads and decodes STATUS.
func (c *Client) ReadStatus() (Status, error) {
	raw, err := c.Read(regmap.Status)
	if err != nil {
		return Status{}, err
	}
	return DecodeStatus(raw), nil
}

// ReadDacValue reads the tuned DAC value.
func (c *Client) ReadDacValue() (uint16, error) {
	return c.Read(regmap.DACTunedVal)
}

// ReadEnabled reports CONTROL.EN.
func (c *Client) ReadEnabled() (bool, error) {
	v, err := c.Read(regmap.Control)
	if err != nil {
		return false, err
	}
	return regmap.ControlEN.Flag(v), nil
}

// UpdateControl performs read-modify-write on CONTROL and returns the value written.
// fn must only touch the fields it owns; everything else comes from the read.
func (c *Client) UpdateControl(fn func(uint16) uint16) (uint16, error) {
	cur, err := c.Read(regmap.Control)
	if err != nil {
		return 0, err
	}
	next := fn(cur)
	if err := c.Write(regmap.Control, next); err != nil {
		return 0, err
	}
	c.log.Debug().
		Str("reg", regmap.Control.String()).
		Uint16("from", cur).
		Uint16("to", next).
		Msg("control updated")
	return next, nil
}

// SetEnabled changes CONTROL.EN only. CLK_SEL and reserved bits are kept as read.
func (c *Client) SetEnabled(on bool) error {
	_, err := c.UpdateControl(func(v uint16) uint16 {
		return regmap.ControlEN.SetFlag(v, on)
	})
	return err
}

// ReadSnapshot captures a Snapshot with nine sequential reads:
// CONTROL, the three error pairs (low then high), DAC and STATUS.
// Any failure aborts the whole sample.
func (c *Client) ReadSnapshot() (Snapshot, error) {
	s := Snapshot{Started: c.now()}

	enabled, err := c.ReadEnabled()
	if err != nil {
		return Snapshot{}, err
	}
	s.Enabled = enabled

	errs := [3]*int32{&s.Err1s, &s.Err10s, &s.Err100s}
	for i, w := range regmap.Windows {
		v, err := c.ReadError(w)
		if err != nil {
			return Snapshot{}, err
		}
		*errs[i] = v
	}

	if s.DAC, err = c.ReadDacValue(); err != nil {
		return Snapshot{}, err
	}
	if s.Status, err = c.ReadStatus(); err != nil {
		return Snapshot{}, err
	}

	s.Finished = c.now()
	return s, nil
}

// RegisterValue is one line of a register dump.
type RegisterValue struct {
	Register regmap.Register
	Value    uint16
}

// Dump reads every register in address order.
func (c *Client) Dump() ([]RegisterValue, error) {
	all := regmap.All()
	out := make([]RegisterValue, 0, len(all))
	for _, r := range all {
		v, err := c.Read(r.Addr)
		if err != nil {
			return nil, err
		}
		out = append(out, RegisterValue{Register: r, Value: v})
	}
	return out, nil
}
