// internal/sink/modbus/mirror.go
package modbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
	"github.com/tamzrod/gpsdoctl/internal/status"
)

// registerWriter is the exact contract the mirror uses.
type registerWriter interface {
	WriteRegisters(addr uint16, regs []uint16) error
}

// Mirror keeps a Modbus holding-register block in step with the monitor.
// Delivery only: it writes what it is given and never reads back.
//
// The first write (and the first after any failure) re-asserts the full
// block; afterwards only the changed slot range is written.
type Mirror struct {
	mu   sync.Mutex
	cli  registerWriter
	base uint16
	log  zerolog.Logger

	needFull bool
	last     status.Block
	lastRegs []uint16
	seq      uint16

	closer func() error
}

func newMirror(cli registerWriter, base uint16, log zerolog.Logger, closer func() error) *Mirror {
	return &Mirror{
		cli:      cli,
		base:     base,
		log:      log,
		needFull: true,
		last:     status.Block{Health: status.HealthUnknown},
		closer:   closer,
	}
}

// Open dials the endpoint and asserts an unknown-health block.
func Open(cfg ClientConfig, base uint16, log zerolog.Logger) (*Mirror, error) {
	cli, err := Dial(cfg)
	if err != nil {
		return nil, err
	}

	m := newMirror(cli, base, log, cli.Close)
	if err := m.write(m.last); err != nil {
		// not fatal: the next sample retries the full block
		log.Warn().Err(err).Msg("initial mirror write failed")
	}
	return m, nil
}

// Publish implements monitor.Sink.
func (m *Mirror) Publish(_ context.Context, s gpsdo.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	return m.write(status.FromSnapshot(s, m.seq))
}

// Fail implements monitor.FailureSink: the last good values stay, health goes to error.
func (m *Mirror) Fail(_ context.Context, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.last
	b.Health = status.HealthError
	m.log.Debug().Err(cause).Msg("mirror health -> error")
	return m.write(b)
}

// Close marks the block stale, then releases the connection.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.last
	b.Health = status.HealthStale
	werr := m.write(b)

	var cerr error
	if m.closer != nil {
		cerr = m.closer()
		m.closer = nil
	}
	return errors.Join(werr, cerr)
}

// write must be called with mu held.
func (m *Mirror) write(b status.Block) error {
	regs := status.Encode(b)

	// ------------------------------------------------------------
	// Full block write (re-assert)
	// ------------------------------------------------------------
	if m.needFull {
		if err := m.cli.WriteRegisters(m.base, regs); err != nil {
			return fmt.Errorf("modbus mirror: full block write failed: %w", err)
		}
		m.needFull = false
		m.last = b
		m.lastRegs = regs
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: smallest changed range only
	// ------------------------------------------------------------
	first, last, changed := status.Diff(m.lastRegs, regs)
	if !changed {
		m.last = b
		return nil
	}

	if err := m.cli.WriteRegisters(m.base+uint16(first), regs[first:last+1]); err != nil {
		// Any partial failure introduces doubt: re-assert on next success.
		m.needFull = true
		return fmt.Errorf("modbus mirror: slots %d..%d write failed: %w", first, last, err)
	}

	m.last = b
	m.lastRegs = regs
	return nil
}
