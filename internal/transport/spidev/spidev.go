// internal/transport/spidev/spidev.go
package spidev

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Config is minimal SPI port config.
type Config struct {
	Device  string // periph port name, e.g. "SPI1.1" or "/dev/spidev1.1"
	SpeedHz int64
	Mode    int
}

// Conn implements transport.Conn over a Linux spidev port.
// Each Tx is one chip-select assertion, so a 4-byte frame is never split.
type Conn struct {
	port spi.PortCloser
	conn spi.Conn
}

// Open initializes the host drivers and connects to the port.
func Open(cfg Config) (*Conn, error) {
	if cfg.Device == "" {
		return nil, errors.New("spidev: device required")
	}
	if cfg.SpeedHz <= 0 {
		return nil, errors.New("spidev: speed must be > 0")
	}
	if cfg.Mode < 0 || cfg.Mode > 3 {
		return nil, fmt.Errorf("spidev: invalid mode %d", cfg.Mode)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("spidev: host init: %w", err)
	}

	port, err := spireg.Open(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("spidev: open %s: %w", cfg.Device, err)
	}

	c, err := port.Connect(physic.Frequency(cfg.SpeedHz)*physic.Hertz, spi.Mode(cfg.Mode), 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("spidev: connect %s: %w", cfg.Device, err)
	}

	return &Conn{port: port, conn: c}, nil
}

// Tx performs one full-duplex transfer. w and r must have the same length.
func (c *Conn) Tx(w, r []byte) (int, error) {
	if c == nil || c.conn == nil {
		return 0, errors.New("spidev: not connected")
	}
	if err := c.conn.Tx(w, r); err != nil {
		return 0, err
	}
	return len(r), nil
}

// Close releases the port.
func (c *Conn) Close() error {
	if c == nil || c.port == nil {
		return nil
	}
	return c.port.Close()
}
