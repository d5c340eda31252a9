// internal/transport/uart/uart.go
package uart

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Conn implements transport.Conn over a UART-to-SPI bridge.
// The bridge clocks every written byte out on MOSI and returns the MISO byte,
// so a request of n bytes always yields a response of n bytes.
type Conn struct {
	port io.ReadWriteCloser
}

// Config is minimal serial port config.
type Config struct {
	Address  string
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
	Timeout  time.Duration // bounds each response read
}

// Open opens the serial port.
func Open(cfg Config) (*Conn, error) {
	if cfg.Address == "" {
		return nil, errors.New("uart: address required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	p, err := serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("uart: open %s: %w", cfg.Address, err)
	}

	return &Conn{port: p}, nil
}

// NewConn wraps an already open port.
func NewConn(port io.ReadWriteCloser) *Conn {
	return &Conn{port: port}
}

// Tx writes w in full then reads len(r) bytes back.
// A timeout mid-response returns the bytes received so far.
func (c *Conn) Tx(w, r []byte) (int, error) {
	if c == nil || c.port == nil {
		return 0, errors.New("uart: not connected")
	}
	if err := writeAll(c.port, w); err != nil {
		return 0, fmt.Errorf("uart: write: %w", err)
	}
	if len(r) == 0 {
		return 0, nil
	}

	n, err := io.ReadFull(c.port, r)
	if err != nil {
		if n > 0 && (errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, serial.ErrTimeout)) {
			return n, nil
		}
		return n, fmt.Errorf("uart: read: %w", err)
	}
	return n, nil
}

// Close closes the port.
func (c *Conn) Close() error {
	if c == nil || c.port == nil {
		return nil
	}
	return c.port.Close()
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
