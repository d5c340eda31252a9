// internal/transport/transport.go
package transport

import (
	"sync"

	"github.com/rs/zerolog"
)

// Conn is an exclusive full-duplex bus handle.
// Tx sends w and fills r within one transaction and returns the number of bytes received.
type Conn interface {
	Tx(w, r []byte) (int, error)
	Close() error
}

// Transport executes single register transactions over an owned Conn.
// It is geometry-only: frames in, 16-bit values out. No retries.
type Transport struct {
	mu     sync.Mutex
	conn   Conn
	closed bool
	log    zerolog.Logger
}

// New takes ownership of conn. The caller must Close the Transport exactly once.
func New(conn Conn, log zerolog.Logger) *Transport {
	return &Transport{conn: conn, log: log}
}

// ReadRegister performs one read transaction.
func (t *Transport) ReadRegister(addr uint16) (uint16, error) {
	req := EncodeRead(addr)
	var resp [FrameLen]byte

	n, err := t.tx("read", addr, req[:], resp[:])
	if err != nil {
		return 0, err
	}

	v, err := DecodeReadResponse(addr, resp[:n])
	if err != nil {
		return 0, err
	}

	t.log.Trace().Uint16("addr", addr).Uint16("value", v).Msg("read")
	return v, nil
}

// WriteRegister performs one write transaction. The response bytes are not consulted.
func (t *Transport) WriteRegister(addr, value uint16) error {
	req := EncodeWrite(addr, value)
	var resp [FrameLen]byte

	if _, err := t.tx("write", addr, req[:], resp[:]); err != nil {
		return err
	}

	t.log.Trace().Uint16("addr", addr).Uint16("value", value).Msg("write")
	return nil
}

func (t *Transport) tx(op string, addr uint16, w, r []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.conn == nil {
		return 0, &TransportError{Op: op, Addr: addr, Err: ErrClosed}
	}

	n, err := t.conn.Tx(w, r)
	if err != nil {
		return n, &TransportError{Op: op, Addr: addr, Err: err}
	}
	if n < 0 || n > len(r) {
		return 0, &ProtocolError{Addr: addr, Got: n, Want: FrameLen}
	}
	return n, nil
}

// Close releases the bus handle. Calls after the first are no-ops.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.conn == nil {
		t.closed = true
		return nil
	}
	t.closed = true

	if err := t.conn.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}
