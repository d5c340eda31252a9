// internal/transport/errors.go
package transport

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for any transaction after the bus handle was released.
var ErrClosed = errors.New("transport: bus closed")

// TransportError is a bus open/transfer failure. It is never retried.
type TransportError struct {
	Op   string // "open", "read", "write", "close"
	Addr uint16
	Err  error
}

func (e *TransportError) Error() string {
	if e.Op == "open" || e.Op == "close" {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transport: %s addr=0x%02X: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a short or over-reported response frame.
type ProtocolError struct {
	Addr uint16
	Got  int
	Want int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: bad response length addr=0x%02X: got=%d want=%d bytes", e.Addr, e.Got, e.Want)
}
