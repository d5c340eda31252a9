// internal/transport/uart/uart_test.go
package uart

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// fakePort echoes a canned response for each request.
type fakePort struct {
	written bytes.Buffer
	resp    *bytes.Reader
	closed  bool
}

func (f *fakePort) Write(p []byte) (int, error) { return f.written.Write(p) }
func (f *fakePort) Read(p []byte) (int, error)  { return f.resp.Read(p) }
func (f *fakePort) Close() error                { f.closed = true; return nil }

func TestTx_WritesRequestReadsFrame(t *testing.T) {
	p := &fakePort{resp: bytes.NewReader([]byte{0x00, 0x11, 0x01, 0x80})}
	c := NewConn(p)

	r := make([]byte, 4)
	n, err := c.Tx([]byte{0x00, 0x11, 0x00, 0x00}, r)
	if err != nil {
		t.Fatalf("Tx err=%v", err)
	}
	if n != 4 {
		t.Fatalf("n got=%d want=4", n)
	}
	if !bytes.Equal(p.written.Bytes(), []byte{0x00, 0x11, 0x00, 0x00}) {
		t.Fatalf("written got=% X", p.written.Bytes())
	}
	if r[2] != 0x01 || r[3] != 0x80 {
		t.Fatalf("response got=% X", r)
	}
}

func TestTx_ShortResponseReportsCount(t *testing.T) {
	p := &fakePort{resp: bytes.NewReader([]byte{0x00, 0x11})}
	c := NewConn(p)

	n, err := c.Tx([]byte{0x00, 0x11, 0x00, 0x00}, make([]byte, 4))
	if err != nil {
		t.Fatalf("short response must not be a transport failure: %v", err)
	}
	if n != 2 {
		t.Fatalf("n got=%d want=2", n)
	}
}

func TestTx_NoResponseIsError(t *testing.T) {
	p := &fakePort{resp: bytes.NewReader(nil)}
	c := NewConn(p)

	_, err := c.Tx([]byte{0x80, 0x00, 0x00, 0x01}, make([]byte, 4))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestClose(t *testing.T) {
	p := &fakePort{resp: bytes.NewReader(nil)}
	c := NewConn(p)
	if err := c.Close(); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if !p.closed {
		t.Fatalf("port not closed")
	}
}
