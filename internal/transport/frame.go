// internal/transport/frame.go
package transport

// gpsdocfg SPI frame (4 bytes, one transaction):
//
//	write:    0x80 ADDR VALUE_HI VALUE_LO
//	read req: 0x00 ADDR 0x00     0x00
//	read rsp: xx   xx   VALUE_HI VALUE_LO
//
// ADDR is truncated to 8 bits on the wire.

// FrameLen is the size of every request and response frame.
const FrameLen = 4

const (
	opRead  byte = 0x00
	opWrite byte = 0x80
)

// EncodeRead builds a read request frame.
func EncodeRead(addr uint16) [FrameLen]byte {
	return [FrameLen]byte{opRead, byte(addr & 0xFF), 0x00, 0x00}
}

// EncodeWrite builds a write frame.
func EncodeWrite(addr, value uint16) [FrameLen]byte {
	return [FrameLen]byte{opWrite, byte(addr & 0xFF), byte(value >> 8), byte(value)}
}

// DecodeReadResponse extracts the register value from a read response.
// A short response is a ProtocolError, never a truncated value.
func DecodeReadResponse(addr uint16, resp []byte) (uint16, error) {
	if len(resp) < FrameLen {
		return 0, &ProtocolError{Addr: addr, Got: len(resp), Want: FrameLen}
	}
	return uint16(resp[2])<<8 | uint16(resp[3]), nil
}

// IsWrite reports whether a request frame is a write.
func IsWrite(frame []byte) bool {
	return len(frame) > 0 && frame[0]&opWrite != 0
}
