// Package xbee implements the modem's API frame format: start-delimited,
// length-prefixed binary frames with an 8-bit additive checksum. It is a pure
// codec; stream resynchronization lives in internal/link.
package xbee

import "encoding/binary"

// StartByte delimits every frame on the wire.
const StartByte = 0x7E

// Recognized frame types. Everything else is surfaced as unrecognised by the
// stream layer.
const (
	TypeTxRequest = 0x01 // outbound transmit request
	TypeRxPacket  = 0x81 // inbound received data
	TypeTxStatus  = 0x89 // inbound delivery status report
)

// Well-known 16-bit link addresses.
const (
	ContainerAddr = 0x0001
	ProbeAddr     = 0x0002
	BroadcastAddr = 0xFFFF
)

// Frame is one decoded unit of the wire protocol. The length and checksum
// fields of the encoding are derived, not stored.
type Frame struct {
	Type    byte
	Payload []byte
}

// Checksum returns the trailing checksum byte for the frame: 0xFF minus the
// wrapping 8-bit sum of the type byte and every payload byte.
func (f Frame) Checksum() byte {
	sum := f.Type
	for _, b := range f.Payload {
		sum += b
	}
	return 0xFF - sum
}

// WireLen returns the encoded size of the frame in bytes.
func (f Frame) WireLen() int {
	return 1 + 2 + 1 + len(f.Payload) + 1
}

// Encode serialises the frame: 0x7E | len(u16 BE) | type | payload | checksum,
// where len counts the type byte plus the payload.
func (f Frame) Encode() []byte {
	out := make([]byte, 0, f.WireLen())
	out = append(out, StartByte)
	out = binary.BigEndian.AppendUint16(out, uint16(1+len(f.Payload)))
	out = append(out, f.Type)
	out = append(out, f.Payload...)
	out = append(out, f.Checksum())
	return out
}
