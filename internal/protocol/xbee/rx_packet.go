package xbee

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrWrongFrameType reports a typed-view conversion applied to a frame
	// of a different type.
	ErrWrongFrameType = errors.New("wrong frame type")
	// ErrShortPayload reports a frame payload too small for its declared
	// sub-structure.
	ErrShortPayload = errors.New("payload too short")
)

// RxPacket is the typed view of a TypeRxPacket frame: data received over the
// air, with the sender's address and signal strength.
type RxPacket struct {
	SrcAddr uint16
	RSSI    int8
	Options byte
	Data    []byte
}

// ParseRxPacket interprets the payload of an 0x81 frame.
func ParseRxPacket(f Frame) (RxPacket, error) {
	if f.Type != TypeRxPacket {
		return RxPacket{}, ErrWrongFrameType
	}
	if len(f.Payload) < 4 {
		return RxPacket{}, ErrShortPayload
	}
	return RxPacket{
		SrcAddr: binary.BigEndian.Uint16(f.Payload[0:2]),
		RSSI:    int8(f.Payload[2]),
		Options: f.Payload[3],
		Data:    f.Payload[4:],
	}, nil
}

func (p RxPacket) String() string {
	return fmt.Sprintf("RxPacket{src: %02X:%02X, rssi: -%ddBm, options: %02d, data: %q}",
		p.SrcAddr>>8, p.SrcAddr&0xFF, p.RSSI, p.Options, p.Data)
}
