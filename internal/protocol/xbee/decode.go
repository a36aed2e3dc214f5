package xbee

import (
	"encoding/binary"
	"errors"
)

var (
	// ErrBadStartByte reports that the buffer does not begin with 0x7E.
	ErrBadStartByte = errors.New("bad start byte")
	// ErrTruncated reports that the buffer ends before the frame does. A
	// later read may still complete the frame.
	ErrTruncated = errors.New("truncated frame")
	// ErrChecksumMismatch reports a frame whose trailing checksum does not
	// match its body.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrBadLength reports an unusable length field, including the escape
	// artifact sequence 0x007D followed by anything other than 0x31.
	ErrBadLength = errors.New("bad length field")
)

// Escape artifact of the transport: the length bytes 0x00 0x7D followed by a
// literal 0x31 are the escaped form of length 0x0011 and must be folded back
// before normal decoding. Any other byte after 0x007D is unusable.
const (
	escapedLen   = 0x007D
	escapeMark   = 0x31
	unescapedLen = 0x0011
)

// Decode attempts to read exactly one frame from the start of b. On success it
// returns the frame and the number of bytes it occupied on the wire, which
// callers must use to advance (the escape artifact makes the wire size differ
// from the length field by one extra byte). Decode never panics on malformed
// input.
func Decode(b []byte) (Frame, int, error) {
	if len(b) == 0 {
		return Frame{}, 0, ErrTruncated
	}
	if b[0] != StartByte {
		return Frame{}, 0, ErrBadStartByte
	}
	if len(b) < 3 {
		return Frame{}, 0, ErrTruncated
	}

	length := int(binary.BigEndian.Uint16(b[1:3]))
	body := 3
	if length == escapedLen {
		if len(b) < 4 {
			return Frame{}, 0, ErrTruncated
		}
		if b[3] != escapeMark {
			return Frame{}, 0, ErrBadLength
		}
		length = unescapedLen
		body = 4
	}
	if length < 1 {
		return Frame{}, 0, ErrBadLength
	}
	// body = type byte + (length-1) payload bytes, then the checksum
	end := body + length
	if len(b) < end+1 {
		return Frame{}, 0, ErrTruncated
	}

	sum := byte(0)
	for _, x := range b[body:end] {
		sum += x
	}
	if b[end] != 0xFF-sum {
		return Frame{}, 0, ErrChecksumMismatch
	}

	payload := make([]byte, length-1)
	copy(payload, b[body+1:end])
	return Frame{Type: b[body], Payload: payload}, end + 1, nil
}
