package link

import (
	"bytes"
	"strings"

	"github.com/cansat-link/groundstation/internal/protocol/xbee"
	"github.com/cansat-link/groundstation/internal/telemetry"
)

const (
	// defaultBufCap bounds the resynchronizer's working memory.
	defaultBufCap = 4096
	// maxFrameLen is the forced-progress window, a policy bound rather than
	// a wire limit: the length field could describe frames up to 64 KiB,
	// but real traffic tops out around a hundred bytes. When the buffer
	// fills with no viable start byte in its trailing maxFrameLen bytes,
	// the prefix is surrendered as invalid; a genuine frame longer than
	// this window would lose its head there.
	maxFrameLen = 512
)

// Resynchronizer recovers frame boundaries from an unbounded byte stream
// arriving in arbitrary-sized chunks. Bytes between recovered frames come out
// as KindInvalid events; decode failures at a candidate start byte are not
// errors, the frame may simply not have fully arrived yet.
type Resynchronizer struct {
	buf []byte
	n   int
}

// NewResynchronizer creates a resynchronizer with the given working buffer
// capacity; values too small to hold two maximum-size frames fall back to the
// default.
func NewResynchronizer(capacity int) *Resynchronizer {
	if capacity < 2*maxFrameLen {
		capacity = defaultBufCap
	}
	return &Resynchronizer{buf: make([]byte, capacity)}
}

// Feed appends bytes from the transport and returns every event that became
// decidable. The same total byte sequence yields the same events regardless
// of how it is split across calls.
func (r *Resynchronizer) Feed(p []byte) []Event {
	var events []Event
	for len(p) > 0 {
		take := min(len(r.buf)-r.n, len(p))
		copy(r.buf[r.n:], p[:take])
		r.n += take
		p = p[take:]

		events = r.scan(events)
		if r.n == len(r.buf) {
			events = r.forceProgress(events)
		}
	}
	return events
}

// Flush hands back whatever never framed, for salvage. Called when the
// transport disconnects.
func (r *Resynchronizer) Flush() []Event {
	if r.n == 0 {
		return nil
	}
	ev := invalidEvent(r.buf[:r.n])
	r.n = 0
	return []Event{ev}
}

// scan walks candidate start bytes in ascending order, decoding at each. A
// successful decode first emits any skipped gap as KindInvalid, then the
// classified frame. The consumed prefix is compacted away so offsets stay
// bounded by capacity.
func (r *Resynchronizer) scan(events []Event) []Event {
	parsed := 0
	i := 0
	for {
		c := bytes.IndexByte(r.buf[i:r.n], xbee.StartByte)
		if c < 0 {
			break
		}
		c += i
		f, consumed, err := xbee.Decode(r.buf[c:r.n])
		if err != nil {
			// Not a frame here, or not yet. Try the next candidate.
			i = c + 1
			continue
		}
		if c > parsed {
			events = append(events, invalidEvent(r.buf[parsed:c]))
		}
		events = append(events, classify(f))
		parsed = c + consumed
		i = parsed
	}
	if parsed > 0 {
		copy(r.buf, r.buf[parsed:r.n])
		r.n -= parsed
	}
	return events
}

// forceProgress runs when the buffer is completely full and the scan claimed
// nothing: the prefix before the trailing maxFrameLen window can never become
// part of a complete frame, so it is surrendered as one KindInvalid event up
// to the last start byte inside the window, or entirely if the window has
// none.
func (r *Resynchronizer) forceProgress(events []Event) []Event {
	window := r.n - maxFrameLen
	parsed := r.n
	if idx := bytes.LastIndexByte(r.buf[window:r.n], xbee.StartByte); idx >= 0 {
		parsed = window + idx
	}
	if parsed > 0 {
		events = append(events, invalidEvent(r.buf[:parsed]))
		copy(r.buf, r.buf[parsed:r.n])
		r.n -= parsed
	}
	return events
}

func invalidEvent(b []byte) Event {
	return Event{Kind: KindInvalid, Bytes: append([]byte{}, b...)}
}

// classify promotes a decoded frame to its event kind by type byte and
// payload sub-structure.
func classify(f xbee.Frame) Event {
	switch f.Type {
	case xbee.TypeRxPacket:
		p, err := xbee.ParseRxPacket(f)
		if err != nil {
			return Event{Kind: KindInvalidFrame, Frame: f}
		}
		line := strings.TrimRight(string(p.Data), "\r\n")
		if rec, err := telemetry.ParseRecord(line); err == nil {
			return Event{Kind: KindTelemetry, Frame: f, Record: rec}
		}
		return Event{Kind: KindReceived, Frame: f}
	case xbee.TypeTxStatus:
		s, err := xbee.ParseTxStatus(f)
		if err != nil {
			return Event{Kind: KindInvalidFrame, Frame: f}
		}
		return Event{Kind: KindStatus, Frame: f, Status: s}
	case xbee.TypeTxRequest:
		// Our own request looped back by the modem.
		return Event{Kind: KindReceived, Frame: f}
	default:
		return Event{Kind: KindUnrecognised, Frame: f}
	}
}
