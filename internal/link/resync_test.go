package link

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cansat-link/groundstation/internal/protocol/xbee"
)

const goldenLine = "1047,15:12:02.99,123,F,YEETED,356.2,P,C,N,37.8,5.1,15:12:03,1623.3,37.2249,-80.4249,14,2.36,-5.49,CXON"

func telemetryFrame(line string) []byte {
	payload := append([]byte{0x00, 0x01, 0x28, 0x00}, []byte(line)...)
	return xbee.Frame{Type: xbee.TypeRxPacket, Payload: payload}.Encode()
}

func statusFrame(id byte, status byte) []byte {
	return xbee.Frame{Type: xbee.TypeTxStatus, Payload: []byte{id, status}}.Encode()
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestResync_BackToBackFrames(t *testing.T) {
	r := NewResynchronizer(0)
	stream := append(telemetryFrame(goldenLine), statusFrame(7, 0x00)...)

	events := r.Feed(stream)
	require.Equal(t, []EventKind{KindTelemetry, KindStatus}, kinds(events))
	assert.Equal(t, goldenLine, events[0].Record.Format())
	assert.Equal(t, byte(7), events[1].Status.FrameID)
	assert.True(t, events[1].Status.Status.Success())
}

func TestResync_NoiseTolerance(t *testing.T) {
	noise1 := []byte{0x00, 0xFF, 0x13, 0x37}
	noise2 := []byte{0x01, 0x02, 0x03}

	var stream []byte
	stream = append(stream, noise1...)
	stream = append(stream, telemetryFrame(goldenLine)...)
	stream = append(stream, noise2...)
	stream = append(stream, statusFrame(1, 0x00)...)
	stream = append(stream, statusFrame(2, 0x01)...)

	events := NewResynchronizer(0).Feed(stream)
	require.Equal(t, []EventKind{
		KindInvalid, KindTelemetry, KindInvalid, KindStatus, KindStatus,
	}, kinds(events))
	assert.Equal(t, noise1, events[0].Bytes)
	assert.Equal(t, noise2, events[2].Bytes)
}

func TestResync_ChunkingIndependence(t *testing.T) {
	var stream []byte
	stream = append(stream, 0xDE, 0xAD)
	stream = append(stream, telemetryFrame(goldenLine)...)
	stream = append(stream, 0x00)
	stream = append(stream, statusFrame(3, 0x00)...)
	stream = append(stream, telemetryFrame("1047,15:12:04.10,17,T,102.4,26.0,4.9,R,RELEASED")...)

	whole := NewResynchronizer(0).Feed(stream)

	r := NewResynchronizer(0)
	var byteAtATime []Event
	for _, b := range stream {
		byteAtATime = append(byteAtATime, r.Feed([]byte{b})...)
	}
	assert.Equal(t, whole, byteAtATime)

	rng := rand.New(rand.NewSource(42))
	r = NewResynchronizer(0)
	var chunked []Event
	for rest := stream; len(rest) > 0; {
		n := 1 + rng.Intn(len(rest))
		chunked = append(chunked, r.Feed(rest[:n])...)
		rest = rest[n:]
	}
	assert.Equal(t, whole, chunked)
}

func TestResync_TruncatedFrameCompletesLater(t *testing.T) {
	r := NewResynchronizer(0)
	wire := telemetryFrame(goldenLine)

	assert.Empty(t, r.Feed(wire[:10]))
	events := r.Feed(wire[10:])
	require.Equal(t, []EventKind{KindTelemetry}, kinds(events))
}

func TestResync_CorruptedFrameBecomesInvalid(t *testing.T) {
	bad := statusFrame(5, 0x00)
	bad[len(bad)-1] ^= 0xFF // break the checksum
	stream := append(bad, statusFrame(6, 0x00)...)

	events := NewResynchronizer(0).Feed(stream)
	require.Equal(t, []EventKind{KindInvalid, KindStatus}, kinds(events))
	assert.Equal(t, bad, events[0].Bytes)
	assert.Equal(t, byte(6), events[1].Status.FrameID)
}

func TestResync_LengthQuirkInStream(t *testing.T) {
	body := append([]byte{xbee.TypeRxPacket}, []byte("0123456789abcdef")...)
	sum := byte(0)
	for _, b := range body {
		sum += b
	}
	quirk := []byte{0x7E, 0x00, 0x7D, 0x31}
	quirk = append(quirk, body...)
	quirk = append(quirk, 0xFF-sum)

	stream := append(quirk, statusFrame(9, 0x00)...)
	events := NewResynchronizer(0).Feed(stream)
	require.Equal(t, []EventKind{KindReceived, KindStatus}, kinds(events))
	assert.Equal(t, []byte("0123456789abcdef"), events[0].Frame.Payload)
}

func TestResync_Classification(t *testing.T) {
	unknown := xbee.Frame{Type: 0x42, Payload: []byte{1, 2, 3}}.Encode()
	notTelemetry := telemetryFrame("hello there")
	shortStatus := xbee.Frame{Type: xbee.TypeTxStatus, Payload: []byte{0x05}}.Encode()
	loopback := xbee.TxRequest{FrameID: 1, Dest: xbee.ContainerAddr, Data: []byte("CMD,1047,CAL")}.Encode()

	var stream []byte
	stream = append(stream, unknown...)
	stream = append(stream, notTelemetry...)
	stream = append(stream, shortStatus...)
	stream = append(stream, loopback...)

	events := NewResynchronizer(0).Feed(stream)
	require.Equal(t, []EventKind{
		KindUnrecognised, KindReceived, KindInvalidFrame, KindReceived,
	}, kinds(events))
}

func TestResync_ForcedProgress(t *testing.T) {
	r := NewResynchronizer(2 * maxFrameLen)

	// A buffer full of never-framing bytes must not wedge the stream.
	garbage := make([]byte, 2*maxFrameLen)
	events := r.Feed(garbage)
	require.Equal(t, []EventKind{KindInvalid}, kinds(events))
	assert.Len(t, events[0].Bytes, 2*maxFrameLen)

	events = r.Feed(statusFrame(1, 0x00))
	require.Equal(t, []EventKind{KindStatus}, kinds(events))
}

func TestResync_ForcedProgressKeepsTrailingCandidate(t *testing.T) {
	r := NewResynchronizer(2 * maxFrameLen)
	wire := telemetryFrame(goldenLine)

	// Garbage right up to a partial frame that fills the buffer: the prefix
	// is surrendered, the candidate survives and completes.
	head := 2*maxFrameLen - 10
	stream := append(make([]byte, head), wire[:10]...)
	events := r.Feed(stream)
	require.Equal(t, []EventKind{KindInvalid}, kinds(events))
	assert.Len(t, events[0].Bytes, head)

	events = r.Feed(wire[10:])
	require.Equal(t, []EventKind{KindTelemetry}, kinds(events))
	assert.Equal(t, goldenLine, events[0].Record.Format())
}

func TestResync_Flush(t *testing.T) {
	r := NewResynchronizer(0)
	wire := telemetryFrame(goldenLine)

	assert.Empty(t, r.Feed(wire[:20]))
	events := r.Flush()
	require.Equal(t, []EventKind{KindInvalid}, kinds(events))
	assert.Equal(t, wire[:20], events[0].Bytes)
	assert.Empty(t, r.Flush())
}
