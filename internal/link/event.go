// Package link binds a radio transport to the frame codec: stream
// resynchronization, salvage of telemetry from unframeable bytes, and the
// driver that owns the transport across reconnects.
package link

import (
	"github.com/cansat-link/groundstation/internal/protocol/xbee"
	"github.com/cansat-link/groundstation/internal/telemetry"
)

// EventKind tags the outcome of one resynchronization attempt.
type EventKind string

const (
	// KindTelemetry is a receive frame whose payload parsed as a record.
	KindTelemetry EventKind = "telemetry"
	// KindReceived is a recognised frame whose payload is not telemetry.
	KindReceived EventKind = "received"
	// KindStatus is a delivery-status report.
	KindStatus EventKind = "status"
	// KindInvalidFrame is a frame that decoded but whose payload fails its
	// declared sub-structure.
	KindInvalidFrame EventKind = "invalid_frame"
	// KindUnrecognised is a well-formed frame of an unknown type.
	KindUnrecognised EventKind = "unrecognised"
	// KindInvalid is a run of bytes that never framed; salvage input.
	KindInvalid EventKind = "invalid"
)

// Event is one item recovered from the byte stream. Frame is set for every
// kind except KindInvalid; Record only for KindTelemetry, Status only for
// KindStatus, Bytes only for KindInvalid.
type Event struct {
	Kind   EventKind
	Frame  xbee.Frame
	Record telemetry.Record
	Status xbee.TxStatus
	Bytes  []byte
}
