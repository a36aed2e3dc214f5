// Package ledger tracks outbound commands: rotating frame-id allocation,
// paced transmission, and correlation of delivery-status reports back to the
// command that earned them.
package ledger

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cansat-link/groundstation/internal/metrics"
	"github.com/cansat-link/groundstation/internal/protocol/xbee"
)

// State is a command's position in its lifecycle. There is no transition back
// to StateUnsent; an operator resend is a new entry.
type State int

const (
	StateUnsent State = iota
	StateAwaitingAck
	StateAcked
)

var stateText = map[State]string{
	StateUnsent:      "unsent",
	StateAwaitingAck: "awaiting_ack",
	StateAcked:       "acked",
}

func (s State) String() string { return stateText[s] }

// Command is a snapshot of one ledger entry.
type Command struct {
	Seq         uint64
	Text        string
	State       State
	FrameID     byte // meaningful once sent
	SubmittedAt time.Time
	SentAt      time.Time
	Status      xbee.DeliveryStatus // meaningful once acked
	LastStatus  xbee.DeliveryStatus // most recent report of any kind, informational
	HasStatus   bool
}

// Writer is the transmit half of the transport.
type Writer interface {
	WriteAll(p []byte) error
}

// Ledger holds commands in submission order. All methods are safe for
// concurrent use.
type Ledger struct {
	log  *zap.Logger
	m    *metrics.LinkMetrics
	dest uint16

	mu      sync.Mutex
	limiter *rate.Limiter
	nextSeq uint64
	nextID  byte
	entries []*Command
}

// New creates a ledger sending to dest with a minimum spacing between writes.
func New(log *zap.Logger, m *metrics.LinkMetrics, dest uint16, spacing time.Duration) *Ledger {
	return &Ledger{
		log:     log,
		m:       m,
		dest:    dest,
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
		nextSeq: 1,
		nextID:  1,
	}
}

// Submit appends a command for transmission and returns its sequence number.
func (l *Ledger) Submit(text string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, &Command{
		Seq:         seq,
		Text:        text,
		State:       StateUnsent,
		SubmittedAt: time.Now(),
	})
	l.m.CommandsSubmitted.Inc()
	l.log.Info("command submitted", zap.Uint64("seq", seq), zap.String("text", text))
	return seq
}

// TrySend writes the oldest unsent command to w, if the inter-send spacing
// has elapsed. A failed write leaves the command unsent and hands back both
// the spacing reservation and the frame id; the next call retries with the
// same id.
func (l *Ledger) TrySend(w Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var cmd *Command
	for _, e := range l.entries {
		if e.State == StateUnsent {
			cmd = e
			break
		}
	}
	if cmd == nil {
		return nil
	}

	res := l.limiter.Reserve()
	if res.Delay() > 0 {
		res.Cancel()
		return nil
	}

	id := l.nextID
	wire := xbee.TxRequest{FrameID: id, Dest: l.dest, Data: []byte(cmd.Text)}.Encode()
	if err := w.WriteAll(wire); err != nil {
		res.Cancel()
		l.log.Warn("command write failed, will retry",
			zap.Uint64("seq", cmd.Seq), zap.Error(err))
		return err
	}

	l.advanceID()
	cmd.State = StateAwaitingAck
	cmd.FrameID = id
	cmd.SentAt = time.Now()
	l.m.CommandsSent.Inc()
	l.log.Info("command sent",
		zap.Uint64("seq", cmd.Seq), zap.Uint8("frame_id", id), zap.String("text", cmd.Text))
	return nil
}

// advanceID moves past the id just used, skipping the reserved value 0.
// Callers hold l.mu.
func (l *Ledger) advanceID() {
	l.nextID++
	if l.nextID == 0 {
		l.nextID = 1
	}
}

// OnStatus correlates a delivery report with its command. Success
// acknowledges the newest awaiting entry with the matching id; ids are one
// byte and wrap quickly, so an older command sharing the id must lose the
// tie. Other outcomes are recorded on matching entries without a state
// change. Reports with no match are dropped.
func (l *Ledger) OnStatus(s xbee.TxStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s.Status.Success() {
		l.m.StatusTotal.WithLabelValues("success").Inc()
		for i := len(l.entries) - 1; i >= 0; i-- {
			e := l.entries[i]
			if e.State == StateAwaitingAck && e.FrameID == s.FrameID {
				e.State = StateAcked
				e.Status = s.Status
				e.LastStatus = s.Status
				e.HasStatus = true
				l.m.CommandsAcked.Inc()
				l.log.Info("command acknowledged",
					zap.Uint64("seq", e.Seq), zap.Uint8("frame_id", s.FrameID))
				return
			}
		}
		l.log.Debug("status for unknown frame id", zap.Uint8("frame_id", s.FrameID))
		return
	}

	l.m.StatusTotal.WithLabelValues("failure").Inc()
	matched := false
	for _, e := range l.entries {
		if e.State == StateAwaitingAck && e.FrameID == s.FrameID {
			e.LastStatus = s.Status
			e.HasStatus = true
			matched = true
		}
	}
	if matched {
		l.log.Warn("command delivery failed",
			zap.Uint8("frame_id", s.FrameID), zap.String("status", s.Status.String()))
	} else {
		l.log.Debug("status for unknown frame id",
			zap.Uint8("frame_id", s.FrameID), zap.String("status", s.Status.String()))
	}
}

// HasUnsent reports whether a command is waiting for transmission.
func (l *Ledger) HasUnsent() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.State == StateUnsent {
			return true
		}
	}
	return false
}

// Snapshot returns the command history in submission order.
func (l *Ledger) Snapshot() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Command, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}
