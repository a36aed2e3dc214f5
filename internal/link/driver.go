package link

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cansat-link/groundstation/internal/ledger"
	"github.com/cansat-link/groundstation/internal/metrics"
)

// DriverConfig tunes the driver's queues and loops.
type DriverConfig struct {
	// EventBacklog is the consumer channel capacity.
	EventBacklog int
	// BufferCap is the resynchronizer working buffer size.
	BufferCap int
	// SendPoll is how often the send loop offers the ledger a chance to
	// transmit; actual pacing is the ledger's spacing limiter.
	SendPoll time.Duration
}

func (c *DriverConfig) fillDefaults() {
	if c.EventBacklog <= 0 {
		c.EventBacklog = 1024
	}
	if c.SendPoll <= 0 {
		c.SendPoll = 50 * time.Millisecond
	}
}

// Driver owns the transport across reconnects. Each Attach bumps the link
// generation; the reader and sender started for an older generation observe
// the mismatch within one read timeout and exit, so a reopened link never
// races its predecessor on the medium.
type Driver struct {
	log *zap.Logger
	m   *metrics.LinkMetrics
	led *ledger.Ledger
	cfg DriverConfig

	gen atomic.Uint64

	mu       sync.Mutex
	handle   *Handle
	events   chan Event
	evClosed bool
}

// NewDriver creates a driver. Nothing runs until Attach.
func NewDriver(log *zap.Logger, m *metrics.LinkMetrics, led *ledger.Ledger, cfg DriverConfig) *Driver {
	cfg.fillDefaults()
	return &Driver{log: log, m: m, led: led, cfg: cfg}
}

// Events returns the consumer channel. It closes only when the current link
// dies on a fatal transport error or the driver is closed; a later Attach
// replaces it, so consumers re-fetch after reopening.
func (d *Driver) Events() <-chan Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.events == nil {
		d.events = make(chan Event, d.cfg.EventBacklog)
	}
	return d.events
}

// Submit queues a command for paced transmission.
func (d *Driver) Submit(text string) uint64 {
	return d.led.Submit(text)
}

// Generation returns the current link generation.
func (d *Driver) Generation() uint64 {
	return d.gen.Load()
}

// Attach takes ownership of t as the current link, superseding any previous
// transport, and starts the reader and sender for the new generation.
func (d *Driver) Attach(t Transport) uint64 {
	d.mu.Lock()
	gen := d.gen.Add(1)
	d.m.LinkGeneration.Set(float64(gen))
	old := d.handle
	h := NewHandle(t)
	d.handle = h
	if d.events == nil || d.evClosed {
		d.events = make(chan Event, d.cfg.EventBacklog)
		d.evClosed = false
	}
	d.mu.Unlock()

	if old != nil {
		old.Close()
	}
	go d.readLoop(gen, h)
	go d.sendLoop(gen, h)
	d.log.Info("link attached", zap.Uint64("generation", gen))
	return gen
}

// Close supersedes and releases the current link.
func (d *Driver) Close() {
	d.mu.Lock()
	d.gen.Add(1)
	h := d.handle
	d.handle = nil
	if d.events != nil && !d.evClosed {
		close(d.events)
		d.evClosed = true
	}
	d.mu.Unlock()
	if h != nil {
		h.Close()
	}
}

// readLoop pulls bytes, feeds the resynchronizer and dispatches events until
// superseded or the transport dies. Timeouts are the idle heartbeat that lets
// it re-check its generation.
func (d *Driver) readLoop(gen uint64, h *Handle) {
	resync := NewResynchronizer(d.cfg.BufferCap)
	buf := make([]byte, 1024)
	for d.gen.Load() == gen {
		n, err := h.Read(buf)
		if n > 0 {
			d.m.BytesRead.Add(float64(n))
			for _, ev := range resync.Feed(buf[:n]) {
				d.dispatch(gen, ev)
			}
		}
		if err == nil || IsTimeout(err) {
			continue
		}
		if errors.Is(err, ErrHandleClosed) || d.gen.Load() != gen {
			return
		}

		d.log.Error("link read failed", zap.Uint64("generation", gen), zap.Error(err))
		for _, ev := range resync.Flush() {
			d.dispatch(gen, ev)
		}
		d.fail(gen, h)
		return
	}
}

// sendLoop periodically offers the ledger the transport for the next unsent
// command.
func (d *Driver) sendLoop(gen uint64, h *Handle) {
	t := time.NewTicker(d.cfg.SendPoll)
	defer t.Stop()
	for range t.C {
		if d.gen.Load() != gen {
			return
		}
		if err := d.led.TrySend(h); err != nil {
			if errors.Is(err, ErrHandleClosed) {
				return
			}
			d.log.Warn("command send failed", zap.Error(err))
		}
	}
}

// dispatch routes one event: statuses to the ledger, everything to the
// consumer channel. A full channel drops rather than blocking the reader.
func (d *Driver) dispatch(gen uint64, ev Event) {
	d.m.Events.WithLabelValues(string(ev.Kind)).Inc()
	switch ev.Kind {
	case KindStatus:
		d.led.OnStatus(ev.Status)
	case KindInvalid:
		d.m.InvalidBytes.Add(float64(len(ev.Bytes)))
	case KindTelemetry:
		d.m.TelemetryTotal.WithLabelValues(string(ev.Record.Family()), "frame").Inc()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen.Load() != gen || d.evClosed {
		return
	}
	select {
	case d.events <- ev:
	default:
		d.m.EventQueueDrops.Inc()
		d.log.Warn("event queue full, dropping", zap.String("kind", string(ev.Kind)))
	}
}

// fail ends telemetry flow for the generation that hit a fatal transport
// error. The closed channel is the consumer's cue to offer reopening.
func (d *Driver) fail(gen uint64, h *Handle) {
	h.Close()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen.Load() != gen || d.evClosed {
		return
	}
	close(d.events)
	d.evClosed = true
	d.handle = nil
}
