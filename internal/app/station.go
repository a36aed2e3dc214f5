// Package app wires the link driver, salvage, telemetry log and command
// ledger into the running ground station.
package app

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cansat-link/groundstation/internal/config"
	"github.com/cansat-link/groundstation/internal/ledger"
	"github.com/cansat-link/groundstation/internal/link"
	"github.com/cansat-link/groundstation/internal/metrics"
	"github.com/cansat-link/groundstation/internal/telemetry"
	"github.com/cansat-link/groundstation/internal/telemlog"
)

// redialDelay spaces connection attempts to the modem bridge.
const redialDelay = time.Second

// Station consumes link events and aggregates the state the operator API
// serves: the latest record per telemetry family, event counts and the
// command ledger.
type Station struct {
	log      *zap.Logger
	m        *metrics.LinkMetrics
	driver   *link.Driver
	ledger   *ledger.Ledger
	salvager *link.Salvager
	tlog     *telemlog.Writer
	linkCfg  config.LinkConfig
	runID    string

	mu       sync.RWMutex
	latest   map[telemetry.Family]telemetry.Record
	counts   map[link.EventKind]uint64
	salvaged uint64
}

// Snapshot is a point-in-time view of the station state.
type Snapshot struct {
	RunID      string
	Generation uint64
	Counts     map[link.EventKind]uint64
	Salvaged   uint64
	Latest     map[telemetry.Family]telemetry.Record
}

// New assembles a station. tlog may be nil when persistence is disabled.
func New(log *zap.Logger, m *metrics.LinkMetrics, cfg config.LinkConfig, tlog *telemlog.Writer) *Station {
	led := ledger.New(log, m, cfg.DestAddr, cfg.SendSpacing)
	return &Station{
		log:    log,
		m:      m,
		driver: link.NewDriver(log, m, led, link.DriverConfig{
			EventBacklog: cfg.EventBacklog,
			BufferCap:    cfg.BufferSize,
		}),
		ledger:   led,
		salvager: link.NewSalvager(cfg.TeamID),
		tlog:     tlog,
		linkCfg:  cfg,
		runID:    uuid.NewString(),
		latest:   make(map[telemetry.Family]telemetry.Record),
		counts:   make(map[link.EventKind]uint64),
	}
}

// RunID identifies this station process.
func (s *Station) RunID() string { return s.runID }

// Ledger exposes command history and submission state.
func (s *Station) Ledger() *ledger.Ledger { return s.ledger }

// Driver exposes the link driver, mainly for tests and manual attachment.
func (s *Station) Driver() *link.Driver { return s.driver }

// Submit queues a command string for transmission.
func (s *Station) Submit(text string) uint64 {
	return s.driver.Submit(text)
}

// Linked reports whether a transport has ever been attached.
func (s *Station) Linked() bool {
	return s.driver.Generation() > 0
}

// Run dials the modem bridge, consumes events until the link dies, and
// redials. It returns when ctx is cancelled.
func (s *Station) Run(ctx context.Context) {
	var dialer net.Dialer
	for ctx.Err() == nil {
		conn, err := dialer.DialContext(ctx, "tcp", s.linkCfg.Addr)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warn("modem dial failed", zap.String("addr", s.linkCfg.Addr), zap.Error(err))
			select {
			case <-time.After(redialDelay):
			case <-ctx.Done():
			}
			continue
		}

		s.driver.Attach(link.NewConnTransport(conn, s.linkCfg.ReadTimeout, s.linkCfg.WriteTimeout))
		s.Consume(ctx)
	}
	s.driver.Close()
}

// Consume drains the driver's event channel until it closes (fatal link
// loss) or ctx is cancelled.
func (s *Station) Consume(ctx context.Context) {
	ch := s.driver.Events()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				s.log.Warn("link lost", zap.Uint64("generation", s.driver.Generation()))
				return
			}
			s.handle(ev)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Station) handle(ev link.Event) {
	s.mu.Lock()
	s.counts[ev.Kind]++
	s.mu.Unlock()

	switch ev.Kind {
	case link.KindTelemetry:
		s.record(ev.Record, "frame")
	case link.KindInvalid:
		for _, rec := range s.salvager.Scan(ev.Bytes) {
			s.m.TelemetryTotal.WithLabelValues(string(rec.Family()), "salvage").Inc()
			s.mu.Lock()
			s.salvaged++
			s.mu.Unlock()
			s.log.Info("telemetry salvaged from unframed bytes",
				zap.String("family", string(rec.Family())))
			s.record(rec, "salvage")
		}
	case link.KindInvalidFrame, link.KindUnrecognised:
		s.log.Debug("non-telemetry frame",
			zap.String("kind", string(ev.Kind)), zap.Uint8("type", ev.Frame.Type))
	}
}

func (s *Station) record(rec telemetry.Record, source string) {
	if s.tlog != nil {
		if err := s.tlog.Append(rec); err != nil {
			s.log.Error("telemetry log append failed", zap.Error(err))
		}
	}
	s.mu.Lock()
	s.latest[rec.Family()] = rec
	s.mu.Unlock()
	s.log.Debug("telemetry recorded",
		zap.String("family", string(rec.Family())), zap.String("source", source))
}

// Snapshot returns the current aggregated state.
func (s *Station) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		RunID:      s.runID,
		Generation: s.driver.Generation(),
		Counts:     make(map[link.EventKind]uint64, len(s.counts)),
		Salvaged:   s.salvaged,
		Latest:     make(map[telemetry.Family]telemetry.Record, len(s.latest)),
	}
	for k, v := range s.counts {
		snap.Counts[k] = v
	}
	for k, v := range s.latest {
		snap.Latest[k] = v
	}
	return snap
}
