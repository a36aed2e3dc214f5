package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry creates the station's Prometheus registry with the usual
// process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the metrics HTTP handler for the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// LinkMetrics covers the radio link: bytes, recovered frames, salvage and the
// command ledger.
type LinkMetrics struct {
	BytesRead       prometheus.Counter
	Events          *prometheus.CounterVec // labels: kind
	InvalidBytes    prometheus.Counter
	TelemetryTotal  *prometheus.CounterVec // labels: family, source=frame|salvage
	StatusTotal     *prometheus.CounterVec // labels: result=success|failure
	EventQueueDrops prometheus.Counter
	LinkGeneration  prometheus.Gauge

	CommandsSubmitted prometheus.Counter
	CommandsSent      prometheus.Counter
	CommandsAcked     prometheus.Counter
}

// NewLinkMetrics registers and returns the link metrics.
func NewLinkMetrics(reg *prometheus.Registry) *LinkMetrics {
	m := &LinkMetrics{
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_bytes_read_total",
			Help: "Total bytes read from the radio transport.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_events_total",
			Help: "Resynchronizer events by kind.",
		}, []string{"kind"}),
		InvalidBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_invalid_bytes_total",
			Help: "Bytes that failed framing and went to salvage.",
		}),
		TelemetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_records_total",
			Help: "Recovered telemetry records by family and source.",
		}, []string{"family", "source"}),
		StatusTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "link_tx_status_total",
			Help: "Delivery status reports by result.",
		}, []string{"result"}),
		EventQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_event_queue_drops_total",
			Help: "Events dropped because the consumer queue was full.",
		}),
		LinkGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "link_generation",
			Help: "Current link generation counter.",
		}),
		CommandsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commands_submitted_total",
			Help: "Commands submitted to the ledger.",
		}),
		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commands_sent_total",
			Help: "Commands written to the radio.",
		}),
		CommandsAcked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "commands_acked_total",
			Help: "Commands acknowledged by a delivery status.",
		}),
	}
	reg.MustRegister(
		m.BytesRead, m.Events, m.InvalidBytes, m.TelemetryTotal, m.StatusTotal,
		m.EventQueueDrops, m.LinkGeneration,
		m.CommandsSubmitted, m.CommandsSent, m.CommandsAcked,
	)
	return m
}
