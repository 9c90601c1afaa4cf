package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roomrelay"

// Metrics holds the hub collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	connections prometheus.Gauge
	sessions    prometheus.Gauge
	rooms       prometheus.Gauge
	requests    *prometheus.CounterVec
	emitted     *prometheus.CounterVec
	dropped     prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live connections attached to the hub.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Connections currently joined to a room.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms with at least one member.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Inbound requests by event and ack status.",
		}, []string{"event", "status"}),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Outbound events queued to connections, by kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Outbound events dropped because a connection queue was full or gone.",
		}),
	}
	reg.MustRegister(m.connections, m.sessions, m.rooms, m.requests, m.emitted, m.dropped)
	return m
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.connections.Set(float64(n))
}

// SetOccupancy records the size of both registries.
func (m *Metrics) SetOccupancy(sessions, rooms int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(sessions))
	m.rooms.Set(float64(rooms))
}

func (m *Metrics) Request(event, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(event, status).Inc()
}

func (m *Metrics) Emitted(kind string) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
