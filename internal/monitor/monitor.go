// Package monitor exposes prometheus metrics for the server.
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	onlinePlayers    prometheus.Gauge
	activeGames      prometheus.Gauge
	messagesReceived prometheus.Counter
	messageLatency   prometheus.Histogram
}

// Monitor tracks server-level gauges and counters and serves them
// over HTTP.
type Monitor struct {
	metrics   metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	m := &Monitor{
		metrics: metrics{
			onlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "online_players",
				Help:      "Number of connected players",
			}),
			activeGames: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_games",
				Help:      "Number of games held in memory",
			}),
			messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_received_total",
				Help:      "Total number of client messages received",
			}),
			messageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_latency_seconds",
				Help:      "Message processing latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
			}),
		},
		startTime: time.Now(),
	}

	prometheus.MustRegister(
		m.metrics.onlinePlayers,
		m.metrics.activeGames,
		m.metrics.messagesReceived,
		m.metrics.messageLatency,
	)
	return m
}

// StartServer serves /metrics on its own listener.
func (m *Monitor) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(addr, mux)
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.onlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.onlinePlayers.Dec()
}

func (m *Monitor) SetActiveGames(count int) {
	m.metrics.activeGames.Set(float64(count))
}

func (m *Monitor) IncMessagesReceived() {
	m.metrics.messagesReceived.Inc()
}

func (m *Monitor) ObserveMessageLatency(d time.Duration) {
	m.metrics.messageLatency.Observe(d.Seconds())
}

func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.startTime)
}
