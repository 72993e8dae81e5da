// Package metrics provides the Prometheus instruments of the robot server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stanbot"

type Metrics struct {
	Clicks            prometheus.Counter
	Resets            prometheus.Counter
	Random            prometheus.Counter
	Fallbacks         prometheus.Counter
	HandshakeFailures prometheus.Counter
	Sessions          prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers all instruments with reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Clicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Number of clicks on the robot",
		}),
		Resets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Number of session resets",
		}),
		Random: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "random_total",
			Help:      "Number of quotes served without a session",
		}),
		Fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_total",
			Help:      "Number of times the fallback text was served because no quotes are configured",
		}),
		HandshakeFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshake_failures_total",
			Help:      "Number of connections rejected during the proof of work handshake",
		}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of live sessions",
		}),
		gatherer: reg,
	}
}

// NewNop returns instruments registered with a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
