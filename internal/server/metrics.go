package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus collectors on a private registry
type metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	routes       *prometheus.CounterVec
	solveSeconds prometheus.Histogram
	edgesRemoved prometheus.Counter
	graphNodes   prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dastar",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code",
		}, []string{"endpoint", "code"}),
		routes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dastar",
			Name:      "routes_total",
			Help:      "Path searches by outcome",
		}, []string{"result"}),
		solveSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dastar",
			Name:      "solve_duration_seconds",
			Help:      "Time spent in A* searches",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		edgesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "dastar",
			Name:      "edges_removed_total",
			Help:      "Edges removed from the live graph",
		}),
		graphNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dastar",
			Name:      "graph_nodes",
			Help:      "Nodes in the current graph",
		}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
