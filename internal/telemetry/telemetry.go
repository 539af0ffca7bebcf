// Package telemetry holds the Prometheus counters/gauges the pipeline
// exports, and an HTTP exporter for /metrics. The consumer updates
// EventsIngested, EventsDropped and SuspiciousCount; GraphSize,
// StringPoolSize, ArenaUsedBytes and DispatchLatency are registered but
// nothing in the pipeline sets them.
package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every metric the pipeline records.
type Metrics struct {
	EventsIngested  *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec
	SuspiciousCount *prometheus.CounterVec
	GraphSize       prometheus.Gauge
	StringPoolSize  prometheus.Gauge
	ArenaUsedBytes  prometheus.Gauge
	DispatchLatency *prometheus.HistogramVec
}

// New creates and registers every metric against the default registry.
func New() *Metrics {
	return &Metrics{
		EventsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exeray_events_ingested_total",
				Help: "Total raw events successfully parsed and pushed into the graph, by category",
			},
			[]string{"category"},
		),
		EventsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exeray_events_dropped_total",
				Help: "Total raw events dropped, by reason (parse_failed, graph_full; events from an unrecognized provider count as parse_failed)",
			},
			[]string{"reason"},
		),
		SuspiciousCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exeray_suspicious_events_total",
				Help: "Total events flagged suspicious by a heuristic detector, by category",
			},
			[]string{"category"},
		),
		GraphSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "exeray_graph_node_count",
				Help: "Current number of nodes held in the event graph",
			},
		),
		StringPoolSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "exeray_stringpool_entries",
				Help: "Current number of distinct strings interned",
			},
		),
		ArenaUsedBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "exeray_arena_used_bytes",
				Help: "Current number of bytes allocated out of the shared arena",
			},
		),
		DispatchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exeray_dispatch_duration_seconds",
				Help:    "Time spent parsing and pushing a single raw event",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
	}
}

// Serve starts an HTTP server exposing /metrics and blocks until ctx is
// cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
