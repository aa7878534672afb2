// Package metrics exposes Prometheus counters for content extraction and
// quiz sessions.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	extractions     *prometheus.CounterVec
	extractDuration *prometheus.HistogramVec
	layers          *prometheus.CounterVec
	rejected        prometheus.Counter
	sessions        *prometheus.CounterVec
	achievements    *prometheus.CounterVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edchat",
			Name:      "extractions_total",
			Help:      "Content extractions by winning strategy and kind.",
		}, []string{"strategy", "kind"}),
		extractDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edchat",
			Name:      "extraction_duration_seconds",
			Help:      "Time to produce a content set, by winning strategy.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30},
		}, []string{"strategy"}),
		layers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edchat",
			Name:      "extract_layer_total",
			Help:      "Structured-text recovery layers that produced records.",
		}, []string{"layer"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "edchat",
			Name:      "records_rejected_total",
			Help:      "Records dropped by validation.",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edchat",
			Name:      "sessions_total",
			Help:      "Quiz and flashcard sessions by lifecycle event.",
		}, []string{"event"}),
		achievements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edchat",
			Name:      "achievements_unlocked_total",
			Help:      "Achievements unlocked.",
		}, []string{"achievement"}),
	}
	m.registry.MustRegister(
		m.extractions, m.extractDuration, m.layers, m.rejected, m.sessions, m.achievements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveExtraction records a finished extraction.
func (m *Metrics) ObserveExtraction(strategy, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(strategy, kind).Inc()
	m.extractDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// ObserveLayer records the recovery layer that produced records.
func (m *Metrics) ObserveLayer(layer string) {
	if m == nil {
		return
	}
	m.layers.WithLabelValues(layer).Inc()
}

// AddRejected counts records dropped by validation.
func (m *Metrics) AddRejected(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rejected.Add(float64(n))
}

// Session lifecycle events.
const (
	SessionStarted   = "started"
	SessionSubmitted = "submitted"
	SessionTimedOut  = "timed_out"
)

// ObserveSession records a session lifecycle event.
func (m *Metrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(event).Inc()
}

// ObserveAchievement records an unlocked achievement.
func (m *Metrics) ObserveAchievement(id string) {
	if m == nil {
		return
	}
	m.achievements.WithLabelValues(id).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
