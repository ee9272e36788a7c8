// Package observability turns painting and submission events into Prometheus
// metrics and structured log lines.
package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	Segments    *prometheus.CounterVec
	Clears      prometheus.Counter
	Submissions *prometheus.CounterVec
	Duration    prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Segments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "landsketch_segments_total",
				Help: "Total number of rasterised stroke segments",
			},
			[]string{"brush"},
		),
		Clears: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "landsketch_clears_total",
			Help: "Total number of canvas clears",
		}),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "landsketch_submissions_total",
				Help: "Total number of submissions by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "landsketch_submission_duration_seconds",
			Help:    "Duration of search requests, encoding included",
			Buckets: prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.Segments, m.Clears, m.Submissions, m.Duration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSegment: func(_ context.Context, e *domain.SegmentEvent) {
			m.Segments.WithLabelValues(string(e.Brush)).Inc()
		},
		OnClear: func(context.Context, *domain.ClearEvent) {
			m.Clears.Inc()
		},
		OnSubmitFinish: func(_ context.Context, e *domain.SubmitEvent) {
			m.Submissions.WithLabelValues(e.Outcome).Inc()
			if e.Duration > 0 {
				m.Duration.Observe(e.Duration.Seconds())
			}
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// LoggingHooks logs lifecycle events. Segments are logged at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSegment: func(ctx context.Context, e *domain.SegmentEvent) {
			logger.DebugContext(ctx, "segment",
				"brush", e.Brush,
				"size", e.Width,
			)
		},
		OnClear: func(ctx context.Context, e *domain.ClearEvent) {
			logger.InfoContext(ctx, "clear")
		},
		OnSubmitStart: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.InfoContext(ctx, "submit_start")
		},
		OnSubmitFinish: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.InfoContext(ctx, "submit_finish",
				"outcome", e.Outcome,
				"status", e.Status,
				"bytes", e.Bytes,
				"duration", e.Duration,
			)
		},
	}
}
