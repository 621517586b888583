package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/serptools/queryaudit/internal/progress"
)

// PrometheusSink exports pipeline progress via Prometheus. It owns the
// collectors for page completions and produced records so the API server can
// serve live run counters without touching the session.
type PrometheusSink struct {
	pagesDone    *prometheus.CounterVec
	recordsTotal prometheus.Counter
	pageDuration *prometheus.HistogramVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		pagesDone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_progress_pages_total",
			Help: "Page completions partitioned by result.",
		}, []string{"result"}),
		recordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_progress_records_total",
			Help: "Analysis records produced across all runs.",
		}),
		pageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audit_progress_page_duration_seconds",
			Help:    "Page pipeline duration partitioned by result.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
		}, []string{"result"}),
	}
	for _, collector := range []prometheus.Collector{
		s.pagesDone,
		s.recordsTotal,
		s.pageDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors using the provided batch. Safe for
// concurrent use.
func (s *PrometheusSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		if evt.Stage != progress.StagePageDone {
			continue
		}
		result := "ok"
		if evt.Failed {
			result = "failed"
		}
		s.pagesDone.WithLabelValues(result).Inc()
		s.recordsTotal.Add(float64(evt.Records))
		s.pageDuration.WithLabelValues(result).Observe(evt.Dur.Seconds())
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
