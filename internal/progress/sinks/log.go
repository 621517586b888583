// Package sinks provides progress.Sink implementations for logs and metrics.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/serptools/queryaudit/internal/progress"
)

// LogSink emits structured logs for the progress stream. It is the default
// sink for CLI runs, where it stands in for the interactive progress bar of
// a hosted UI.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		s.logger.Info("progress",
			zap.String("stage", string(evt.Stage)),
			zap.String("url", evt.URL),
			zap.Int("records", evt.Records),
			zap.Bool("failed", evt.Failed),
			zap.Duration("dur", evt.Dur),
		)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
