package notify

import (
	"context"
	"log/slog"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
)

// Event captures the canonical data we emit when a mutation settles. The
// Message is user-facing copy; Metadata carries structured detail for
// operational sinks.
type Event struct {
	Severity   string
	Operation  string // e.g. "block_user"
	TargetID   string
	ActorID    string
	Message    string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of consuming mutation outcome events.
type Sink interface {
	Send(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, event Event) error

// Send implements the Sink interface.
func (f SinkFunc) Send(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// LogSink writes events to a structured logger. It is the always-on sink:
// every mutation outcome lands in the log stream even when no external
// sink is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a LogSink, defaulting to slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "notify")}
}

// Send implements the Sink interface.
func (s *LogSink) Send(ctx context.Context, event Event) error {
	level := slog.LevelInfo
	if event.Severity == SeverityError {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, event.Message,
		"severity", event.Severity,
		"operation", event.Operation,
		"target_id", event.TargetID,
		"actor_id", event.ActorID,
	)
	return nil
}
