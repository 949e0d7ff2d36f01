// Package notifier fans mutation outcome events out to every configured
// sink. Delivery failures are logged, never propagated: a dead Slack
// webhook must not fail the mutation that triggered the event.
package notifier

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jobhub/ui-api/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
}

// Service dispatches events to all registered sinks.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
}

// NewService constructs a notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "notifier")
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{
			Name: name,
			Sink: entry.Sink,
		})
	}

	return &Service{
		logger: logger,
		sinks:  sinks,
	}
}

// Notify fans the event out to all sinks and waits for delivery.
func (s *Service) Notify(ctx context.Context, event notify.Event) {
	if len(s.sinks) == 0 {
		return
	}

	if event.Severity == "" {
		event.Severity = notify.SeveritySuccess
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.Send(ctx, event); err != nil {
				s.logger.Error("notifier delivery error",
					"sink", entry.Name,
					"operation", event.Operation,
					"target_id", event.TargetID,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}
