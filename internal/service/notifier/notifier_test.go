package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jobhub/ui-api/internal/observability/notify"
)

func TestServiceNotify(t *testing.T) {
	ctx := context.Background()

	var mu sync.Mutex
	var received []notify.Event
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "capture",
				Sink: notify.SinkFunc(func(ctx context.Context, event notify.Event) error {
					mu.Lock()
					defer mu.Unlock()
					received = append(received, event)
					return nil
				}),
			},
		},
	})

	svc.Notify(ctx, notify.Event{
		Operation: "apply_to_job",
		TargetID:  "job-1",
		Message:   "Application submitted.",
	})

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Severity != notify.SeveritySuccess {
		t.Fatalf("expected severity to default to success, got %s", received[0].Severity)
	}
}

func TestServiceFansOutToAllSinks(t *testing.T) {
	var mu sync.Mutex
	delivered := map[string]bool{}
	sink := func(name string) SinkRegistration {
		return SinkRegistration{
			Name: name,
			Sink: notify.SinkFunc(func(ctx context.Context, event notify.Event) error {
				mu.Lock()
				defer mu.Unlock()
				delivered[name] = true
				return nil
			}),
		}
	}

	svc := NewService(Options{Sinks: []SinkRegistration{sink("log"), sink("slack")}})
	svc.Notify(context.Background(), notify.Event{Operation: "delete_user"})

	if !delivered["log"] || !delivered["slack"] {
		t.Fatalf("expected delivery to every sink, got %v", delivered)
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	if svc.Enabled() {
		t.Fatal("expected Enabled() to be false when no sinks registered")
	}
}

func TestServiceLogsErrors(t *testing.T) {
	// Ensure we don't panic when a sink returns an error.
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "fail",
				Sink: notify.SinkFunc(func(ctx context.Context, event notify.Event) error {
					return errors.New("boom")
				}),
			},
		},
	})

	svc.Notify(context.Background(), notify.Event{Operation: "block_user"})
}

func TestServiceSkipsNilSinks(t *testing.T) {
	svc := NewService(Options{
		Sinks: []SinkRegistration{{Name: "empty", Sink: nil}},
	})
	if svc.Enabled() {
		t.Fatal("nil sinks should be dropped at construction")
	}
}
