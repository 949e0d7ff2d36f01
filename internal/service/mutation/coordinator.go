// Package mutation couples writes to their cache and notification
// side effects. Every state-changing operation in the portal goes through
// Coordinator.Perform so the rules are enforced in one place: success
// invalidates the affected collections and emits a success event; failure
// emits an error event and leaves the cache untouched.
package mutation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jobhub/ui-api/internal/cache"
	apperrors "github.com/jobhub/ui-api/internal/errors"
	"github.com/jobhub/ui-api/internal/observability/metrics"
	"github.com/jobhub/ui-api/internal/observability/notify"
	"github.com/jobhub/ui-api/internal/observability/statsd"
)

// fallbackFailureMessage is shown when the server gave no usable reason.
const fallbackFailureMessage = "Oops! Something went wrong. Please try again."

// Notifier receives mutation outcome events.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event)
}

// OptimisticUpdate overlays one cached collection while the write is in
// flight. The overlay is rolled back if the write fails.
type OptimisticUpdate struct {
	Key    string
	Update cache.Updater
}

// Operation describes one mutation.
type Operation struct {
	// Name identifies the operation kind, e.g. "block_user".
	Name string
	// TargetID is the entity being written.
	TargetID string
	// ActorID is the session user performing the write. The double-submit
	// guard is keyed on Name+ActorID+TargetID: one user's repeat click is
	// rejected, while different users writing to the same hot entity
	// proceed and settle at the database.
	ActorID string
	// SuccessMessage is the user-facing copy emitted on success.
	SuccessMessage string
	// InvalidateKeys are refetched after a successful write.
	InvalidateKeys []string
	// Optimistic overlays are applied before the write starts.
	Optimistic []OptimisticUpdate
	// Execute performs the write.
	Execute func(ctx context.Context) error
}

// Options configures a Coordinator.
type Options struct {
	Cache    *cache.Store
	Notifier Notifier
	Logger   *slog.Logger
	Clock    func() time.Time
	// Metrics is optional; when set, every settled mutation emits an
	// outcome counter and a duration timing.
	Metrics statsd.Sink
}

// Coordinator serializes mutations per target and applies their cache and
// notification side effects.
type Coordinator struct {
	cache    *cache.Store
	notifier Notifier
	logger   *slog.Logger
	clock    func() time.Time
	metrics  statsd.Sink

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Cache == nil {
		return nil, errors.New("mutation: cache store is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("mutation: notifier is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "mutation")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Coordinator{
		cache:    opts.Cache,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		inFlight: make(map[string]struct{}),
	}, nil
}

// Perform runs one mutation. While the same actor has the same operation
// against the same target in flight, further submissions are rejected with
// a Conflict error so a double click cannot produce two writes.
func (c *Coordinator) Perform(ctx context.Context, op Operation) error {
	if op.Name == "" || op.Execute == nil {
		return apperrors.Internal("mutation operation is missing a name or an execute step")
	}

	guard := op.Name + ":" + op.ActorID + ":" + op.TargetID
	if !c.begin(guard) {
		return apperrors.Conflict("This action is already in progress.")
	}
	defer c.end(guard)

	for _, ou := range op.Optimistic {
		c.cache.ApplyOptimistic(ou.Key, ou.Update)
	}

	started := time.Now()
	err := op.Execute(ctx)
	duration := time.Since(started)
	occurredAt := c.clock()

	if err != nil {
		for _, ou := range op.Optimistic {
			c.cache.Rollback(ou.Key)
		}
		c.logger.WarnContext(ctx, "mutation failed",
			"operation", op.Name, "target_id", op.TargetID, "error", err)
		metrics.EmitMutationOutcome(c.metrics, metrics.MutationMetric{
			Operation: op.Name,
			Result:    metrics.ResultError,
			Duration:  duration,
			Err:       err,
		})
		c.notifier.Notify(ctx, notify.Event{
			Severity:   notify.SeverityError,
			Operation:  op.Name,
			TargetID:   op.TargetID,
			ActorID:    op.ActorID,
			Message:    failureMessage(err),
			OccurredAt: occurredAt,
		})
		return err
	}

	for _, key := range op.InvalidateKeys {
		c.cache.Invalidate(key)
	}
	metrics.EmitMutationOutcome(c.metrics, metrics.MutationMetric{
		Operation: op.Name,
		Result:    metrics.ResultSuccess,
		Duration:  duration,
	})
	c.notifier.Notify(ctx, notify.Event{
		Severity:   notify.SeveritySuccess,
		Operation:  op.Name,
		TargetID:   op.TargetID,
		ActorID:    op.ActorID,
		Message:    successMessage(op),
		OccurredAt: occurredAt,
	})
	return nil
}

func (c *Coordinator) begin(guard string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[guard]; busy {
		return false
	}
	c.inFlight[guard] = struct{}{}
	return true
}

func (c *Coordinator) end(guard string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, guard)
}

func successMessage(op Operation) string {
	if op.SuccessMessage != "" {
		return op.SuccessMessage
	}
	return "Done."
}

// failureMessage prefers the server-provided reason and falls back to
// generic copy when there is none.
func failureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallbackFailureMessage
}
