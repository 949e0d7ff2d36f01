package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jobhub/ui-api/config"
	"github.com/jobhub/ui-api/internal/core"
	obserrors "github.com/jobhub/ui-api/internal/observability/errors"
	"github.com/jobhub/ui-api/internal/observability/metrics"
	"github.com/jobhub/ui-api/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.ReaperRepository // Required: reaper repository
	Config  config.ReaperConfig   // Required: reaper configuration
	Logger  *slog.Logger          // Optional: structured logger
	Metrics statsd.Sink           // Optional: metrics sink (StatsD-compatible)
}

// ReaperService keeps the job board tidy: it closes open postings that
// have gone stale without recruiter activity, then deletes long-closed
// postings so the tables do not grow without bound.
type ReaperService struct {
	repo    core.ReaperRepository
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ReaperRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"stale_open_max_age", opts.Config.StaleOpenMaxAge,
			"closed_max_age", opts.Config.ClosedMaxAge,
		)
	}

	return &ReaperService{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run executes cleanup passes at the configured interval until the
// context is cancelled. Cancellation is a graceful shutdown and returns
// nil; a deadline on the parent context is returned as an error.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Stagger startup so instances launched together do not all hit the
	// database at the same instant.
	if jitter := s.config.Interval / 10; jitter > 0 {
		select {
		case <-time.After(rand.N(jitter)):
		case <-ctx.Done():
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		if err := s.runCleanup(ctx); err != nil {
			s.logCleanupError(ctx, err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}
	}
}

// stepResult records one cleanup step for metric emission.
type stepResult struct {
	operation string
	count     int64
	err       error
}

// runCleanup runs both passes in order. A failing pass does not stop
// the next one; all failures are joined into the returned error.
func (s *ReaperService) runCleanup(ctx context.Context) error {
	start := time.Now()

	closed := stepResult{operation: "close_stale_open"}
	closed.count, closed.err = s.drain(ctx, "closed stale open postings", s.config.StaleOpenMaxAge, s.repo.CloseStaleOpenJobs)

	deleted := stepResult{operation: "delete_closed"}
	deleted.count, deleted.err = s.drain(ctx, "deleted old closed postings", s.config.ClosedMaxAge, s.repo.DeleteOldClosedJobs)

	s.emitCleanupMetrics(time.Since(start), closed, deleted)

	var errs []error
	if closed.err != nil {
		errs = append(errs, fmt.Errorf("close stale open postings: %w", closed.err))
	}
	if deleted.err != nil {
		errs = append(errs, fmt.Errorf("delete old closed postings: %w", deleted.err))
	}
	if len(errs) == 0 {
		return nil
	}

	joined := errors.Join(errs...)
	if isContextCancellation(closed.err) && isContextCancellation(deleted.err) {
		return context.Canceled
	}
	return fmt.Errorf("cleanup failed: %w", joined)
}

// drain calls op repeatedly until a pass affects zero rows, so large
// backlogs are worked off in batches instead of one huge statement.
func (s *ReaperService) drain(
	ctx context.Context,
	logMsg string,
	maxAge time.Duration,
	op func(context.Context, time.Duration, int) (int64, error),
) (int64, error) {
	var total int64
	for {
		n, err := op(ctx, maxAge, s.config.BatchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n == 0 {
			break
		}
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}

	if total > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, logMsg, "count", total, "max_age", maxAge)
	}
	return total, nil
}

func (s *ReaperService) emitCleanupMetrics(elapsed time.Duration, steps ...stepResult) {
	if s.metrics == nil {
		return
	}

	var total int64
	var firstErr error
	for _, step := range steps {
		total += step.count
		if firstErr == nil && !isContextCancellation(step.err) {
			firstErr = step.err
		}
		s.emitStepMetric(step)
	}

	tags := map[string]string{"result": resultTag(total, firstErr)}
	if firstErr != nil {
		if class := obserrors.Classify(firstErr); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("reaper.cleanup", 1, tags)
	if elapsed > 0 {
		s.metrics.Timing("reaper.cleanup_duration", elapsed, metrics.CloneTags(tags))
	}
	if firstErr == nil {
		s.metrics.Gauge("reaper.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

func (s *ReaperService) emitStepMetric(step stepResult) {
	err := step.err
	if isContextCancellation(err) {
		err = nil
	}

	tags := map[string]string{
		"operation": step.operation,
		"result":    resultTag(step.count, err),
	}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("reaper.cleanup_operation", 1, tags)
	if err == nil && step.count > 0 {
		s.metrics.Count("reaper.postings_processed", step.count, metrics.CloneTags(tags))
	}
}

func resultTag(count int64, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case count == 0:
		return metrics.ResultNoop
	default:
		return metrics.ResultSuccess
	}
}

func (s *ReaperService) logCleanupError(ctx context.Context, err error) {
	if s.logger == nil {
		return
	}
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, "cleanup cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, "cleanup failed", "error", err)
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
