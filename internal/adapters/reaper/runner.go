// Package reaper adapts the posting reaper service for standalone
// operation: it wires the repository and runs the cleanup loop.
package reaper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobhub/ui-api/config"
	"github.com/jobhub/ui-api/internal/core"
	"github.com/jobhub/ui-api/internal/data"
	"github.com/jobhub/ui-api/internal/observability/statsd"
	"github.com/jobhub/ui-api/internal/service"
)

// RunnerOptions holds the dependencies for creating a Runner. Repo
// overrides the DB-backed repository when set, which tests use.
type RunnerOptions struct {
	DB      *sql.DB
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Repo    core.ReaperRepository
	Metrics statsd.Sink
}

// Runner owns a constructed reaper service and its loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// NewRunner builds the reaper service from options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	repo := opts.Repo
	if repo == nil {
		if opts.DB == nil {
			return nil, errors.New("database connection is required")
		}
		repo = data.NewJobRepo(opts.DB)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := service.NewReaperService(service.ReaperServiceOptions{
		Repo:    repo,
		Config:  opts.Config,
		Logger:  logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}

	return &Runner{reaper: svc, logger: logger}, nil
}

// Run blocks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting reaper runner")
	return r.reaper.Run(ctx)
}
