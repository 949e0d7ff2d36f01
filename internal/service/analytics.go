package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobhub/ui-api/internal/core"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
)

const defaultAnalyticsCacheTTL = time.Minute

// AnalyticsServiceOptions groups dependencies for AnalyticsService. Cache is
// optional: without it every dashboard load hits the counting queries.
type AnalyticsServiceOptions struct {
	Users        core.UserRepository
	Jobs         core.JobRepository
	Applications core.ApplicationRepository
	Cache        core.CacheRepository
	CacheTTL     time.Duration
	Logger       *slog.Logger
}

// AnalyticsService aggregates dashboard counts for admins and recruiters.
// Counts are independent, so they are fetched concurrently. Results are
// held in the shared cache for a short TTL; the cache is advisory, and any
// cache failure falls through to live counts.
type AnalyticsService struct {
	users    core.UserRepository
	jobs     core.JobRepository
	apps     core.ApplicationRepository
	cache    core.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewAnalyticsService constructs a new AnalyticsService.
func NewAnalyticsService(opts AnalyticsServiceOptions) *AnalyticsService {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultAnalyticsCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		users:    opts.Users,
		jobs:     opts.Jobs,
		apps:     opts.Applications,
		cache:    opts.Cache,
		cacheTTL: ttl,
		logger:   logger,
	}
}

// Admin returns the portal-wide dashboard counts.
func (s *AnalyticsService) Admin(ctx context.Context) (*model.AdminAnalytics, error) {
	const cacheKey = "analytics:admin"

	var cached model.AdminAnalytics
	if s.readCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var out model.AdminAnalytics
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalCandidates, err = s.users.CountByRole(gctx, domainauth.RoleCandidate)
		return err
	})
	g.Go(func() (err error) {
		out.TotalRecruiters, err = s.users.CountByRole(gctx, domainauth.RoleRecruiter)
		return err
	})
	g.Go(func() (err error) {
		out.BlockedUsers, err = s.users.CountBlocked(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalJobs, err = s.jobs.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		open := model.JobStatusOpen
		out.OpenJobs, err = s.jobs.Count(gctx, &open)
		return err
	})
	g.Go(func() (err error) {
		out.TotalApplications, err = s.apps.Count(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin analytics: %w", err)
	}

	s.writeCached(ctx, cacheKey, &out)
	return &out, nil
}

// Recruiter returns dashboard counts scoped to one recruiter's postings.
func (s *AnalyticsService) Recruiter(ctx context.Context, recruiterID string) (*model.RecruiterAnalytics, error) {
	cacheKey := "analytics:recruiter:" + recruiterID

	var cached model.RecruiterAnalytics
	if s.readCached(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var out model.RecruiterAnalytics
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.PostedJobs, err = s.jobs.CountByRecruiter(gctx, recruiterID, nil)
		return err
	})
	g.Go(func() (err error) {
		open := model.JobStatusOpen
		out.OpenJobs, err = s.jobs.CountByRecruiter(gctx, recruiterID, &open)
		return err
	})
	g.Go(func() (err error) {
		out.TotalApplications, err = s.apps.CountByRecruiter(gctx, recruiterID, nil)
		return err
	})
	g.Go(func() (err error) {
		pending := model.ApplicationStatusPending
		out.PendingApplications, err = s.apps.CountByRecruiter(gctx, recruiterID, &pending)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recruiter analytics: %w", err)
	}

	s.writeCached(ctx, cacheKey, &out)
	return &out, nil
}

// readCached reports whether dest was filled from the shared cache.
func (s *AnalyticsService) readCached(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.DebugContext(ctx, "analytics cache read failed", "key", key, "error", err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.DebugContext(ctx, "analytics cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (s *AnalyticsService) writeCached(ctx context.Context, key string, src any) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(src)
	if err != nil {
		s.logger.DebugContext(ctx, "analytics cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.DebugContext(ctx, "analytics cache write failed", "key", key, "error", err)
	}
}
