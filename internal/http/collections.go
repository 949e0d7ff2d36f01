package httpx

import (
	"context"
	"encoding/json"

	"github.com/jobhub/ui-api/internal/cache"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	"github.com/jobhub/ui-api/internal/service"
)

// Collections routes every list endpoint through the keyed collection
// cache: concurrent requests for one resource share a single upstream
// query, and mutations invalidate by key to force a refetch.
type Collections struct {
	Cache        *cache.Store
	Jobs         *service.JobService
	Users        *service.UserService
	Applications *service.ApplicationService
	Analytics    *service.AnalyticsService
}

// jsonFetcher adapts a typed loader into a cache.Fetcher.
func jsonFetcher[T any](load func(ctx context.Context) (T, error)) cache.Fetcher {
	return func(ctx context.Context) (json.RawMessage, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}
}

// OpenJobs is the public board: open postings only.
func (c *Collections) OpenJobs(ctx context.Context) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.JobsKey(), jsonFetcher(func(ctx context.Context) ([]*model.Job, error) {
		return c.Jobs.ListOpen(ctx, model.JobsListOptions{})
	}))
}

// JobDetail is a single posting.
func (c *Collections) JobDetail(ctx context.Context, jobID string) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.JobKey(jobID), jsonFetcher(func(ctx context.Context) (*model.Job, error) {
		return c.Jobs.GetByID(ctx, jobID)
	}))
}

// JobApplications is the applicant list for one posting. Callers must
// authorize the viewer before reading; the cache is keyed by job only.
func (c *Collections) JobApplications(ctx context.Context, actor service.Actor, jobID string) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.JobApplicationsKey(jobID), jsonFetcher(func(ctx context.Context) ([]*model.JobApplication, error) {
		return c.Applications.ListByJob(ctx, actor, jobID)
	}))
}

// AdminCandidates is the admin's candidate roster.
func (c *Collections) AdminCandidates(ctx context.Context) (json.RawMessage, error) {
	return c.adminRoster(ctx, cache.AdminCandidatesKey(), domainauth.RoleCandidate)
}

// AdminRecruiters is the admin's recruiter roster.
func (c *Collections) AdminRecruiters(ctx context.Context) (json.RawMessage, error) {
	return c.adminRoster(ctx, cache.AdminRecruitersKey(), domainauth.RoleRecruiter)
}

func (c *Collections) adminRoster(ctx context.Context, key string, role domainauth.Role) (json.RawMessage, error) {
	return c.Cache.Get(ctx, key, jsonFetcher(func(ctx context.Context) ([]*model.User, error) {
		return c.Users.ListByRole(ctx, role, model.UsersListOptions{})
	}))
}

// AdminJobs is every posting regardless of status.
func (c *Collections) AdminJobs(ctx context.Context) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.AdminJobsKey(), jsonFetcher(func(ctx context.Context) ([]*model.Job, error) {
		return c.Jobs.List(ctx, model.JobsListOptions{})
	}))
}

// AdminAnalytics is the portal-wide overview.
func (c *Collections) AdminAnalytics(ctx context.Context) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.AdminAnalyticsKey(), jsonFetcher(func(ctx context.Context) (*model.AdminAnalytics, error) {
		return c.Analytics.Admin(ctx)
	}))
}

// CandidateApplications is one candidate's application list.
func (c *Collections) CandidateApplications(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.CandidateApplicationsKey(userID), c.candidateApplicationsFetcher(userID))
}

// CandidateSavedJobs is one candidate's bookmarks.
func (c *Collections) CandidateSavedJobs(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.CandidateSavedJobsKey(userID), c.candidateSavedJobsFetcher(userID))
}

// RecruiterJobs is one recruiter's postings.
func (c *Collections) RecruiterJobs(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.RecruiterJobsKey(userID), c.recruiterJobsFetcher(userID))
}

// RecruiterAnalytics is one recruiter's overview.
func (c *Collections) RecruiterAnalytics(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.Cache.Get(ctx, cache.RecruiterAnalyticsKey(userID), jsonFetcher(func(ctx context.Context) (*model.RecruiterAnalytics, error) {
		return c.Analytics.Recruiter(ctx, userID)
	}))
}

func (c *Collections) candidateApplicationsFetcher(userID string) cache.Fetcher {
	return jsonFetcher(func(ctx context.Context) ([]*model.CandidateApplication, error) {
		return c.Applications.ListByCandidate(ctx, userID)
	})
}

func (c *Collections) candidateSavedJobsFetcher(userID string) cache.Fetcher {
	return jsonFetcher(func(ctx context.Context) ([]*model.SavedJobWithJob, error) {
		return c.Applications.ListSavedJobs(ctx, userID)
	})
}

func (c *Collections) recruiterJobsFetcher(userID string) cache.Fetcher {
	return jsonFetcher(func(ctx context.Context) ([]*model.Job, error) {
		return c.Jobs.ListByRecruiter(ctx, userID)
	})
}

// BadgeFetcher resolves a navigation badge key template to the fetcher that
// loads its collection for the given user. Unknown templates report false
// so the entry renders without a badge.
func (c *Collections) BadgeFetcher(keyTemplate, userID string) (string, cache.Fetcher, bool) {
	key := cache.ExpandUserKey(keyTemplate, userID)
	switch keyTemplate {
	case "/candidate/{user}/my-applications":
		return key, c.candidateApplicationsFetcher(userID), true
	case "/candidate/{user}/saved-jobs":
		return key, c.candidateSavedJobsFetcher(userID), true
	case "/recruiter/{user}/jobs":
		return key, c.recruiterJobsFetcher(userID), true
	default:
		return key, nil, false
	}
}
