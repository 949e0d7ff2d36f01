// Package core defines the repository contracts for the portal.
package core

import (
	"context"
	"time"

	"github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// UserRepository defines the interface for user account data operations.
type UserRepository interface {
	Upsert(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, opts *model.UsersListOptions) ([]*model.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (*model.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	CountByRole(ctx context.Context, role auth.Role) (int, error)
	CountBlocked(ctx context.Context) (int, error)
}

// JobRepository defines the interface for job posting data operations.
type JobRepository interface {
	Create(ctx context.Context, recruiterID string, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts *model.JobsListOptions) ([]*model.Job, error)
	ListByRecruiter(ctx context.Context, recruiterID string) ([]*model.Job, error)
	Update(ctx context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error)
	SetStatus(ctx context.Context, id string, status model.JobStatus) (*model.Job, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, status *model.JobStatus) (int, error)
	CountByRecruiter(ctx context.Context, recruiterID string, status *model.JobStatus) (int, error)
}

// ApplicationRepository defines the interface for job application data operations.
type ApplicationRepository interface {
	Create(ctx context.Context, params CreateApplicationParams) (*model.Application, error)
	GetByID(ctx context.Context, id string) (*model.Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]*model.CandidateApplication, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.JobApplication, error)
	SetStatus(ctx context.Context, id string, status model.ApplicationStatus) (*model.Application, error)
	Count(ctx context.Context) (int, error)
	CountByRecruiter(ctx context.Context, recruiterID string, status *model.ApplicationStatus) (int, error)
}

// CreateApplicationParams groups parameters for ApplicationRepository.Create.
type CreateApplicationParams struct {
	JobID       string
	CandidateID string
	CoverNote   string
}

// SavedJobRepository defines the interface for candidate saved-job data operations.
type SavedJobRepository interface {
	Save(ctx context.Context, candidateID, jobID string) (*model.SavedJob, error)
	Unsave(ctx context.Context, candidateID, jobID string) (bool, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]*model.SavedJobWithJob, error)
}

// ReaperRepository defines the interface for posting cleanup operations.
// Implementations must batch their work: cleanup runs against live tables.
type ReaperRepository interface {
	// CloseStaleOpenJobs closes open postings that have not been touched
	// within maxAge. Returns the number of postings closed.
	CloseStaleOpenJobs(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)

	// DeleteOldClosedJobs deletes postings closed longer than maxAge ago,
	// cascading their applications and bookmarks. Returns the number deleted.
	DeleteOldClosedJobs(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
}

// CacheRepository defines the interface for shared caching operations.
// The collection cache is in-process; this covers cross-instance state
// such as login flow state and distributed locks.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}
