package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jobhub/ui-api/internal/core"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

// In-memory repository fakes shared by the service tests. They implement the
// core interfaces closely enough to exercise service orchestration, including
// the conflict behavior of unique constraints.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Upsert(_ context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[u.ID]; ok {
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		existing.Email = u.Email
		existing.UpdatedAt = time.Now()
		cp := *existing
		return &cp, nil
	}
	cp := *u
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.users[u.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found.")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(_ context.Context, opts *model.UsersListOptions) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.users {
		if opts.Role != nil && u.Role != *opts.Role {
			continue
		}
		if opts.Q != nil && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(*opts.Q)) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) SetBlocked(_ context.Context, id string, blocked bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found.")
	}
	u.IsBlocked = blocked
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role domainauth.Role) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) CountBlocked(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.IsBlocked {
			n++
		}
	}
	return n, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*model.Job)}
}

func (r *fakeJobRepo) Create(_ context.Context, recruiterID string, req *model.CreateJobRequest) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now()
	j := &model.Job{
		ID:          fmt.Sprintf("job-%d", r.seq),
		RecruiterID: recruiterID,
		Title:       req.Title,
		CompanyName: req.CompanyName,
		Description: req.Description,
		Location:    req.Location,
		Type:        req.Type,
		Category:    req.Category,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Status:      model.JobStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.jobs[j.ID] = j
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("Job not found.")
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) List(_ context.Context, opts *model.JobsListOptions) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, j := range r.jobs {
		if opts.Status != nil && j.Status != *opts.Status {
			continue
		}
		if opts.Category != nil && j.Category != *opts.Category {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeJobRepo) ListByRecruiter(_ context.Context, recruiterID string) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, j := range r.jobs {
		if j.RecruiterID == recruiterID {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeJobRepo) Update(_ context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("Job not found.")
	}
	if req.Title != nil {
		j.Title = *req.Title
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Status != nil {
		j.Status = *req.Status
	}
	j.UpdatedAt = time.Now()
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) SetStatus(_ context.Context, id string, status model.JobStatus) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("Job not found.")
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return false, nil
	}
	delete(r.jobs, id)
	return true, nil
}

func (r *fakeJobRepo) Count(_ context.Context, status *model.JobStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if status == nil || j.Status == *status {
			n++
		}
	}
	return n, nil
}

func (r *fakeJobRepo) CountByRecruiter(_ context.Context, recruiterID string, status *model.JobStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, j := range r.jobs {
		if j.RecruiterID != recruiterID {
			continue
		}
		if status == nil || j.Status == *status {
			n++
		}
	}
	return n, nil
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[string]*model.Application
	seq  int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[string]*model.Application)}
}

func (r *fakeApplicationRepo) Create(_ context.Context, params core.CreateApplicationParams) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.JobID == params.JobID && a.CandidateID == params.CandidateID {
			return nil, apperrors.Conflict("You have already applied to this job.")
		}
	}
	r.seq++
	now := time.Now()
	a := &model.Application{
		ID:          fmt.Sprintf("app-%d", r.seq),
		JobID:       params.JobID,
		CandidateID: params.CandidateID,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if params.CoverNote != "" {
		note := params.CoverNote
		a.CoverNote = &note
	}
	r.apps[a.ID] = a
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.NotFound("Application not found.")
	}
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) ListByCandidate(_ context.Context, candidateID string) ([]*model.CandidateApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CandidateApplication
	for _, a := range r.apps {
		if a.CandidateID == candidateID {
			out = append(out, &model.CandidateApplication{Application: *a})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeApplicationRepo) ListByJob(_ context.Context, jobID string) ([]*model.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.JobApplication
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, &model.JobApplication{Application: *a})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeApplicationRepo) SetStatus(_ context.Context, id string, status model.ApplicationStatus) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.NotFound("Application not found.")
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *fakeApplicationRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps), nil
}

func (r *fakeApplicationRepo) CountByRecruiter(_ context.Context, _ string, status *model.ApplicationStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.apps {
		if status == nil || a.Status == *status {
			n++
		}
	}
	return n, nil
}

type fakeSavedJobRepo struct {
	mu    sync.Mutex
	saved map[string]*model.SavedJob
	seq   int
}

func newFakeSavedJobRepo() *fakeSavedJobRepo {
	return &fakeSavedJobRepo{saved: make(map[string]*model.SavedJob)}
}

func (r *fakeSavedJobRepo) Save(_ context.Context, candidateID, jobID string) (*model.SavedJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sj := range r.saved {
		if sj.CandidateID == candidateID && sj.JobID == jobID {
			return nil, apperrors.Conflict("You have already saved this job.")
		}
	}
	r.seq++
	sj := &model.SavedJob{
		ID:          fmt.Sprintf("saved-%d", r.seq),
		JobID:       jobID,
		CandidateID: candidateID,
		CreatedAt:   time.Now(),
	}
	r.saved[sj.ID] = sj
	cp := *sj
	return &cp, nil
}

func (r *fakeSavedJobRepo) Unsave(_ context.Context, candidateID, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sj := range r.saved {
		if sj.CandidateID == candidateID && sj.JobID == jobID {
			delete(r.saved, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSavedJobRepo) ListByCandidate(_ context.Context, candidateID string) ([]*model.SavedJobWithJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SavedJobWithJob
	for _, sj := range r.saved {
		if sj.CandidateID == candidateID {
			out = append(out, &model.SavedJobWithJob{SavedJob: *sj})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Compile-time interface checks for the fakes.
var (
	_ core.UserRepository        = (*fakeUserRepo)(nil)
	_ core.JobRepository         = (*fakeJobRepo)(nil)
	_ core.ApplicationRepository = (*fakeApplicationRepo)(nil)
	_ core.SavedJobRepository    = (*fakeSavedJobRepo)(nil)
)
