package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jobhub/ui-api/internal/adapters/authroles"
	"github.com/jobhub/ui-api/internal/cache"
	"github.com/jobhub/ui-api/internal/core"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
	authmocks "github.com/jobhub/ui-api/internal/mocks/auth"
	"github.com/jobhub/ui-api/internal/observability/notify"
	"github.com/jobhub/ui-api/internal/service"
	"github.com/jobhub/ui-api/internal/service/mutation"
)

// In-memory repositories backing the router under test. They mirror the
// Postgres repositories' error contracts (portal copy on conflicts and
// misses) and count loads so tests can assert on cache behavior.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	lists int // List invocations, for coalescing/invalidation assertions

	failSetBlocked error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) listCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

func (r *memUserRepo) Upsert(_ context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[u.ID]; ok {
		existing.FirstName, existing.LastName, existing.Email = u.FirstName, u.LastName, u.Email
		cp := *existing
		return &cp, nil
	}
	now := time.Now()
	stored := *u
	stored.CreatedAt, stored.UpdatedAt = now, now
	r.users[u.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found.")
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) List(_ context.Context, opts *model.UsersListOptions) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []*model.User
	for _, u := range r.users {
		if opts != nil && opts.Role != nil && u.Role != *opts.Role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) SetBlocked(_ context.Context, id string, blocked bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetBlocked != nil {
		return nil, r.failSetBlocked
	}
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found.")
	}
	u.IsBlocked = blocked
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role domainauth.Role) (int, error) {
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

func (r *memUserRepo) CountBlocked(_ context.Context) (int, error) {
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

type memJobRepo struct {
	mu    sync.Mutex
	jobs  map[string]*model.Job
	seq   int
	lists int
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*model.Job)}
}

func (r *memJobRepo) listCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

func (r *memJobRepo) seed(j model.Job) *model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == "" {
		r.seq++
		j.ID = fmt.Sprintf("job-%d", r.seq)
	}
	if j.Status == "" {
		j.Status = model.JobStatusOpen
	}
	r.jobs[j.ID] = &j
	cp := j
	return &cp
}

func (r *memJobRepo) Create(_ context.Context, recruiterID string, req *model.CreateJobRequest) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now()
	job := &model.Job{
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
	r.jobs[job.ID] = job
	cp := *job
	return &cp, nil
}

func (r *memJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("Job not found.")
	}
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) List(_ context.Context, opts *model.JobsListOptions) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []*model.Job
	for _, j := range r.jobs {
		if opts != nil && opts.Status != nil && j.Status != *opts.Status {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memJobRepo) ListByRecruiter(_ context.Context, recruiterID string) ([]*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Job
	for _, j := range r.jobs {
		if j.RecruiterID == recruiterID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memJobRepo) Update(_ context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error) {
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
	if req.Location != nil {
		j.Location = *req.Location
	}
	if req.Status != nil {
		j.Status = *req.Status
	}
	j.UpdatedAt = time.Now()
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) SetStatus(_ context.Context, id string, status model.JobStatus) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("Job not found.")
	}
	j.Status = status
	cp := *j
	return &cp, nil
}

func (r *memJobRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return false, nil
	}
	delete(r.jobs, id)
	return true, nil
}

func (r *memJobRepo) Count(_ context.Context, status *model.JobStatus) (int, error) {
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

func (r *memJobRepo) CountByRecruiter(_ context.Context, recruiterID string, status *model.JobStatus) (int, error) {
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

type memApplicationRepo struct {
	mu    sync.Mutex
	apps  map[string]*model.Application
	seq   int
	jobs  *memJobRepo
	lists int

	failCreate error
	// createBarrier, when set, holds Create open until the channel closes
	// so tests can observe an in-flight mutation.
	createBarrier chan struct{}
	// createStarted counts Create entries so tests can wait until a
	// barriered write is actually in flight.
	createStarted int
}

func (r *memApplicationRepo) listCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

func (r *memApplicationRepo) createStarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createStarted
}

func newMemApplicationRepo(jobs *memJobRepo) *memApplicationRepo {
	return &memApplicationRepo{apps: make(map[string]*model.Application), jobs: jobs}
}

func (r *memApplicationRepo) Create(_ context.Context, params core.CreateApplicationParams) (*model.Application, error) {
	r.mu.Lock()
	r.createStarted++
	barrier := r.createBarrier
	r.mu.Unlock()
	if barrier != nil {
		<-barrier
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	for _, a := range r.apps {
		if a.JobID == params.JobID && a.CandidateID == params.CandidateID {
			return nil, apperrors.Conflict("You have already applied to this job.")
		}
	}
	r.seq++
	now := time.Now()
	app := &model.Application{
		ID:          fmt.Sprintf("app-%d", r.seq),
		JobID:       params.JobID,
		CandidateID: params.CandidateID,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if params.CoverNote != "" {
		note := params.CoverNote
		app.CoverNote = &note
	}
	r.apps[app.ID] = app
	cp := *app
	return &cp, nil
}

func (r *memApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, apperrors.NotFound("Application not found.")
	}
	cp := *a
	return &cp, nil
}

func (r *memApplicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.CandidateApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	var out []*model.CandidateApplication
	for _, a := range r.apps {
		if a.CandidateID != candidateID {
			continue
		}
		entry := &model.CandidateApplication{Application: *a}
		if job, err := r.jobs.GetByID(ctx, a.JobID); err == nil {
			entry.JobTitle, entry.CompanyName, entry.JobLocation = job.Title, job.CompanyName, job.Location
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *memApplicationRepo) ListByJob(_ context.Context, jobID string) ([]*model.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.JobApplication
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, &model.JobApplication{Application: *a})
		}
	}
	return out, nil
}

func (r *memApplicationRepo) SetStatus(_ context.Context, id string, status model.ApplicationStatus) (*model.Application, error) {
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

func (r *memApplicationRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps), nil
}

func (r *memApplicationRepo) CountByRecruiter(ctx context.Context, recruiterID string, status *model.ApplicationStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.apps {
		job, err := r.jobs.GetByID(ctx, a.JobID)
		if err != nil || job.RecruiterID != recruiterID {
			continue
		}
		if status == nil || a.Status == *status {
			n++
		}
	}
	return n, nil
}

type memSavedJobRepo struct {
	mu    sync.Mutex
	saved map[string]*model.SavedJob
	seq   int
	jobs  *memJobRepo

	failUnsave error
}

func newMemSavedJobRepo(jobs *memJobRepo) *memSavedJobRepo {
	return &memSavedJobRepo{saved: make(map[string]*model.SavedJob), jobs: jobs}
}

func (r *memSavedJobRepo) Save(_ context.Context, candidateID, jobID string) (*model.SavedJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.saved {
		if s.CandidateID == candidateID && s.JobID == jobID {
			return nil, apperrors.Conflict("You have already saved this job.")
		}
	}
	r.seq++
	s := &model.SavedJob{
		ID:          fmt.Sprintf("saved-%d", r.seq),
		JobID:       jobID,
		CandidateID: candidateID,
		CreatedAt:   time.Now(),
	}
	r.saved[s.ID] = s
	cp := *s
	return &cp, nil
}

func (r *memSavedJobRepo) Unsave(_ context.Context, candidateID, jobID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUnsave != nil {
		return false, r.failUnsave
	}
	for id, s := range r.saved {
		if s.CandidateID == candidateID && s.JobID == jobID {
			delete(r.saved, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *memSavedJobRepo) ListByCandidate(ctx context.Context, candidateID string) ([]*model.SavedJobWithJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SavedJobWithJob
	for _, s := range r.saved {
		if s.CandidateID != candidateID {
			continue
		}
		entry := &model.SavedJobWithJob{SavedJob: *s}
		if job, err := r.jobs.GetByID(ctx, s.JobID); err == nil {
			entry.JobTitle, entry.CompanyName = job.Title, job.CompanyName
			entry.JobLocation, entry.JobStatus = job.Location, job.Status
		}
		out = append(out, entry)
	}
	return out, nil
}

var (
	_ core.UserRepository        = (*memUserRepo)(nil)
	_ core.JobRepository         = (*memJobRepo)(nil)
	_ core.ApplicationRepository = (*memApplicationRepo)(nil)
	_ core.SavedJobRepository    = (*memSavedJobRepo)(nil)
)

// eventRecorder captures mutation outcome events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *eventRecorder) Notify(_ context.Context, event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) last() (notify.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return notify.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// testEnv wires the full router over in-memory repositories.
type testEnv struct {
	handler  http.Handler
	users    *memUserRepo
	jobs     *memJobRepo
	apps     *memApplicationRepo
	saved    *memSavedJobRepo
	sessions *authmocks.MemorySessionStore
	store    *cache.Store
	events   *eventRecorder
	auth     *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	jobs := newMemJobRepo()
	apps := newMemApplicationRepo(jobs)
	saved := newMemSavedJobRepo(jobs)
	sessions := authmocks.NewMemorySessionStore()
	events := &eventRecorder{}

	userSvc := service.NewUserService(service.UserServiceOptions{Users: users})
	jobSvc := service.NewJobService(service.JobServiceOptions{Jobs: jobs})
	appSvc := service.NewApplicationService(service.ApplicationServiceOptions{
		Applications: apps,
		SavedJobs:    saved,
		Jobs:         jobs,
	})
	analyticsSvc := service.NewAnalyticsService(service.AnalyticsServiceOptions{
		Users:        users,
		Jobs:         jobs,
		Applications: apps,
	})
	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Provider: authmocks.NewMockAuthProvider(),
		Sessions: sessions,
		Roles: authroles.StaticRoleMapper{
			AdminGroup:     "portal-admins",
			RecruiterGroup: "portal-recruiters",
		},
		Users: userSvc,
	})

	store := cache.NewStore(cache.Options{FetchTimeout: 2 * time.Second})
	coordinator, err := mutation.NewCoordinator(mutation.Options{
		Cache:    store,
		Notifier: events,
	})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}

	handler := NewRouter(RouterServices{
		Auth:         authSvc,
		Users:        userSvc,
		Jobs:         jobSvc,
		Applications: appSvc,
		Analytics:    analyticsSvc,
		Cache:        store,
		Coordinator:  coordinator,
	})

	return &testEnv{
		handler:  handler,
		users:    users,
		jobs:     jobs,
		apps:     apps,
		saved:    saved,
		sessions: sessions,
		store:    store,
		events:   events,
		auth:     authSvc,
	}
}

// login seeds the account and a live session, returning the session ID for
// the session cookie.
func (e *testEnv) login(t *testing.T, user model.User) string {
	t.Helper()

	if _, err := e.users.Upsert(context.Background(), &user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if user.IsBlocked {
		if _, err := e.users.SetBlocked(context.Background(), user.ID, true); err != nil {
			t.Fatalf("seed blocked flag: %v", err)
		}
	}

	sessionID := "sess-" + user.ID
	err := e.sessions.Save(context.Background(), domainauth.Session{
		ID:        sessionID,
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		IsBlocked: user.IsBlocked,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	return sessionID
}

// do issues a request against the router. An empty sessionID means an
// anonymous request.
func (e *testEnv) do(t *testing.T, method, path, sessionID string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doJSON(t *testing.T, method, path, sessionID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return e.do(t, method, path, sessionID, reader)
}
