package httpx

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	"github.com/jobhub/ui-api/internal/observability/notify"
)

func recruiterSession(t *testing.T, env *testEnv) string {
	t.Helper()
	return env.login(t, model.User{
		ID: "rec-1", FirstName: "Rita", LastName: "Vale",
		Email: "rita@example.com", Role: domainauth.RoleRecruiter,
	})
}

func decodeJobs(t *testing.T, body []byte) []model.Job {
	t.Helper()
	var envelope struct {
		Data []model.Job `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Data
}

// Posting a job refreshes the public board so the new posting is visible on
// the very next read.
func TestCreateJobRefreshesBoard(t *testing.T) {
	env := newTestEnv(t)
	sessionID := recruiterSession(t, env)

	before := env.do(t, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, before.Code)
	assert.Empty(t, decodeJobs(t, before.Body.Bytes()))
	assert.Equal(t, 1, env.jobs.listCalls())

	payload := `{
		"title": "Backend Engineer",
		"company_name": "Acme",
		"description": "Build the job portal backend.",
		"location": "Remote",
		"type": "full_time",
		"category": "engineering"
	}`
	rec := env.doJSON(t, http.MethodPost, "/api/recruiter/jobs", sessionID, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data    model.Job `json:"data"`
		Message string    `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Job posted!", created.Message)
	assert.Equal(t, "rec-1", created.Data.RecruiterID)
	assert.Equal(t, model.JobStatusOpen, created.Data.Status)

	after := env.do(t, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, after.Code)
	jobs := decodeJobs(t, after.Body.Bytes())
	require.Len(t, jobs, 1)
	assert.Equal(t, "Backend Engineer", jobs[0].Title)
	assert.Greater(t, env.jobs.listCalls(), 1, "posting must refetch the board")

	event, ok := env.events.last()
	require.True(t, ok)
	assert.Equal(t, notify.SeveritySuccess, event.Severity)
	assert.Equal(t, "create_job", event.Operation)
}

func TestCreateJobValidation(t *testing.T) {
	env := newTestEnv(t)
	sessionID := recruiterSession(t, env)

	rec := env.doJSON(t, http.MethodPost, "/api/recruiter/jobs", sessionID,
		`{"company_name": "Acme", "description": "x", "type": "full_time", "category": "eng"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body["error"])
}

// A recruiter cannot edit another recruiter's posting.
func TestUpdateJobOwnership(t *testing.T) {
	env := newTestEnv(t)
	job := env.jobs.seed(model.Job{Title: "Backend Engineer", CompanyName: "Acme", RecruiterID: "rec-owner"})

	intruder := env.login(t, model.User{
		ID: "rec-2", FirstName: "Ivan", LastName: "Petrov",
		Email: "ivan@example.com", Role: domainauth.RoleRecruiter,
	})
	rec := env.doJSON(t, http.MethodPatch, "/api/recruiter/jobs/"+job.ID, intruder,
		`{"title": "Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_permissions", body["error"])

	unchanged, err := env.jobs.GetByID(t.Context(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", unchanged.Title)
}

func TestUpdateJobClosesPosting(t *testing.T) {
	env := newTestEnv(t)
	sessionID := recruiterSession(t, env)
	job := env.jobs.seed(model.Job{Title: "Backend Engineer", CompanyName: "Acme", RecruiterID: "rec-1"})

	rec := env.doJSON(t, http.MethodPatch, "/api/recruiter/jobs/"+job.ID, sessionID,
		`{"status": "closed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	board := env.do(t, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, board.Code)
	assert.Empty(t, decodeJobs(t, board.Body.Bytes()), "closed postings leave the public board")
}

// Applicant lists are gated on ownership before the cache is consulted, so a
// coalesced fetch can never serve another recruiter's applicants.
func TestJobApplicationsRequireOwnership(t *testing.T) {
	env := newTestEnv(t)
	sessionID := recruiterSession(t, env)
	job := env.jobs.seed(model.Job{Title: "Backend Engineer", CompanyName: "Acme", RecruiterID: "rec-1"})

	owner := env.do(t, http.MethodGet, "/api/recruiter/jobs/"+job.ID+"/applications", sessionID, nil)
	assert.Equal(t, http.StatusOK, owner.Code)

	intruder := env.login(t, model.User{
		ID: "rec-2", FirstName: "Ivan", LastName: "Petrov",
		Email: "ivan@example.com", Role: domainauth.RoleRecruiter,
	})
	denied := env.do(t, http.MethodGet, "/api/recruiter/jobs/"+job.ID+"/applications", intruder, nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)
}

// A status decision refreshes both the applicant list and the candidate's
// own application view.
func TestSetApplicationStatusRefreshesCandidateView(t *testing.T) {
	env := newTestEnv(t)
	recruiterID := recruiterSession(t, env)
	candidateID := env.login(t, model.User{
		ID: "cand-1", FirstName: "Cory", LastName: "Nguyen",
		Email: "cory@example.com", Role: domainauth.RoleCandidate,
	})
	job := env.jobs.seed(model.Job{Title: "Backend Engineer", CompanyName: "Acme", RecruiterID: "rec-1"})

	applied := env.doJSON(t, http.MethodPost, "/api/candidate/apply/"+job.ID, candidateID, "")
	require.Equal(t, http.StatusCreated, applied.Code)

	// Prime the candidate's cached view while the application is pending.
	mine := env.do(t, http.MethodGet, "/api/candidate/my-applications", candidateID, nil)
	require.Equal(t, http.StatusOK, mine.Code)
	apps := decodeApplications(t, mine)
	require.Len(t, apps, 1)
	assert.Equal(t, model.ApplicationStatusPending, apps[0].Status)

	rec := env.doJSON(t, http.MethodPatch,
		"/api/recruiter/applications/"+apps[0].ID+"/status", recruiterID,
		`{"status": "shortlisted"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	refreshed := env.do(t, http.MethodGet, "/api/candidate/my-applications", candidateID, nil)
	require.Equal(t, http.StatusOK, refreshed.Code)
	apps = decodeApplications(t, refreshed)
	require.Len(t, apps, 1)
	assert.Equal(t, model.ApplicationStatusShortlisted, apps[0].Status)

	event, ok := env.events.last()
	require.True(t, ok)
	assert.Equal(t, "update_application_status", event.Operation)
	assert.Equal(t, "Application status updated.", event.Message)
}

func TestRecruiterAnalytics(t *testing.T) {
	env := newTestEnv(t)
	sessionID := recruiterSession(t, env)
	candidateID := env.login(t, model.User{
		ID: "cand-1", FirstName: "Cory", LastName: "Nguyen",
		Email: "cory@example.com", Role: domainauth.RoleCandidate,
	})
	open := env.jobs.seed(model.Job{Title: "Backend Engineer", CompanyName: "Acme", RecruiterID: "rec-1"})
	env.jobs.seed(model.Job{
		Title: "Old Role", CompanyName: "Acme", RecruiterID: "rec-1", Status: model.JobStatusClosed,
	})

	applied := env.doJSON(t, http.MethodPost, "/api/candidate/apply/"+open.ID, candidateID, "")
	require.Equal(t, http.StatusCreated, applied.Code)

	rec := env.do(t, http.MethodGet, "/api/recruiter/analytics", sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data model.RecruiterAnalytics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.PostedJobs)
	assert.Equal(t, 1, body.Data.OpenJobs)
	assert.Equal(t, 1, body.Data.TotalApplications)
	assert.Equal(t, 1, body.Data.PendingApplications)
}
