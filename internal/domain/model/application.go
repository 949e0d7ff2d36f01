package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCoverNoteLen = 4000

// ApplicationStatus is the recruiter-visible state of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusShortlisted ApplicationStatus = "shortlisted"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusHired       ApplicationStatus = "hired"
)

// Valid reports whether the application status is supported.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusShortlisted,
		ApplicationStatusRejected, ApplicationStatusHired:
		return true
	default:
		return false
	}
}

// ParseApplicationStatus normalizes a status string and reports whether it is
// supported.
func ParseApplicationStatus(value string) (ApplicationStatus, bool) {
	status := ApplicationStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// Application links a candidate to a job posting.
type Application struct {
	ID          string            `json:"id"                    db:"id"`
	JobID       string            `json:"job_id"                db:"job_id"`
	CandidateID string            `json:"candidate_id"          db:"candidate_id"`
	Status      ApplicationStatus `json:"status"                db:"status"`
	CoverNote   *string           `json:"cover_note,omitempty"  db:"cover_note"`
	CreatedAt   time.Time         `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"            db:"updated_at"`
}

// CandidateApplication is an application joined with its job, shaped for the
// candidate's "my applications" view.
type CandidateApplication struct {
	Application
	JobTitle    string `json:"job_title"     db:"job_title"`
	CompanyName string `json:"company_name"  db:"company_name"`
	JobLocation string `json:"job_location"  db:"job_location"`
}

// JobApplication is an application joined with its candidate, shaped for the
// recruiter's per-job applicant list.
type JobApplication struct {
	Application
	CandidateName  string `json:"candidate_name"   db:"candidate_name"`
	CandidateEmail string `json:"candidate_email"  db:"candidate_email"`
}

// SavedJob bookmarks a posting for a candidate.
type SavedJob struct {
	ID          string    `json:"id"            db:"id"`
	JobID       string    `json:"job_id"        db:"job_id"`
	CandidateID string    `json:"candidate_id"  db:"candidate_id"`
	CreatedAt   time.Time `json:"created_at"    db:"created_at"`
}

// SavedJobWithJob is a bookmark joined with its job for display.
type SavedJobWithJob struct {
	SavedJob
	JobTitle    string    `json:"job_title"     db:"job_title"`
	CompanyName string    `json:"company_name"  db:"company_name"`
	JobLocation string    `json:"job_location"  db:"job_location"`
	JobStatus   JobStatus `json:"job_status"    db:"job_status"`
}

// ApplyRequest represents parameters to apply to a job.
type ApplyRequest struct {
	CoverNote *string `json:"cover_note,omitempty"`
}

// Validate validates ApplyRequest.
func (r *ApplyRequest) Validate() error {
	if r.CoverNote != nil && utf8.RuneCountInString(*r.CoverNote) > maxCoverNoteLen {
		return errors.New("cover_note cannot exceed 4000 characters")
	}
	return nil
}

// UpdateApplicationStatusRequest represents a recruiter's status decision.
type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status"`
}

// Validate validates UpdateApplicationStatusRequest.
func (r *UpdateApplicationStatusRequest) Validate() error {
	normalized, ok := ParseApplicationStatus(string(r.Status))
	if !ok {
		return errors.New("status must be one of: pending, shortlisted, rejected, hired")
	}
	r.Status = normalized
	return nil
}
