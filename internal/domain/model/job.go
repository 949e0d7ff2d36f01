package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxJobTitleLen    = 255
	maxJobLocationLen = 255
	maxJobCategoryLen = 100
)

// JobStatus controls whether a posting accepts new applications.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Valid reports whether the job status is supported.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusClosed:
		return true
	default:
		return false
	}
}

// ParseJobStatus normalizes a status string and reports whether it is supported.
func ParseJobStatus(value string) (JobStatus, bool) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// JobType is the employment arrangement for a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

// Valid reports whether the job type is supported.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return true
	default:
		return false
	}
}

// Job represents a posting owned by a recruiter.
type Job struct {
	ID          string    `json:"id"                    db:"id"`
	RecruiterID string    `json:"recruiter_id"          db:"recruiter_id"`
	Title       string    `json:"title"                 db:"title"`
	CompanyName string    `json:"company_name"          db:"company_name"`
	Description string    `json:"description"           db:"description"`
	Location    string    `json:"location"              db:"location"`
	Type        JobType   `json:"type"                  db:"type"`
	Category    string    `json:"category"              db:"category"`
	SalaryMin   *int      `json:"salary_min,omitempty"  db:"salary_min"`
	SalaryMax   *int      `json:"salary_max,omitempty"  db:"salary_max"`
	Status      JobStatus `json:"status"                db:"status"`
	CreatedAt   time.Time `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"            db:"updated_at"`
}

// JobsListOptions controls paging and filtering for listing jobs.
// Notes:
// - Sort supports: "created_at", "title" (case-insensitive).
// - Dir supports: "asc", "desc" (case-insensitive); values are normalized internally.
// - Q matches title or company name via ILIKE substring.
type JobsListOptions struct {
	Limit    int
	Offset   int
	Q        *string
	Status   *JobStatus // exact match
	Category *string    // exact match
	Type     *JobType   // exact match
	Sort     string
	Dir      string
}

// CreateJobRequest represents parameters to create a Job.
type CreateJobRequest struct {
	Title       string  `json:"title"`
	CompanyName string  `json:"company_name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Type        JobType `json:"type"`
	Category    string  `json:"category"`
	SalaryMin   *int    `json:"salary_min,omitempty"`
	SalaryMax   *int    `json:"salary_max,omitempty"`
}

// UpdateJobRequest represents parameters to update a Job.
type UpdateJobRequest struct {
	Title       *string    `json:"title,omitempty"`
	CompanyName *string    `json:"company_name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Type        *JobType   `json:"type,omitempty"`
	Category    *string    `json:"category,omitempty"`
	SalaryMin   *int       `json:"salary_min,omitempty"`
	SalaryMax   *int       `json:"salary_max,omitempty"`
	Status      *JobStatus `json:"status,omitempty"`
}

// Validate validates CreateJobRequest.
func (r *CreateJobRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxJobTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.CompanyName) == "" {
		return errors.New("company_name is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if utf8.RuneCountInString(r.Location) > maxJobLocationLen {
		return errors.New("location cannot exceed 255 characters")
	}
	if !r.Type.Valid() {
		return errors.New("type must be one of: full_time, part_time, contract, internship")
	}
	if utf8.RuneCountInString(r.Category) > maxJobCategoryLen {
		return errors.New("category cannot exceed 100 characters")
	}
	return validateSalaryRange(r.SalaryMin, r.SalaryMax)
}

// Validate validates UpdateJobRequest. All fields are optional but must be
// well-formed when present.
func (r *UpdateJobRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if utf8.RuneCountInString(title) > maxJobTitleLen {
			return errors.New("title cannot exceed 255 characters")
		}
	}
	if r.CompanyName != nil && strings.TrimSpace(*r.CompanyName) == "" {
		return errors.New("company_name cannot be empty")
	}
	if r.Type != nil && !r.Type.Valid() {
		return errors.New("type must be one of: full_time, part_time, contract, internship")
	}
	if r.Status != nil && !r.Status.Valid() {
		return errors.New("status must be one of: open, closed")
	}
	return validateSalaryRange(r.SalaryMin, r.SalaryMax)
}

func validateSalaryRange(minSalary, maxSalary *int) error {
	if minSalary != nil && *minSalary < 0 {
		return errors.New("salary_min cannot be negative")
	}
	if maxSalary != nil && *maxSalary < 0 {
		return errors.New("salary_max cannot be negative")
	}
	if minSalary != nil && maxSalary != nil && *maxSalary < *minSalary {
		return errors.New("salary_max cannot be less than salary_min")
	}
	return nil
}
