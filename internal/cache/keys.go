package cache

import "strings"

// Cache keys mirror the resource paths they back. Per-user collections
// embed the user ID so invalidation never bleeds across accounts.

// JobsKey is the public job board listing.
func JobsKey() string { return "/jobs/all-jobs" }

// JobKey is a single posting's detail.
func JobKey(jobID string) string { return "/jobs/" + jobID }

// JobApplicationsKey is the applicant list for one posting.
func JobApplicationsKey(jobID string) string { return "/jobs/" + jobID + "/applications" }

// AdminCandidatesKey is the admin's candidate roster.
func AdminCandidatesKey() string { return "/admin/all-candidates" }

// AdminRecruitersKey is the admin's recruiter roster.
func AdminRecruitersKey() string { return "/admin/all-recruiters" }

// AdminJobsKey is the admin's view of every posting.
func AdminJobsKey() string { return "/admin/all-jobs" }

// AdminAnalyticsKey is the portal-wide analytics overview.
func AdminAnalyticsKey() string { return "/admin/analytics" }

// CandidateApplicationsKey is one candidate's application list.
func CandidateApplicationsKey(userID string) string {
	return "/candidate/" + userID + "/my-applications"
}

// CandidateSavedJobsKey is one candidate's bookmarks.
func CandidateSavedJobsKey(userID string) string {
	return "/candidate/" + userID + "/saved-jobs"
}

// RecruiterJobsKey is one recruiter's posted jobs.
func RecruiterJobsKey(userID string) string { return "/recruiter/" + userID + "/jobs" }

// RecruiterAnalyticsKey is one recruiter's analytics overview.
func RecruiterAnalyticsKey(userID string) string { return "/recruiter/" + userID + "/analytics" }

// ExpandUserKey substitutes the viewer's user ID into a key template
// containing the {user} placeholder (used by navigation badge sources).
func ExpandUserKey(template, userID string) string {
	return strings.ReplaceAll(template, "{user}", userID)
}
