package model

// AdminAnalytics is the portal-wide overview shown on the admin dashboard.
type AdminAnalytics struct {
	TotalCandidates   int `json:"total_candidates"`
	TotalRecruiters   int `json:"total_recruiters"`
	TotalJobs         int `json:"total_jobs"`
	OpenJobs          int `json:"open_jobs"`
	TotalApplications int `json:"total_applications"`
	BlockedUsers      int `json:"blocked_users"`
}

// RecruiterAnalytics summarizes a single recruiter's postings.
type RecruiterAnalytics struct {
	PostedJobs          int `json:"posted_jobs"`
	OpenJobs            int `json:"open_jobs"`
	TotalApplications   int `json:"total_applications"`
	PendingApplications int `json:"pending_applications"`
}
