package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jobhub/ui-api/internal/cache"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/service"
	"github.com/jobhub/ui-api/internal/service/mutation"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Analytics    *service.AnalyticsService
	Cache        *cache.Store
	Coordinator  *mutation.Coordinator
	CookieDomain string
	Logger       *slog.Logger // optional
}

// NewRouter creates and configures the HTTP router. Every protected group
// is wrapped in its role gate before any handler or fetch runs.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	collections := &Collections{
		Cache:        services.Cache,
		Jobs:         services.Jobs,
		Users:        services.Users,
		Applications: services.Applications,
		Analytics:    services.Analytics,
	}

	authHandlers := &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger}
	jobHandlers := &JobHandlers{Collections: collections}
	navHandlers := &NavHandlers{Collections: collections, Logger: logger}
	userHandlers := &UserHandlers{Users: services.Users}
	candidateHandlers := &CandidateHandlers{
		Collections:  collections,
		Applications: services.Applications,
		Coordinator:  services.Coordinator,
	}
	recruiterHandlers := &RecruiterHandlers{
		Collections:  collections,
		Jobs:         services.Jobs,
		Applications: services.Applications,
		Coordinator:  services.Coordinator,
	}
	adminHandlers := &AdminHandlers{
		Collections: collections,
		Users:       services.Users,
		Coordinator: services.Coordinator,
	}

	mux := http.NewServeMux()
	registerPublicRoutes(mux, jobHandlers, navHandlers, services.Auth)
	registerAuthRoutes(mux, authHandlers)
	registerUserRoutes(mux, userHandlers, services.Auth)
	registerCandidateRoutes(mux, candidateHandlers, services.Auth)
	registerRecruiterRoutes(mux, recruiterHandlers, services.Auth)
	registerAdminRoutes(mux, adminHandlers, services.Auth)

	handler := Compression(CompressionConfig{Level: 6, Logger: logger})(mux)
	handler = Recover(logger)(handler)
	return Logging(logger)(handler)
}

func registerPublicRoutes(mux *http.ServeMux, jobs *JobHandlers, nav *NavHandlers, auth AuthServiceInterface) {
	mux.Handle("GET /api/jobs", http.HandlerFunc(jobs.List))
	mux.Handle("GET /api/jobs/{id}", http.HandlerFunc(jobs.GetByID))
	mux.Handle("GET /api/navigation", OptionalAuth(auth)(http.HandlerFunc(nav.Navigation)))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.Handle("GET /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(h.Callback))
	mux.Handle("POST /auth/refresh", http.HandlerFunc(h.Refresh))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(h.Status))
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, auth AuthServiceInterface) {
	requireAuth := RequireAuth(auth)
	mux.Handle("GET /api/user/me", requireAuth(http.HandlerFunc(h.Me)))
	mux.Handle("GET /api/users/{id}", requireAuth(http.HandlerFunc(h.GetByID)))
}

func registerCandidateRoutes(mux *http.ServeMux, h *CandidateHandlers, auth AuthServiceInterface) {
	candidateOnly := RequireRole(auth, domainauth.RoleCandidate)
	mux.Handle("POST /api/candidate/apply/{jobID}", candidateOnly(http.HandlerFunc(h.Apply)))
	mux.Handle("GET /api/candidate/my-applications", candidateOnly(http.HandlerFunc(h.MyApplications)))
	mux.Handle("POST /api/candidate/save-job/{jobID}", candidateOnly(http.HandlerFunc(h.SaveJob)))
	mux.Handle("DELETE /api/candidate/remove-saved-job/{jobID}", candidateOnly(http.HandlerFunc(h.UnsaveJob)))
	mux.Handle("GET /api/candidate/my-saved-jobs", candidateOnly(http.HandlerFunc(h.MySavedJobs)))
}

func registerRecruiterRoutes(mux *http.ServeMux, h *RecruiterHandlers, auth AuthServiceInterface) {
	recruiterOnly := RequireRole(auth, domainauth.RoleRecruiter)
	mux.Handle("POST /api/recruiter/jobs", recruiterOnly(http.HandlerFunc(h.CreateJob)))
	mux.Handle("GET /api/recruiter/my-posted-jobs", recruiterOnly(http.HandlerFunc(h.MyPostedJobs)))
	mux.Handle("PATCH /api/recruiter/jobs/{id}", recruiterOnly(http.HandlerFunc(h.UpdateJob)))
	mux.Handle("GET /api/recruiter/jobs/{id}/applications", recruiterOnly(http.HandlerFunc(h.JobApplications)))
	mux.Handle("PATCH /api/recruiter/applications/{id}/status", recruiterOnly(http.HandlerFunc(h.SetApplicationStatus)))
	mux.Handle("GET /api/recruiter/analytics", recruiterOnly(http.HandlerFunc(h.Analytics)))
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers, auth AuthServiceInterface) {
	adminOnly := RequireRole(auth, domainauth.RoleAdmin)
	mux.Handle("GET /api/admin/all-candidates", adminOnly(http.HandlerFunc(h.AllCandidates)))
	mux.Handle("GET /api/admin/all-recruiters", adminOnly(http.HandlerFunc(h.AllRecruiters)))
	mux.Handle("GET /api/admin/all-jobs", adminOnly(http.HandlerFunc(h.AllJobs)))
	mux.Handle("GET /api/admin/analytics", adminOnly(http.HandlerFunc(h.Analytics)))
	mux.Handle("PATCH /api/admin/users/block/{id}", adminOnly(http.HandlerFunc(h.BlockUser)))
	mux.Handle("PATCH /api/admin/users/unblock/{id}", adminOnly(http.HandlerFunc(h.UnblockUser)))
	mux.Handle("DELETE /api/admin/users/delete/{id}", adminOnly(http.HandlerFunc(h.DeleteUser)))
}
