// Package devseed populates a development database with a small, realistic
// job board: a few accounts per role, open postings, applications, and
// bookmarks. Seeding is idempotent; rerunning it never duplicates rows.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jobhub/ui-api/internal/data"
	domainauth "github.com/jobhub/ui-api/internal/domain/auth"
	"github.com/jobhub/ui-api/internal/domain/model"
	"github.com/jobhub/ui-api/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	DB           *sql.DB
	users        *service.UserService
	jobs         *service.JobService
	applications *service.ApplicationService
}

// NewServices constructs all required services for seeding using the provided DB.
func NewServices(db *sql.DB) Services {
	userRepo := data.NewUserRepo(db)
	jobRepo := data.NewJobRepo(db)
	appRepo := data.NewApplicationRepo(db)
	savedRepo := data.NewSavedJobRepo(db)

	return Services{
		DB:    db,
		users: service.NewUserService(service.UserServiceOptions{Users: userRepo}),
		jobs:  service.NewJobService(service.JobServiceOptions{Jobs: jobRepo}),
		applications: service.NewApplicationService(service.ApplicationServiceOptions{
			Applications: appRepo,
			SavedJobs:    savedRepo,
			Jobs:         jobRepo,
		}),
	}
}

// Run executes the full development seeding workflow against the provided DB.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	if err := seedUsers(ctx, svcs.users, logger); err != nil {
		return err
	}

	jobsByRecruiter, err := seedJobs(ctx, svcs.jobs, logger)
	if err != nil {
		return err
	}

	seedApplications(ctx, svcs.applications, jobsByRecruiter, logger)
	seedSavedJobs(ctx, svcs.applications, jobsByRecruiter, logger)

	return nil
}

type userSeed struct {
	id        string
	firstName string
	lastName  string
	email     string
	role      domainauth.Role
}

func defaultUserSeeds() []userSeed {
	return []userSeed{
		{id: "seed-admin-1", firstName: "Ada", lastName: "Okafor", email: "ada@jobhub.local", role: domainauth.RoleAdmin},
		{id: "seed-rec-1", firstName: "Rita", lastName: "Vale", email: "rita@acme.example", role: domainauth.RoleRecruiter},
		{id: "seed-rec-2", firstName: "Sam", lastName: "Ivers", email: "sam@initech.example", role: domainauth.RoleRecruiter},
		{id: "seed-cand-1", firstName: "Cory", lastName: "Nguyen", email: "cory@jobhub.local", role: domainauth.RoleCandidate},
		{id: "seed-cand-2", firstName: "Dana", lastName: "Moss", email: "dana@jobhub.local", role: domainauth.RoleCandidate},
	}
}

func seedUsers(ctx context.Context, svc *service.UserService, logger *slog.Logger) error {
	for _, seed := range defaultUserSeeds() {
		identity := domainauth.Identity{
			UserID:    seed.id,
			FirstName: seed.firstName,
			LastName:  seed.lastName,
			Email:     seed.email,
		}
		if _, err := svc.Ensure(ctx, identity, seed.role); err != nil {
			return fmt.Errorf("seed user %s: %w", seed.id, err)
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded user", "user_id", seed.id, "role", seed.role)
		}
	}
	return nil
}

type jobSeed struct {
	recruiterID string
	req         model.CreateJobRequest
}

func defaultJobSeeds() []jobSeed {
	return []jobSeed{
		{
			recruiterID: "seed-rec-1",
			req: model.CreateJobRequest{
				Title:       "Senior Backend Engineer",
				CompanyName: "Acme Corp",
				Description: "Design and run the services behind our hiring pipeline.",
				Location:    "Remote",
				Type:        model.JobTypeFullTime,
				Category:    "Engineering",
				SalaryMin:   intPtr(140000),
				SalaryMax:   intPtr(180000),
			},
		},
		{
			recruiterID: "seed-rec-1",
			req: model.CreateJobRequest{
				Title:       "Product Designer",
				CompanyName: "Acme Corp",
				Description: "Own the candidate experience end to end.",
				Location:    "Minneapolis, MN",
				Type:        model.JobTypeFullTime,
				Category:    "Design",
			},
		},
		{
			recruiterID: "seed-rec-2",
			req: model.CreateJobRequest{
				Title:       "Data Analyst (Contract)",
				CompanyName: "Initech",
				Description: "Six month engagement building recruiting dashboards.",
				Location:    "Austin, TX",
				Type:        model.JobTypeContract,
				Category:    "Data",
			},
		},
		{
			recruiterID: "seed-rec-2",
			req: model.CreateJobRequest{
				Title:       "Engineering Intern",
				CompanyName: "Initech",
				Description: "Summer internship on the platform team.",
				Location:    "Austin, TX",
				Type:        model.JobTypeInternship,
				Category:    "Engineering",
			},
		},
	}
}

// seedJobs creates postings for recruiters that do not have any yet. Postings
// carry generated IDs, so the recruiter's board is the idempotency check.
func seedJobs(
	ctx context.Context,
	svc *service.JobService,
	logger *slog.Logger,
) (map[string][]*model.Job, error) {
	out := make(map[string][]*model.Job)

	seedsByRecruiter := make(map[string][]jobSeed)
	for _, seed := range defaultJobSeeds() {
		seedsByRecruiter[seed.recruiterID] = append(seedsByRecruiter[seed.recruiterID], seed)
	}

	for recruiterID, seeds := range seedsByRecruiter {
		existing, err := svc.ListByRecruiter(ctx, recruiterID)
		if err != nil {
			return nil, fmt.Errorf("list postings for %s: %w", recruiterID, err)
		}
		if len(existing) > 0 {
			out[recruiterID] = existing
			if logger != nil {
				logger.InfoContext(ctx, "recruiter already has postings, skipping",
					"recruiter_id", recruiterID, "count", len(existing))
			}
			continue
		}

		for _, seed := range seeds {
			job, createErr := svc.Create(ctx, recruiterID, &seed.req)
			if createErr != nil {
				return nil, fmt.Errorf("seed posting %q: %w", seed.req.Title, createErr)
			}
			out[recruiterID] = append(out[recruiterID], job)
			if logger != nil {
				logger.InfoContext(ctx, "seeded posting", "title", job.Title, "recruiter_id", recruiterID)
			}
		}
	}

	return out, nil
}

// seedApplications files one application per candidate against the first
// Acme posting. Duplicates surface as conflicts and are skipped quietly.
func seedApplications(
	ctx context.Context,
	svc *service.ApplicationService,
	jobs map[string][]*model.Job,
	logger *slog.Logger,
) {
	acme := jobs["seed-rec-1"]
	if len(acme) == 0 {
		return
	}
	target := acme[0]

	note := "Seeded application for local development."
	for _, candidateID := range []string{"seed-cand-1", "seed-cand-2"} {
		_, err := svc.Apply(ctx, candidateID, target.ID, &model.ApplyRequest{CoverNote: &note})
		if err != nil {
			if logger != nil {
				logger.DebugContext(ctx, "skipping application seed", "candidate_id", candidateID, "error", err)
			}
			continue
		}
		if logger != nil {
			logger.InfoContext(ctx, "seeded application", "candidate_id", candidateID, "job_id", target.ID)
		}
	}
}

// seedSavedJobs bookmarks one Initech posting for the first candidate.
func seedSavedJobs(
	ctx context.Context,
	svc *service.ApplicationService,
	jobs map[string][]*model.Job,
	logger *slog.Logger,
) {
	initech := jobs["seed-rec-2"]
	if len(initech) == 0 {
		return
	}

	if _, err := svc.SaveJob(ctx, "seed-cand-1", initech[0].ID); err != nil {
		if logger != nil {
			logger.DebugContext(ctx, "skipping saved job seed", "error", err)
		}
		return
	}
	if logger != nil {
		logger.InfoContext(ctx, "seeded saved job", "candidate_id", "seed-cand-1", "job_id", initech[0].ID)
	}
}

func intPtr(i int) *int { return &i }
