package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

func validCreateJobRequest() *model.CreateJobRequest {
	return &model.CreateJobRequest{
		Title:       "Backend Engineer",
		CompanyName: "Acme",
		Description: "Build services.",
		Location:    "Remote",
		Type:        model.JobTypeFullTime,
		Category:    "Engineering",
	}
}

func TestJobService_CreateAndGet(t *testing.T) {
	svc := NewJobService(JobServiceOptions{Jobs: newFakeJobRepo()})
	ctx := context.Background()

	job, err := svc.Create(ctx, "rec-1", validCreateJobRequest())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", job.RecruiterID)
	assert.Equal(t, model.JobStatusOpen, job.Status)

	got, err := svc.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
}

func TestJobService_Create_Invalid(t *testing.T) {
	svc := NewJobService(JobServiceOptions{Jobs: newFakeJobRepo()})

	req := validCreateJobRequest()
	req.Title = "  "
	_, err := svc.Create(context.Background(), "rec-1", req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestJobService_ListOpenExcludesClosed(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(JobServiceOptions{Jobs: repo})
	ctx := context.Background()

	open, err := svc.Create(ctx, "rec-1", validCreateJobRequest())
	require.NoError(t, err)
	closed, err := svc.Create(ctx, "rec-1", validCreateJobRequest())
	require.NoError(t, err)
	_, err = repo.SetStatus(ctx, closed.ID, model.JobStatusClosed)
	require.NoError(t, err)

	jobs, err := svc.ListOpen(ctx, model.JobsListOptions{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, open.ID, jobs[0].ID)
}

func TestJobService_Update_OwnerOnly(t *testing.T) {
	svc := NewJobService(JobServiceOptions{Jobs: newFakeJobRepo()})
	ctx := context.Background()

	job, err := svc.Create(ctx, "rec-1", validCreateJobRequest())
	require.NoError(t, err)

	title := "Senior Backend Engineer"
	req := &model.UpdateJobRequest{Title: &title}

	// Another recruiter cannot touch it.
	_, err = svc.Update(ctx, Actor{UserID: "rec-2"}, job.ID, req)
	assert.True(t, apperrors.IsForbidden(err))

	// The owner can.
	updated, err := svc.Update(ctx, Actor{UserID: "rec-1"}, job.ID, req)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	// So can an admin.
	title2 := "Staff Backend Engineer"
	updated, err = svc.Update(ctx, Actor{UserID: "admin-1", IsAdmin: true}, job.ID, &model.UpdateJobRequest{Title: &title2})
	require.NoError(t, err)
	assert.Equal(t, title2, updated.Title)
}

func TestJobService_SetStatus(t *testing.T) {
	svc := NewJobService(JobServiceOptions{Jobs: newFakeJobRepo()})
	ctx := context.Background()

	job, err := svc.Create(ctx, "rec-1", validCreateJobRequest())
	require.NoError(t, err)

	closed, err := svc.SetStatus(ctx, Actor{UserID: "rec-1"}, job.ID, model.JobStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusClosed, closed.Status)

	_, err = svc.SetStatus(ctx, Actor{UserID: "rec-1"}, job.ID, "paused")
	assert.True(t, apperrors.IsValidation(err))
}

func TestJobService_Delete(t *testing.T) {
	svc := NewJobService(JobServiceOptions{Jobs: newFakeJobRepo()})
	ctx := context.Background()

	job, err := svc.Create(ctx, "rec-1", validCreateJobRequest())
	require.NoError(t, err)

	err = svc.Delete(ctx, Actor{UserID: "rec-2"}, job.ID)
	assert.True(t, apperrors.IsForbidden(err))

	require.NoError(t, svc.Delete(ctx, Actor{UserID: "rec-1"}, job.ID))

	_, err = svc.GetByID(ctx, job.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
