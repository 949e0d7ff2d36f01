package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobhub/ui-api/internal/domain/model"
	apperrors "github.com/jobhub/ui-api/internal/errors"
)

func newTestApplicationService(t *testing.T) (*ApplicationService, *fakeJobRepo, *model.Job) {
	t.Helper()
	jobs := newFakeJobRepo()
	svc := NewApplicationService(ApplicationServiceOptions{
		Applications: newFakeApplicationRepo(),
		SavedJobs:    newFakeSavedJobRepo(),
		Jobs:         jobs,
	})
	job, err := jobs.Create(context.Background(), "rec-1", validCreateJobRequest())
	require.NoError(t, err)
	return svc, jobs, job
}

func TestApplicationService_Apply(t *testing.T) {
	svc, _, job := newTestApplicationService(t)
	ctx := context.Background()

	note := "I would love this role."
	app, err := svc.Apply(ctx, "cand-1", job.ID, &model.ApplyRequest{CoverNote: &note})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	require.NotNil(t, app.CoverNote)
	assert.Equal(t, note, *app.CoverNote)
}

func TestApplicationService_Apply_DuplicateConflicts(t *testing.T) {
	svc, _, job := newTestApplicationService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "cand-1", job.ID, nil)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "cand-1", job.ID, nil)
	assert.True(t, apperrors.IsConflict(err))
}

func TestApplicationService_Apply_ClosedJob(t *testing.T) {
	svc, jobs, job := newTestApplicationService(t)
	ctx := context.Background()

	_, err := jobs.SetStatus(ctx, job.ID, model.JobStatusClosed)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "cand-1", job.ID, nil)
	assert.True(t, apperrors.IsConflict(err))
}

func TestApplicationService_Apply_CoverNoteTooLong(t *testing.T) {
	svc, _, job := newTestApplicationService(t)

	long := strings.Repeat("x", 4001)
	_, err := svc.Apply(context.Background(), "cand-1", job.ID, &model.ApplyRequest{CoverNote: &long})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cover_note")
}

func TestApplicationService_ListByJob_OwnerOnly(t *testing.T) {
	svc, _, job := newTestApplicationService(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "cand-1", job.ID, nil)
	require.NoError(t, err)

	_, err = svc.ListByJob(ctx, Actor{UserID: "rec-2"}, job.ID)
	assert.True(t, apperrors.IsForbidden(err))

	apps, err := svc.ListByJob(ctx, Actor{UserID: "rec-1"}, job.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	apps, err = svc.ListByJob(ctx, Actor{UserID: "admin-1", IsAdmin: true}, job.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestApplicationService_SetStatus(t *testing.T) {
	svc, _, job := newTestApplicationService(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, "cand-1", job.ID, nil)
	require.NoError(t, err)

	// The owning recruiter can decide; others cannot.
	_, err = svc.SetStatus(ctx, Actor{UserID: "rec-2"}, app.ID, &model.UpdateApplicationStatusRequest{Status: "shortlisted"})
	assert.True(t, apperrors.IsForbidden(err))

	updated, err := svc.SetStatus(ctx, Actor{UserID: "rec-1"}, app.ID, &model.UpdateApplicationStatusRequest{Status: "Shortlisted"})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusShortlisted, updated.Status)

	_, err = svc.SetStatus(ctx, Actor{UserID: "rec-1"}, app.ID, &model.UpdateApplicationStatusRequest{Status: "maybe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status must be one of")
}

func TestApplicationService_SaveAndUnsave(t *testing.T) {
	svc, _, job := newTestApplicationService(t)
	ctx := context.Background()

	saved, err := svc.SaveJob(ctx, "cand-1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, saved.JobID)

	_, err = svc.SaveJob(ctx, "cand-1", job.ID)
	assert.True(t, apperrors.IsConflict(err))

	list, err := svc.ListSavedJobs(ctx, "cand-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.UnsaveJob(ctx, "cand-1", job.ID))

	err = svc.UnsaveJob(ctx, "cand-1", job.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
