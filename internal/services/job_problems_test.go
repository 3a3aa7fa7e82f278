package services

import (
	"strings"
	"testing"

	"github.com/localnerve/tevor-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemLifecycle(t *testing.T) {
	f := setup(t)
	job := f.newJob(t)
	jobs := f.svc.Jobs

	withOne, err := jobs.AddProblem(f.ctx, f.tech, job.JobID, "no power")
	require.NoError(t, err)
	withTwo, err := jobs.AddProblem(f.ctx, f.tech, job.JobID, "cracked screen")
	require.NoError(t, err)
	require.Len(t, withTwo.Problems, 2)
	assert.Equal(t, withOne.Problems[0], withTwo.Problems[0])

	first := withTwo.Problems[0].ProbID
	assert.True(t, strings.HasPrefix(first, "PRB-"))

	updated, err := jobs.UpdateProblem(f.ctx, f.tech, job.JobID, first, "no power, battery swollen")
	require.NoError(t, err)
	assert.Equal(t, "no power, battery swollen", updated.Problems[0].Description)
	assert.Equal(t, "cracked screen", updated.Problems[1].Description)

	deleted, err := jobs.DeleteProblem(f.ctx, f.tech, job.JobID, first)
	require.NoError(t, err)
	require.Len(t, deleted.Problems, 1)
	assert.Equal(t, "cracked screen", deleted.Problems[0].Description)

	_, err = jobs.DeleteProblem(f.ctx, f.tech, job.JobID, first)
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = jobs.UpdateProblem(f.ctx, f.tech, job.JobID, first, "gone")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestProblemGuards(t *testing.T) {
	f := setup(t)
	job := f.newJob(t)
	jobs := f.svc.Jobs

	_, err := jobs.AddProblem(f.ctx, f.tech, job.JobID, "  ")
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = jobs.AddProblem(f.ctx, f.other, job.JobID, "not mine")
	assert.ErrorIs(t, err, types.ErrForbidden)

	_, err = jobs.AddProblem(f.ctx, f.admin, "JOB-99999999", "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	unchanged, err := jobs.GetJob(f.ctx, job.JobID)
	require.NoError(t, err)
	assert.Empty(t, unchanged.Problems)
}
