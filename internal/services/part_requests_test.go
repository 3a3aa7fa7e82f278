package services

import (
	"strings"
	"testing"

	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRequest(t *testing.T) {
	f := setup(t)
	job := f.newJob(t)
	registry := f.svc.Requests

	prq, err := registry.AddRequest(f.ctx, f.tech.UserID, job.JobID, PartInput{StockID: "SCR01", StockDesc: "Screen", Qty: 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prq.PrqID, "PRQ-"))
	assert.Equal(t, models.PRStatusNew, prq.Status)
	assert.False(t, prq.Closed)
	assert.EqualValues(t, 2, prq.ReqQty)

	_, err = registry.AddRequest(f.ctx, f.tech.UserID, job.JobID, PartInput{StockID: "SCR01", Qty: 0})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = registry.AddRequest(f.ctx, f.tech.UserID, "", PartInput{StockID: "SCR01", Qty: 1})
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestCancelRequest(t *testing.T) {
	f := setup(t)
	job := f.newJob(t)
	registry := f.svc.Requests

	prq, err := registry.AddRequest(f.ctx, f.tech.UserID, job.JobID, PartInput{StockID: "SCR01", Qty: 1})
	require.NoError(t, err)

	// another job cannot cancel it
	_, err = registry.CancelRequest(f.ctx, f.tech.UserID, "JOB-99999999", prq.PrqID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	cancelled, err := registry.CancelRequest(f.ctx, f.admin.UserID, job.JobID, prq.PrqID)
	require.NoError(t, err)
	assert.Equal(t, prq.PrqID, cancelled.PrqID)
	assert.Equal(t, models.PRStatusCancelled, cancelled.Status)
	assert.True(t, cancelled.Closed)

	found, err := registry.FindByID(f.ctx, prq.PrqID)
	require.NoError(t, err)
	assert.Equal(t, models.PRStatusCancelled, found.Status)
	assert.True(t, found.Closed)
	assert.Equal(t, f.admin.UserID, found.ModifiedBy)

	// closed requests accept no further transition
	cancelled, err = registry.CancelRequest(f.ctx, f.admin.UserID, job.JobID, prq.PrqID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Nil(t, cancelled)
}

func TestListOpen(t *testing.T) {
	f := setup(t)
	job := f.newJob(t)
	registry := f.svc.Requests

	a, err := registry.AddRequest(f.ctx, f.tech.UserID, job.JobID, PartInput{StockID: "A", Qty: 1})
	require.NoError(t, err)
	b, err := registry.AddRequest(f.ctx, f.tech.UserID, job.JobID, PartInput{StockID: "B", Qty: 1})
	require.NoError(t, err)
	c, err := registry.AddRequest(f.ctx, f.tech.UserID, job.JobID, PartInput{StockID: "C", Qty: 1})
	require.NoError(t, err)
	_, err = registry.CancelRequest(f.ctx, f.tech.UserID, job.JobID, b.PrqID)
	require.NoError(t, err)

	open, err := registry.ListOpen(f.ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	ids := []string{open[0].PrqID, open[1].PrqID}
	assert.ElementsMatch(t, []string{a.PrqID, c.PrqID}, ids)

	all, err := registry.ListByJob(f.ctx, job.JobID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFindRequestNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Requests.FindByID(f.ctx, "PRQ-missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
