package services

import (
	"context"
	"testing"

	"github.com/localnerve/tevor-api/internal/metrics"
	"github.com/localnerve/tevor-api/internal/models"
	"github.com/localnerve/tevor-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   *Services
	admin *models.User // job admin, not assigned
	tech  *models.User // job user, assigned to jobs created by newJob
	other *models.User // job user with no jobs
	reg   *prometheus.Registry
	ctx   context.Context
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	reg := prometheus.NewRegistry()
	f := &fixture{
		db:  db,
		svc: New(db, 16, testutil.Logger(), metrics.New(reg)),
		reg: reg,
		ctx: context.Background(),
	}

	f.admin = testutil.SeedUser(t, db, "USR-0001", "admin-cn", models.Roles{
		Job: models.RoleAdmin, Stock: models.RoleAdmin, User: models.RoleAdmin,
	})
	f.tech = testutil.SeedUser(t, db, "USR-0002", "tech-cn", models.Roles{Job: models.RoleUser})
	f.other = testutil.SeedUser(t, db, "USR-0003", "other-cn", models.Roles{Job: models.RoleUser})

	// keep the user sequence ahead of the seeded rows
	for range 3 {
		if _, err := f.svc.IDs.Allocate(f.ctx, SeqUser); err != nil {
			t.Fatalf("Failed to advance user sequence: %v", err)
		}
	}

	return f
}

// newJob creates the ACME / APPLE / IPHONE 4 job assigned to f.tech
func (f *fixture) newJob(t *testing.T) *models.Job {
	t.Helper()

	job, err := f.svc.Jobs.CreateJob(f.ctx, f.admin, JobInput{
		Client: "acme",
		Brand:  "apple",
		Model:  "iphone 4",
	})
	if err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	job, err = f.svc.Jobs.UpdateAssignee(f.ctx, f.admin, job.JobID, f.tech.UserID)
	if err != nil {
		t.Fatalf("Failed to assign job: %v", err)
	}
	return job
}

// counter returns the summed value of the named counter family, 0 when absent
func (f *fixture) counter(t *testing.T, name string) float64 {
	t.Helper()

	families, err := f.reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
