// Package services contains the server-side business logic on top of the
// repositories. JobService handles everything on the job resource: the
// merged catalog view and applying/withdrawing applications.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenantive/jobboard/internal/server/models"
	"github.com/tenantive/jobboard/internal/server/repositories/repomanager"
	"github.com/tenantive/jobboard/internal/tenant"
)

// JobListing is one catalog entry annotated with whether the calling
// tenant has applied to it.
type JobListing struct {
	Job       *models.Job
	IsApplied bool
}

// JobService provides the job-resource operations. Catalog reads use the
// bare pool handle; anything touching the tenant's own rows goes through
// the session-scoped repositories.
type JobService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewJobService constructs a JobService over the pool and repo manager.
func NewJobService(db *sql.DB, m repomanager.RepositoryManager) *JobService {
	return &JobService{db: db, repomanager: m}
}

// FetchAll returns the full catalog with each entry marked applied or not
// for the given tenant. The applied set comes from a scoped query, so it
// can never contain another tenant's applications.
func (s *JobService) FetchAll(ctx context.Context, t tenant.ID) ([]*JobListing, error) {
	catalog, err := s.repomanager.Jobs(s.db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching jobs: %w", err)
	}

	applied, err := s.repomanager.UserJobs(s.db).AppliedJobIDs(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("error fetching applications: %w", err)
	}

	listings := make([]*JobListing, 0, len(catalog))
	for _, job := range catalog {
		_, isApplied := applied[job.ID]
		listings = append(listings, &JobListing{Job: job, IsApplied: isApplied})
	}
	return listings, nil
}

// SetApplied applies to or withdraws from a job on behalf of the tenant.
func (s *JobService) SetApplied(ctx context.Context, t tenant.ID, jobID int64, applied bool) error {
	repo := s.repomanager.UserJobs(s.db)
	if applied {
		return repo.Apply(ctx, t, jobID)
	}
	return repo.Withdraw(ctx, t, jobID)
}
