package userjobs

import (
	"context"

	"github.com/tenantive/jobboard/internal/tenant"
)

// Repository is the storage contract for job applications.
type Repository interface {
	AppliedJobIDs(ctx context.Context, t tenant.ID) (map[int64]struct{}, error)
	Apply(ctx context.Context, t tenant.ID, jobID int64) error
	Withdraw(ctx context.Context, t tenant.ID, jobID int64) error
}
