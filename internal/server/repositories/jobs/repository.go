package jobs

import (
	"context"

	"github.com/tenantive/jobboard/internal/server/models"
)

// Repository is the storage contract for the global job catalog.
type Repository interface {
	GetAll(ctx context.Context) ([]*models.Job, error)
	Create(ctx context.Context, job *models.Job) (int64, error)
}
