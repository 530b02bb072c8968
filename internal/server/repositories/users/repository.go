package users

import (
	"context"

	"github.com/tenantive/jobboard/internal/server/models"
	"github.com/tenantive/jobboard/internal/tenant"
)

// Repository is the storage contract for tenant accounts.
type Repository interface {
	Create(ctx context.Context, t tenant.ID, name, email string) (*models.User, error)
	GetByTenant(ctx context.Context, t tenant.ID) (*models.User, error)
}
