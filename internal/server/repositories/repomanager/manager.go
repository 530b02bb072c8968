package repomanager

import (
	"context"
	"database/sql"

	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/server/repositories/jobs"
	"github.com/tenantive/jobboard/internal/server/repositories/userjobs"
	"github.com/tenantive/jobboard/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations and exposes a schema
// migration hook. The job catalog operates on a plain DBTX; the
// tenant-scoped repositories need the pool handle so they can pin
// connections for session scoping.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Jobs(db dbx.DBTX) jobs.Repository
	Users(db *sql.DB) users.Repository
	UserJobs(db *sql.DB) userjobs.Repository
}
