// Package repomanager provides the concrete RepositoryManager for
// PostgreSQL, wiring repository constructors and schema migrations (via
// goose) together.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/server/migrations"
	"github.com/tenantive/jobboard/internal/server/repositories/jobs"
	"github.com/tenantive/jobboard/internal/server/repositories/userjobs"
	"github.com/tenantive/jobboard/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs the manager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// Jobs returns a jobs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Jobs(db dbx.DBTX) jobs.Repository {
	return jobs.NewPostgresRepository(db)
}

// Users returns a users.Repository over the pool.
func (m *PostgresRepositoryManager) Users(db *sql.DB) users.Repository {
	return users.NewPostgresRepository(db)
}

// UserJobs returns a userjobs.Repository over the pool.
func (m *PostgresRepositoryManager) UserJobs(db *sql.DB) userjobs.Repository {
	return userjobs.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations points goose at the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
