// Package users provides the PostgreSQL-backed repository for tenant
// accounts. app_user is tenant-scoped: reads run inside a session scope
// where the row-level policy narrows the table to the caller's single row;
// creation is an administrative (seed) operation on the owning connection,
// which bypasses the policies.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/server/models"
	"github.com/tenantive/jobboard/internal/server/tenantdb"
	"github.com/tenantive/jobboard/internal/tenant"
)

// PostgresRepository implements user storage over a *sql.DB pool handle.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository over the pool.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a tenant's account row with a freshly generated key.
// Administrative path; the statement is parameterized, never interpolated.
func (r *PostgresRepository) Create(ctx context.Context, t tenant.ID, name, email string) (*models.User, error) {
	key, err := tenant.NewKey(t)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, common.ErrInvalidTenantID)
	}
	nowMilli := time.Now().UnixMilli()

	query := `
		INSERT INTO app_user (id, created_time, last_modified_time, name, email)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, key.Int64(), nowMilli, nowMilli, name, email); err != nil {
		if tenantdb.CodeOf(err) == tenantdb.CodeUniqueViolation {
			return nil, fmt.Errorf("user for tenant %d: %w", t, common.ErrRelationExists)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.User{ID: key, CreatedTime: nowMilli, LastModifiedTime: nowMilli, Name: name, Email: email}, nil
}

// GetByTenant fetches the caller's account row inside a session scope. The
// query has no tenant predicate; the filter policy already narrows the
// result to the tenant's own row.
func (r *PostgresRepository) GetByTenant(ctx context.Context, t tenant.ID) (*models.User, error) {
	var user models.User
	err := tenantdb.WithScope(ctx, r.db, t, func(ctx context.Context, q dbx.DBTX) error {
		var id int64
		err := q.QueryRowContext(ctx,
			`SELECT id, created_time, last_modified_time, name, email FROM app_user`,
		).Scan(&id, &user.CreatedTime, &user.LastModifiedTime, &user.Name, &user.Email)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tenant %d: %w", t, common.ErrInvalidTenantID)
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		user.ID = tenant.KeyFromInt64(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
