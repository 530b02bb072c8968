// Package userjobs provides the PostgreSQL-backed repository for job
// applications. Every operation runs inside a session scope for the
// calling tenant: the row-level policy on user_job filters reads and
// writes, so none of the statements carries a tenant predicate.
package userjobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/server/tenantdb"
	"github.com/tenantive/jobboard/internal/tenant"
)

// PostgresRepository implements application storage over a *sql.DB pool
// handle.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository over the pool.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AppliedJobIDs returns the set of job ids the tenant has applied to. The
// policy guarantees the set excludes other tenants' rows.
func (r *PostgresRepository) AppliedJobIDs(ctx context.Context, t tenant.ID) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	err := tenantdb.WithScope(ctx, r.db, t, func(ctx context.Context, q dbx.DBTX) error {
		rows, err := q.QueryContext(ctx, `SELECT job_id FROM user_job`)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids[id] = struct{}{}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Apply records the tenant's application to a job. The new row's key is
// generated for the calling tenant, so the filter policy is satisfied by
// construction. A repeated application yields ErrRelationExists; a job id
// that does not exist yields ErrInvalidReference.
func (r *PostgresRepository) Apply(ctx context.Context, t tenant.ID, jobID int64) error {
	key, err := tenant.NewKey(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrInvalidTenantID)
	}

	return tenantdb.WithScope(ctx, r.db, t, func(ctx context.Context, q dbx.DBTX) error {
		// The policy on app_user narrows it to the tenant's own row.
		var userID int64
		err := q.QueryRowContext(ctx, `SELECT id FROM app_user`).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tenant %d: %w", t, common.ErrInvalidTenantID)
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		_, err = q.ExecContext(ctx,
			`INSERT INTO user_job (id, user_id, job_id) VALUES ($1, $2, $3)`,
			key.Int64(), userID, jobID,
		)
		switch tenantdb.CodeOf(err) {
		case tenantdb.CodeUniqueViolation:
			return fmt.Errorf("tenant %d job %d: %w", t, jobID, common.ErrRelationExists)
		case tenantdb.CodeForeignKeyViolation:
			return fmt.Errorf("job %d: %w", jobID, common.ErrInvalidReference)
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

// Withdraw removes the tenant's application to a job. Deleting a row that
// is absent, or that belongs to another tenant and is therefore invisible
// under the scope, yields ErrNotFound rather than silent success.
func (r *PostgresRepository) Withdraw(ctx context.Context, t tenant.ID, jobID int64) error {
	return tenantdb.WithScope(ctx, r.db, t, func(ctx context.Context, q dbx.DBTX) error {
		res, err := q.ExecContext(ctx, `DELETE FROM user_job WHERE job_id = $1`, jobID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("tenant %d job %d: %w", t, jobID, common.ErrNotFound)
		}
		return nil
	})
}
