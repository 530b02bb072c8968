package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/server/schema"
	"github.com/tenantive/jobboard/internal/tenant"
)

// Registry brings the database's access-control state into agreement with
// a declared set of tenants. For each tenant it maintains one role and,
// per tenant-scoped table, a row-level-security policy whose predicate
// decodes the owning tenant straight out of the primary key.
//
// Registry operations are administrative and run out-of-band from request
// serving. Provisioning the same tenant id concurrently is not supported;
// distinct ids are independent.
type Registry struct {
	db     *sql.DB
	tables []schema.Table
	log    logging.Logger
}

// NewRegistry builds a registry over the application database. The policy
// set is derived from the schema registry's tenant-scoped tables.
func NewRegistry(db *sql.DB, log logging.Logger) *Registry {
	return &Registry{db: db, tables: schema.TenantScoped(), log: log.With("module", "tenantdb")}
}

// PolicyName is the deterministic name of the filter policy for a table
// and tenant, so re-provisioning always addresses the same object.
func PolicyName(table string, t tenant.ID) string {
	return fmt.Sprintf("%s_tenant_%d", table, t)
}

// Provision creates the tenant's role and installs its filter policy on
// every tenant-scoped table, atomically: all DDL runs in one transaction,
// so a failure partway leaves no partially privileged role behind. A role
// that already exists yields ErrTenantExists without touching existing
// policies.
func (r *Registry) Provision(ctx context.Context, t tenant.ID) error {
	if !t.Valid() {
		return fmt.Errorf("tenant %d: %w", t, common.ErrInvalidTenantID)
	}
	role := pgx.Identifier{t.Role()}.Sanitize()

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, "CREATE ROLE "+role); err != nil {
			if CodeOf(err) == CodeDuplicateObject {
				return fmt.Errorf("tenant %d: %w", t, common.ErrTenantExists)
			}
			return fmt.Errorf("create role %s: %w", t.Role(), err)
		}

		for _, tbl := range r.tables {
			if err := r.installPolicy(ctx, tx, tbl, t, role); err != nil {
				return err
			}
		}
		return nil
	})
}

// installPolicy enables row-level security on the table, grants the role
// its privileges, and creates the filter policy. BIGINT is signed and >>
// sign-extends, hence the mask on the shifted key.
func (r *Registry) installPolicy(ctx context.Context, tx dbx.DBTX, tbl schema.Table, t tenant.ID, role string) error {
	table := pgx.Identifier{tbl.Name}.Sanitize()

	stmts := []string{
		fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", table),
		fmt.Sprintf("GRANT SELECT, INSERT, UPDATE, DELETE ON %s TO %s", table, role),
		fmt.Sprintf(
			"CREATE POLICY %s ON %s AS PERMISSIVE FOR ALL TO %s USING ((id >> %d) & %d = %d)",
			pgx.Identifier{PolicyName(tbl.Name, t)}.Sanitize(), table, role,
			tenant.TenantShift, tenant.MaxID, t,
		),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("table %s: %w", tbl.Name, err)
		}
	}
	return nil
}

// Deprovision drops the tenant's filter policies, privileges and role in
// one transaction. Roles are cluster-global in Postgres, so the drop takes
// effect regardless of which database issued it. A tenant that was never
// provisioned yields ErrTenantNotFound.
func (r *Registry) Deprovision(ctx context.Context, t tenant.ID) error {
	if !t.Valid() {
		return fmt.Errorf("tenant %d: %w", t, common.ErrInvalidTenantID)
	}
	role := pgx.Identifier{t.Role()}.Sanitize()

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, tbl := range r.tables {
			table := pgx.Identifier{tbl.Name}.Sanitize()
			policy := pgx.Identifier{PolicyName(tbl.Name, t)}.Sanitize()

			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP POLICY %s ON %s", policy, table)); err != nil {
				if CodeOf(err) == CodeUndefinedObject {
					return fmt.Errorf("tenant %d: %w", t, common.ErrTenantNotFound)
				}
				return fmt.Errorf("table %s: %w", tbl.Name, err)
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("REVOKE ALL ON %s FROM %s", table, role)); err != nil {
				return fmt.Errorf("table %s: %w", tbl.Name, err)
			}
		}

		if _, err := tx.ExecContext(ctx, "DROP ROLE "+role); err != nil {
			if CodeOf(err) == CodeUndefinedObject {
				return fmt.Errorf("tenant %d: %w", t, common.ErrTenantNotFound)
			}
			return fmt.Errorf("drop role %s: %w", t.Role(), err)
		}
		return nil
	})
}

// ProvisionAll provisions every tenant in the set, best-effort: a failed
// tenant is reported and the rest still run. The returned error joins the
// per-tenant failures, if any.
func (r *Registry) ProvisionAll(ctx context.Context, ids []tenant.ID) error {
	var errs []error
	for _, id := range ids {
		if err := r.Provision(ctx, id); err != nil {
			r.log.Error(ctx, "provisioning failed", "tenant", id, "error", err)
			errs = append(errs, err)
			continue
		}
		r.log.Info(ctx, "provisioned tenant", "tenant", id, "tables", len(r.tables))
	}
	return errors.Join(errs...)
}

// DeprovisionAll removes every tenant in the set, best-effort, mirroring
// ProvisionAll.
func (r *Registry) DeprovisionAll(ctx context.Context, ids []tenant.ID) error {
	var errs []error
	for _, id := range ids {
		if err := r.Deprovision(ctx, id); err != nil {
			r.log.Error(ctx, "deprovisioning failed", "tenant", id, "error", err)
			errs = append(errs, err)
			continue
		}
		r.log.Info(ctx, "deprovisioned tenant", "tenant", id)
	}
	return errors.Join(errs...)
}
