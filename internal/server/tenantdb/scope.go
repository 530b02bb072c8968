// Package tenantdb implements the storage-side half of tenant isolation:
// per-tenant role provisioning with row-level-security policies (Registry)
// and per-connection role activation for a unit of work (Scope, WithScope).
//
// A pooled connection is a mutable shared resource whose current role is
// part of its state. Everything in this package exists to guarantee that a
// connection never goes back to the pool with a tenant role still active.
package tenantdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/tenant"
)

type scopeState int

const (
	scopeIdle scopeState = iota
	scopeActive
	scopeDone
)

// Scope activates one tenant's database role on one pinned connection for
// the duration of a unit of work. A Scope is single-use: Idle -> Active
// -> Done, and a connection must have at most one active Scope at a time.
// Prefer WithScope, which pairs Enter and Exit on every path.
type Scope struct {
	conn   *sql.Conn
	tenant tenant.ID
	state  scopeState
}

// NewScope binds a scope to a pinned connection. The connection is
// borrowed, not owned: closing it stays with the caller.
func NewScope(conn *sql.Conn, t tenant.ID) *Scope {
	return &Scope{conn: conn, tenant: t}
}

// Enter activates the tenant's role. It must be the first statement issued
// on the connection within this unit of work. A role that does not exist
// (tenant never provisioned, or deprovisioned) yields ErrInvalidTenantID.
func (s *Scope) Enter(ctx context.Context) error {
	if s.state != scopeIdle {
		return errors.New("scope already entered")
	}
	if !s.tenant.Valid() {
		return fmt.Errorf("tenant %d: %w", s.tenant, common.ErrInvalidTenantID)
	}
	if _, err := s.conn.ExecContext(ctx, "SET ROLE "+pgx.Identifier{s.tenant.Role()}.Sanitize()); err != nil {
		switch CodeOf(err) {
		case CodeInvalidParameterValue, CodeUndefinedObject:
			return fmt.Errorf("tenant %d: %w", s.tenant, common.ErrInvalidTenantID)
		}
		return fmt.Errorf("set role: %w", err)
	}
	s.state = scopeActive
	return nil
}

// Exit returns the connection to the neutral role. It runs even when ctx
// is already cancelled, and a second call is a no-op so it can sit in a
// defer. If the reset itself fails the connection is discarded from the
// pool rather than reused elevated.
func (s *Scope) Exit(ctx context.Context) error {
	if s.state != scopeActive {
		return nil
	}
	s.state = scopeDone

	if _, err := s.conn.ExecContext(context.WithoutCancel(ctx), "RESET ROLE"); err != nil {
		// The pool drops connections whose driver func reports ErrBadConn.
		_ = s.conn.Raw(func(driverConn any) error { return driver.ErrBadConn })
		return fmt.Errorf("reset role: %w", err)
	}
	return nil
}

// WithScope runs fn on a connection pinned from the pool with the tenant's
// role active, and guarantees the role is deactivated and the connection
// released on every path, including errors, panics and cancellation. All
// tenant-scoped data access goes through here; the row-level policies do
// the filtering, so fn's statements need no tenant predicate of their own.
func WithScope(ctx context.Context, db *sql.DB, t tenant.ID, fn func(ctx context.Context, q dbx.DBTX) error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); err == nil && closeErr != nil && !errors.Is(closeErr, sql.ErrConnDone) {
			err = closeErr
		}
	}()

	scope := NewScope(conn, t)
	if err = scope.Enter(ctx); err != nil {
		return err
	}
	defer func() {
		exitErr := scope.Exit(ctx)
		if err == nil {
			err = exitErr
		}
	}()

	return fn(ctx, conn)
}
