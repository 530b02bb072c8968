package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tenantive/jobboard/internal/common"
	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/tenant"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestWithScope_EnterThenExit(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectExec(`^SET ROLE "tenant_7"$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`^SELECT job_id FROM user_job$`).
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(1)))
	mock.ExpectExec(`^RESET ROLE$`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := WithScope(context.Background(), db, 7, func(ctx context.Context, q dbx.DBTX) error {
		rows, err := q.QueryContext(ctx, "SELECT job_id FROM user_job")
		if err != nil {
			return err
		}
		return rows.Close()
	})
	if err != nil {
		t.Fatalf("WithScope error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithScope_ExitRunsAfterFailedStatement(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectExec(`^SET ROLE "tenant_7"$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^INSERT INTO user_job`).WillReturnError(boom)
	mock.ExpectExec(`^RESET ROLE$`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := WithScope(context.Background(), db, 7, func(ctx context.Context, q dbx.DBTX) error {
		_, err := q.ExecContext(ctx, "INSERT INTO user_job (id) VALUES ($1)", int64(1))
		return err
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped statement error, got %v", err)
	}
	// RESET ROLE must still have been issued.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithScope_ExitRunsAfterCancellation(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectExec(`^SET ROLE "tenant_7"$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^RESET ROLE$`).WillReturnResult(sqlmock.NewResult(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	err := WithScope(ctx, db, 7, func(ctx context.Context, q dbx.DBTX) error {
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestWithScope_MissingRoleIsInvalidTenant(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectExec(`^SET ROLE "tenant_9"$`).
		WillReturnError(&pgconn.PgError{Code: CodeInvalidParameterValue})

	err := WithScope(context.Background(), db, 9, func(ctx context.Context, q dbx.DBTX) error {
		t.Fatal("fn must not run when Enter fails")
		return nil
	})
	if !errors.Is(err, common.ErrInvalidTenantID) {
		t.Fatalf("expected ErrInvalidTenantID, got %v", err)
	}
}

func TestWithScope_InvalidTenantIDRejectedLocally(t *testing.T) {
	db, _ := newMockDB(t)
	defer db.Close()

	err := WithScope(context.Background(), db, tenant.MaxID+1, func(ctx context.Context, q dbx.DBTX) error {
		t.Fatal("fn must not run")
		return nil
	})
	if !errors.Is(err, common.ErrInvalidTenantID) {
		t.Fatalf("expected ErrInvalidTenantID, got %v", err)
	}
}

func TestScope_NotReentrant(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectExec(`^SET ROLE "tenant_1"$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^RESET ROLE$`).WillReturnResult(sqlmock.NewResult(0, 0))

	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("conn error: %v", err)
	}
	defer conn.Close()

	s := NewScope(conn, 1)
	if err := s.Enter(context.Background()); err != nil {
		t.Fatalf("enter error: %v", err)
	}
	if err := s.Enter(context.Background()); err == nil {
		t.Fatal("expected error on second Enter")
	}
	if err := s.Exit(context.Background()); err != nil {
		t.Fatalf("exit error: %v", err)
	}
	// Exit is idempotent for defer use.
	if err := s.Exit(context.Background()); err != nil {
		t.Fatalf("second exit error: %v", err)
	}
	// A finished scope cannot be reused.
	if err := s.Enter(context.Background()); err == nil {
		t.Fatal("expected error on Enter after Exit")
	}
}

func TestScope_FailedResetSurfaces(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	mock.ExpectExec(`^SET ROLE "tenant_1"$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^RESET ROLE$`).WillReturnError(errors.New("conn gone"))

	err := WithScope(context.Background(), db, 1, func(ctx context.Context, q dbx.DBTX) error {
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "reset role") {
		t.Fatalf("expected reset role error, got %v", err)
	}
}
