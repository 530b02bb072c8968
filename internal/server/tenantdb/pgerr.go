package tenantdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes translated into sentinel errors at this boundary.
// Anything not listed here propagates unclassified.
const (
	CodeUniqueViolation           = "23505"
	CodeForeignKeyViolation       = "23503"
	CodeNumericValueOutOfRange    = "22003"
	CodeInvalidParameterValue     = "22023"
	CodeInvalidTextRepresentation = "22P02"
	CodeDuplicateObject           = "42710"
	CodeUndefinedObject           = "42704"
	CodeInsufficientPrivilege     = "42501"
)

// CodeOf returns the SQLSTATE code of a Postgres error, or "" when the
// error did not come from the server.
func CodeOf(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
