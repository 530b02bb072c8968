// Package common defines the sentinel errors shared across the server
// layers. Callers match them with errors.Is; repositories translate
// vendor error codes into these before anything crosses the service
// boundary.
package common

import "errors"

var (
	// Classified storage errors (see stores/repositories).
	ErrInvalidTenantID  = errors.New("invalid tenant id")
	ErrRelationExists   = errors.New("relation already exists")
	ErrInvalidReference = errors.New("invalid reference")
	ErrNotFound         = errors.New("not found")

	// Provisioning errors.
	ErrTenantExists   = errors.New("tenant already provisioned")
	ErrTenantNotFound = errors.New("tenant not provisioned")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	ErrInternal = errors.New("internal error")
)
