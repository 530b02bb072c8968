package models

import "github.com/tenantive/jobboard/internal/tenant"

// User is a tenant-scoped account row. ID is a tenant.Key, so the owning
// tenant is recoverable from the id alone and the row-level policies can
// filter on it.
type User struct {
	ID               tenant.Key
	CreatedTime      int64
	LastModifiedTime int64
	Name             string
	Email            string
}
