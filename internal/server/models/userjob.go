package models

import "github.com/tenantive/jobboard/internal/tenant"

// UserJob records that a user applied to a job. Tenant-scoped: ID is a
// tenant.Key generated for the applying tenant, which satisfies the filter
// policy by construction. (user_id, job_id) is unique, so one tenant can
// apply to a given job at most once.
type UserJob struct {
	ID     tenant.Key
	UserID tenant.Key
	JobID  int64
}
