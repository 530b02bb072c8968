// Package models holds the persisted entities of the job board.
package models

// Job is a listing in the global catalog. Its id is an autoincrement
// BIGSERIAL, not a tenant.Key: the table is shared by all tenants and is
// written only through the administrative path.
type Job struct {
	ID               int64
	CreatedTime      int64
	LastModifiedTime int64
	Name             string
	Company          string
	ExpectedExpYears string
	Locations        string
	ShortJobDesc     string
	ShortCompanyDesc string
	FullJobDesc      string
}
