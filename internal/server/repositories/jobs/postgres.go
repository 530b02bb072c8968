// Package jobs provides the PostgreSQL-backed repository for the global
// job catalog. The job table is not tenant-scoped: reads run on the bare
// connection under the repository's own role, bypassing session scoping,
// and writes happen only through the administrative path.
package jobs

import (
	"context"
	"fmt"

	"github.com/tenantive/jobboard/internal/dbx"
	"github.com/tenantive/jobboard/internal/server/models"
)

// PostgresRepository implements job storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetAll returns every job in the catalog.
func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.Job, error) {
	query := `
		SELECT id, created_time, last_modified_time, name, company,
			expected_experience_years, locations, short_job_description,
			short_company_description, full_job_description
		FROM job
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Job
	for rows.Next() {
		var item models.Job
		if err := rows.Scan(
			&item.ID, &item.CreatedTime, &item.LastModifiedTime, &item.Name, &item.Company,
			&item.ExpectedExpYears, &item.Locations, &item.ShortJobDesc,
			&item.ShortCompanyDesc, &item.FullJobDesc,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a job through the administrative path and returns the
// generated id.
func (r *PostgresRepository) Create(ctx context.Context, job *models.Job) (int64, error) {
	query := `
		INSERT INTO job (created_time, last_modified_time, name, company,
			expected_experience_years, locations, short_job_description,
			short_company_description, full_job_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		job.CreatedTime, job.LastModifiedTime, job.Name, job.Company,
		job.ExpectedExpYears, job.Locations, job.ShortJobDesc,
		job.ShortCompanyDesc, job.FullJobDesc,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
