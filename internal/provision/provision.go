// Package provision implements the administrative tool behind
// cmd/provision: database creation, schema migrations, tenant
// provisioning and seed data. Everything here runs out-of-band from
// request serving, serially, against one database.
package provision

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/server/config"
	"github.com/tenantive/jobboard/internal/server/models"
	"github.com/tenantive/jobboard/internal/server/repositories/repomanager"
	"github.com/tenantive/jobboard/internal/server/tenantdb"
	"github.com/tenantive/jobboard/internal/tenant"
)

// Tool executes the administrative actions.
type Tool struct {
	cfg     *config.Config
	log     logging.Logger
	manager repomanager.RepositoryManager
}

// NewTool constructs the tool from configuration.
func NewTool(cfg *config.Config, log logging.Logger) *Tool {
	return &Tool{cfg: cfg, log: log.With("module", "provision"), manager: repomanager.NewPostgresRepositoryManager()}
}

// openApp opens a pool on the application database.
func (t *Tool) openApp() (*sql.DB, error) {
	db, err := sql.Open("pgx", t.cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return db, nil
}

// openAdmin opens a pool on the maintenance database, where CREATE/DROP
// DATABASE must run.
func (t *Tool) openAdmin() (*sql.DB, error) {
	db, err := sql.Open("pgx", t.cfg.AdminDatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("admin db open error: %w", err)
	}
	return db, nil
}

// databaseName extracts the application database name from the DSN.
func (t *Tool) databaseName() (string, error) {
	cc, err := pgx.ParseConfig(t.cfg.DatabaseDSN)
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}
	if cc.Database == "" {
		return "", fmt.Errorf("DSN has no database name")
	}
	return cc.Database, nil
}

// CreateDatabase creates the application database.
func (t *Tool) CreateDatabase(ctx context.Context) error {
	name, err := t.databaseName()
	if err != nil {
		return err
	}
	db, err := t.openAdmin()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	t.log.Info(ctx, "created database", "name", name)
	return nil
}

// DropDatabase drops the application database.
func (t *Tool) DropDatabase(ctx context.Context) error {
	name, err := t.databaseName()
	if err != nil {
		return err
	}
	db, err := t.openAdmin()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "DROP DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	t.log.Info(ctx, "dropped database", "name", name)
	return nil
}

// Migrate runs the embedded schema migrations.
func (t *Tool) Migrate(ctx context.Context) error {
	db, err := t.openApp()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := t.manager.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	t.log.Info(ctx, "migrations applied")
	return nil
}

// Provision provisions the given tenants, best-effort with a per-tenant
// report (see tenantdb.Registry).
func (t *Tool) Provision(ctx context.Context, ids []tenant.ID) error {
	db, err := t.openApp()
	if err != nil {
		return err
	}
	defer db.Close()

	return tenantdb.NewRegistry(db, t.log).ProvisionAll(ctx, ids)
}

// Deprovision removes the given tenants' principals and policies.
func (t *Tool) Deprovision(ctx context.Context, ids []tenant.ID) error {
	db, err := t.openApp()
	if err != nil {
		return err
	}
	defer db.Close()

	return tenantdb.NewRegistry(db, t.log).DeprovisionAll(ctx, ids)
}

// SeedFile is the JSON shape of a seed data file.
type SeedFile struct {
	Users []SeedUser `json:"users"`
	Jobs  []SeedJob  `json:"jobs"`
}

// SeedUser creates one tenant account.
type SeedUser struct {
	Tenant uint32 `json:"tenant"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// SeedJob creates one catalog entry.
type SeedJob struct {
	Name                    string `json:"name"`
	Company                 string `json:"company"`
	ExpectedExperienceYears string `json:"expectedExperienceInYears"`
	Locations               string `json:"locations"`
	ShortJobDescription     string `json:"shortJobDescription"`
	ShortCompanyDescription string `json:"shortCompanyDescription"`
	FullJobDescription      string `json:"fullJobDescription"`
}

// ParseSeedFile reads and validates a seed file.
func ParseSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for _, u := range seed.Users {
		if !tenant.ID(u.Tenant).Valid() {
			return nil, fmt.Errorf("seed user %q: tenant id %d out of range", u.Email, u.Tenant)
		}
	}
	return &seed, nil
}

// Seed loads users and jobs from the file through the repositories, so
// every insert is parameterized and user ids are generated keys.
func (t *Tool) Seed(ctx context.Context, path string) error {
	seed, err := ParseSeedFile(path)
	if err != nil {
		return err
	}

	db, err := t.openApp()
	if err != nil {
		return err
	}
	defer db.Close()

	userRepo := t.manager.Users(db)
	for _, u := range seed.Users {
		if _, err := userRepo.Create(ctx, tenant.ID(u.Tenant), u.Name, u.Email); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Email, err)
		}
	}

	nowMilli := time.Now().UnixMilli()
	jobRepo := t.manager.Jobs(db)
	for _, j := range seed.Jobs {
		if _, err := jobRepo.Create(ctx, &models.Job{
			CreatedTime:      nowMilli,
			LastModifiedTime: nowMilli,
			Name:             j.Name,
			Company:          j.Company,
			ExpectedExpYears: j.ExpectedExperienceYears,
			Locations:        j.Locations,
			ShortJobDesc:     j.ShortJobDescription,
			ShortCompanyDesc: j.ShortCompanyDescription,
			FullJobDesc:      j.FullJobDescription,
		}); err != nil {
			return fmt.Errorf("seed job %q: %w", j.Name, err)
		}
	}

	t.log.Info(ctx, "seed data loaded", "users", len(seed.Users), "jobs", len(seed.Jobs))
	return nil
}

// ParseTenantList parses a comma-separated list of tenant ids.
func ParseTenantList(s string) ([]tenant.ID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty tenant list")
	}
	var ids []tenant.ID
	for _, part := range strings.Split(s, ",") {
		id, err := tenant.ParseID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
