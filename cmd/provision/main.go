// Command provision administers the job board database: creating and
// dropping the database, running migrations, provisioning tenant roles
// with their row-level-security policies, and loading seed data.
//
// Usage:
//
//	provision -action createdb
//	provision -action migrate
//	provision -action provision -tenants 1,2,3
//	provision -action deprovision -tenants 3
//	provision -action seed -file seed.json
//	provision -action dropdb
//
// Database DSNs come from the shared server configuration (-d, -m, -c).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tenantive/jobboard/internal/flagx"
	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/provision"
	"github.com/tenantive/jobboard/internal/server/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-action", "-tenants", "-file"})

	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	action := fs.String("action", "", "createdb | dropdb | migrate | provision | deprovision | seed")
	tenants := fs.String("tenants", "", "comma-separated tenant ids")
	file := fs.String("file", "", "seed data file (JSON)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.LoadConfig()
	log := logging.NewDefault()
	tool := provision.NewTool(cfg, log)
	ctx := context.Background()

	switch *action {
	case "createdb":
		return tool.CreateDatabase(ctx)
	case "dropdb":
		return tool.DropDatabase(ctx)
	case "migrate":
		return tool.Migrate(ctx)
	case "provision":
		ids, err := provision.ParseTenantList(*tenants)
		if err != nil {
			return err
		}
		return tool.Provision(ctx, ids)
	case "deprovision":
		ids, err := provision.ParseTenantList(*tenants)
		if err != nil {
			return err
		}
		return tool.Deprovision(ctx, ids)
	case "seed":
		if *file == "" {
			return fmt.Errorf("-file is required for seed")
		}
		return tool.Seed(ctx, *file)
	default:
		return fmt.Errorf("unknown action %q", *action)
	}
}
