// Package schema is the static registry of tables the provisioner derives
// row-level-security state from. A table is tenant-scoped exactly when its
// primary key is a generated tenant.Key rather than an autoincrement id;
// adding a new tenant-scoped table here is all that is needed for its rows
// to fall under the per-tenant policies.
package schema

// Table describes one table of the business schema.
type Table struct {
	Name string

	// Autoincrement marks tables whose id comes from a sequence. Those are
	// global (no isolation principal, no filter policy) and are written
	// only through the administrative path.
	Autoincrement bool
}

// Tables lists the full business schema, mirroring the migrations.
var Tables = []Table{
	{Name: "job", Autoincrement: true},
	{Name: "app_user"},
	{Name: "user_job"},
}

// TenantScoped returns the tables that carry per-tenant filter policies.
func TenantScoped() []Table {
	var out []Table
	for _, t := range Tables {
		if !t.Autoincrement {
			out = append(out, t)
		}
	}
	return out
}
