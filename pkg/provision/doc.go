// Package provision creates physical tenant databases and applies their
// schema.
//
// The Provisioner interface has two implementations: ControlPlane talks to
// the managed-database service over HTTP, and FileProvisioner creates local
// SQLite files for development and tests. Fallback combines the two so a
// developer machine without a control plane still provisions working
// tenants, gated by configuration and logged as a durability downgrade.
//
// DatabaseName turns a tenant slug into a unique physical database name;
// Migrator applies the embedded goose migrations to freshly created
// databases (and the registry schema to the global one).
//
// Usage:
//
//	cfg := provision.Config{...}
//	cp, err := provision.NewControlPlane(cfg, log)
//	if err != nil {
//		return err
//	}
//	prov := provision.NewFallback(cp, provision.NewFileProvisioner(cfg.FileDir, log), cfg.AllowFileFallback, log)
//
//	db, err := prov.CreateDatabase(ctx, provision.DatabaseName("acme-corp"))
//	if err != nil {
//		return err
//	}
package provision
