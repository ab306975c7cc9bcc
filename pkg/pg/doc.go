// Package pg connects to the global registry database, the one PostgreSQL
// instance shared by every application instance that holds the tenants
// catalog. Per-tenant databases are opened elsewhere; this package covers
// only the control-plane side: a pgxpool with startup retries, a
// healthcheck closure for readiness probes, and error classifiers for the
// SQLSTATE codes the registry store cares about.
//
// Config is populated from REGISTRY_* environment variables. Registry
// schema migrations run through the provision package's migrator against
// the same pool.
package pg
