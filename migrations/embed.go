// Package migrations carries the embedded goose migration sources: registry
// holds the schema of the global tenants table, tenant holds the full domain
// schema applied to every tenant database. SQL is kept portable between
// postgres and sqlite targets.
package migrations

import "embed"

// Registry contains migrations for the global registry database.
//
//go:embed registry/*.sql
var Registry embed.FS

// Tenant contains migrations applied to each tenant database.
//
//go:embed tenant/*.sql
var Tenant embed.FS
