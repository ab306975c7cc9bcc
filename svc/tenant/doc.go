// Package tenant is the registry service: durable persistence for the
// tenants catalog in the global database, plus the orchestration facade the
// rest of the application talks to when onboarding, loading, or offboarding
// a tenant.
//
// The package is split along the interfaces of its collaborators:
//
//   - Store persists registry records (Postgres in production, in-memory for
//     tests and local development). Credentials are stored encrypted; the
//     store never sees cleartext.
//   - Registry adapts a Store plus a secrets.Keyring into the narrow
//     interface the connection manager needs to persist a freshly
//     provisioned tenant.
//   - Service implements the read model (tenant.Provider) consumed by the
//     request middleware, and the lifecycle operations: Provision, Load,
//     Deactivate, HealthCheck.
//   - RedisCache is a tenant metadata cache for multi-instance deployments,
//     satisfying the middleware's Cache interface.
//   - Seed files describe development fixtures in YAML, applied idempotently
//     against a Store.
//
// Deactivation ordering is deliberate: the registry flag flips before the
// cached connection is evicted, so a racing request either sees the old
// still-active record briefly or the new inactive one. It never observes an
// evicted connection for a tenant that still reads as active.
package tenant
