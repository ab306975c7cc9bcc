// Package tenantdb maintains one lazily created database engine per tenant
// and hands out request-scoped sessions on them.
//
// Every tenant owns a physical database; the Manager opens an engine (a
// bounded *sql.DB pool, Postgres through pgx or a SQLite file) the first
// time a tenant is served and caches it for the tenant's lifetime. Engine
// creation is single-flight: any number of requests racing on a cold cache
// produce exactly one engine, with the losers waiting on the winner's
// result. Opens run detached from the triggering request, so one impatient
// caller cancelling never aborts work other requests are waiting on.
//
// Usage:
//
//	mgr := tenantdb.New(cfg,
//		tenantdb.WithLogger(log),
//		tenantdb.WithProvisioner(prov),
//		tenantdb.WithRegistry(registry),
//	)
//	defer mgr.Close(context.Background())
//
//	session, err := mgr.GetSession(ctx, tn)
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	rows, err := session.Conn().QueryContext(ctx, `SELECT ...`)
//
// The middleware in pkg/tenant consumes the Manager through a one-line
// adapter:
//
//	sessions := func(ctx context.Context, t *tenant.Tenant) (tenant.Session, error) {
//		s, err := mgr.GetSession(ctx, t)
//		if err != nil {
//			return nil, err
//		}
//		return s, nil
//	}
//
// ProvisionTenant runs the full onboarding sequence (create database, apply
// schema, register tenant) and reports failures as a ProvisioningError
// naming the stage that failed and whether an orphaned database was left
// behind. EvictTenant tears an engine down when a tenant is offboarded;
// both tolerate races with concurrent engine creation.
package tenantdb
