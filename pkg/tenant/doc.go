// Package tenant identifies which customer organization an HTTP request
// belongs to and carries that identity through the request context.
//
// Every tenant owns a physically separate database, so resolution is the
// first thing that happens to a request: a Resolver extracts an identifier
// (header, subdomain, or bearer-token claim), a Provider loads the tenant
// from the registry, and the middleware attaches both the tenant and an
// optional per-request database session to the context.
//
// # Usage
//
//	resolver := tenant.NewCompositeResolver(
//	    tenant.NewHeaderResolver(""),
//	    tenant.NewSubdomainResolver(".steward.app"),
//	    tenant.NewClaimResolver(""),
//	)
//
//	mw := tenant.Middleware(resolver, provider,
//	    func(ctx context.Context, t *tenant.Tenant) (tenant.Session, error) {
//	        return manager.GetSession(ctx, t)
//	    },
//	    tenant.WithCacheTTL(10*time.Minute),
//	    tenant.WithSkipPaths([]string{"/health"}),
//	)
//	router.Use(mw)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    t := tenant.MustFromContext(r.Context())
//	    session, _ := tenant.SessionFromContext(r.Context())
//	    // query session.Conn() with tenant-scoped SQL
//	}
//
// # Resolution order
//
// NewCompositeResolver fixes the priority: resolvers run in the order given
// and the first non-empty identifier wins. A request carrying identifiers in
// several places is resolved by the highest-priority source only; the rest
// are ignored.
//
// # Failure modes
//
// Unknown identifiers map to ErrTenantNotFound, deactivated tenants to
// ErrTenantInactive, and requests with no identifier at all are rejected
// with ErrNoTenantInContext before any business logic runs. The default
// error handler renders 404, 403, 401 and 400 respectively; install
// WithErrorHandler to change the mapping.
//
// # Caching
//
// Resolved tenants are cached (in-memory TTL+LRU by default) to keep
// registry lookups off the hot path. The cache stores metadata only.
// Deactivation takes effect at the next cache miss or expiry, so TTLs
// should stay short; svc/tenant invalidates eagerly on deactivation.
package tenant
