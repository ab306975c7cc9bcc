package tenant

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware resolves the tenant for every incoming request, verifies it is
// active, and attaches it to the context. When sessions is non-nil it also
// opens a tenant database session for the lifetime of the request and
// releases it once the handler returns.
//
// Requests without any identifier are rejected before reaching handlers
// unless WithRequireTenant(false) is set.
func Middleware(resolver Resolver, provider Provider, sessions SessionSource, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cache:         NewMemoryCache(),
		cacheTTL:      5 * time.Minute,
		errorHandler:  defaultErrorHandler,
		requireTenant: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolver(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if identifier == "" {
				if cfg.requireTenant {
					cfg.errorHandler(w, r, ErrNoTenantInContext)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			t, ok := cfg.cache.Get(r.Context(), identifier)
			if !ok {
				t, err = provider.GetByIdentifier(r.Context(), identifier)
				if err != nil {
					cfg.errorHandler(w, r, err)
					return
				}
				cfg.cache.Set(r.Context(), identifier, t, cfg.cacheTTL)
			}

			// The active check runs on every request, cached or not, so a
			// deactivated tenant is shut out within one cache TTL at worst
			// and immediately when the cache entry was invalidated.
			if !t.Active {
				cfg.errorHandler(w, r, ErrTenantInactive)
				return
			}

			ctx := WithTenant(r.Context(), t)

			if sessions != nil {
				session, err := sessions(ctx, t)
				if err != nil {
					cfg.logger.ErrorContext(ctx, "failed to open tenant session",
						slog.String("tenant_id", t.ID.String()),
						slog.Any("error", err))
					cfg.errorHandler(w, r, err)
					return
				}
				defer func() {
					if err := session.Close(); err != nil {
						cfg.logger.WarnContext(ctx, "failed to release tenant session",
							slog.String("tenant_id", t.ID.String()),
							slog.Any("error", err))
					}
				}()
				ctx = WithSession(ctx, session)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures a tenant was resolved earlier in the chain. Put it
// in front of tenant-scoped route groups when the outer middleware runs with
// WithRequireTenant(false).
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t, ok := FromContext(r.Context())
			if !ok || t == nil {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
