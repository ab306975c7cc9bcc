package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ErrorHandler turns a resolution failure into an HTTP response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	cache         Cache
	cacheTTL      time.Duration
	errorHandler  ErrorHandler
	skipPaths     []string
	requireTenant bool
	logger        *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets a custom cache implementation, e.g. a Redis-backed one for
// multi-instance deployments.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithCacheTTL sets how long resolved tenants stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution entirely,
// e.g. health and metrics endpoints.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithRequireTenant controls whether requests without any tenant identifier
// are rejected. Defaults to true; pass false on routers that mix public and
// tenant-scoped routes and guard the latter with RequireTenant.
func WithRequireTenant(require bool) Option {
	return func(c *config) {
		c.requireTenant = require
	}
}

// WithLogger sets the logger used for middleware diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrTenantInactive):
		http.Error(w, "Tenant is inactive", http.StatusForbidden)
	case errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Tenant required", http.StatusUnauthorized)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
