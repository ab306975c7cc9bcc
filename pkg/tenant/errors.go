package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches an identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned for tenants that exist but have been
	// deactivated. Deliberately distinct from ErrTenantNotFound so callers
	// can respond differently.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrNoTenantInContext is returned when a request reaches tenant-scoped
	// code without a resolved tenant.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInvalidIdentifier is returned when an identifier fails validation
	// before any lookup happens.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")
)
