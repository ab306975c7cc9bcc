// Package tenants is the operator-facing HTTP surface of the tenancy core:
// onboarding, inspection, offboarding, and health probing. It is meant to
// be mounted on an internal admin router, never exposed to end users.
package tenants

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
	svctenant "github.com/stewardhq/steward/svc/tenant"
)

// Service is the slice of the tenant service the module needs.
type Service interface {
	Provision(ctx context.Context, in svctenant.NewTenant) (*tenantpkg.Tenant, error)
	Load(ctx context.Context, identifier string) (*tenantpkg.Tenant, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	HealthCheck(ctx context.Context, identifier string) bool
}

// Router mounts the admin endpoints:
//
//	POST   /            provision a new tenant
//	GET    /{id}        fetch the registry view of a tenant
//	DELETE /{id}        deactivate a tenant (idempotent)
//	GET    /{id}/health probe the tenant's database
func Router(svc Service) chi.Router {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Post("/", h.provision)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.deactivate)
	r.Get("/{id}/health", h.health)
	return r
}
