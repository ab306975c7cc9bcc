package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/pkg/logger"
	"github.com/stewardhq/steward/pkg/secrets"
	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
	"github.com/stewardhq/steward/pkg/tenantdb"
)

// Manager is the slice of the connection manager the service needs:
// provisioning new databases, tearing down cached connections, and probing
// tenant database health.
type Manager interface {
	ProvisionTenant(ctx context.Context, d tenantdb.Descriptor) (*tenantpkg.Tenant, error)
	EvictTenant(ctx context.Context, id uuid.UUID) error
	HealthCheck(ctx context.Context, t *tenantpkg.Tenant) bool
}

// NewTenant describes a tenant to onboard.
type NewTenant struct {
	Slug     string
	Name     string
	Plan     string
	Features []string
}

// Service is the orchestration facade over the registry store and the
// connection manager. It implements tenant.Provider for the request
// middleware and carries the signup/offboarding operations.
type Service struct {
	store   Store
	keyring *secrets.Keyring
	manager Manager
	cache   tenantpkg.Cache
	log     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for lifecycle events.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithServiceCache hands the service the tenant metadata cache the request
// middleware reads from, so deactivation can invalidate cached records
// instead of waiting out their TTL. Pass the same cache instance to both.
func WithServiceCache(cache tenantpkg.Cache) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

func NewService(store Store, keyring *secrets.Keyring, manager Manager, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		keyring: keyring,
		manager: manager,
		cache:   tenantpkg.NewNoopCache(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provision onboards a new tenant: creates its physical database, applies
// the domain schema, and registers it in the catalog. Slow by contract;
// call it from signup flows, never the request path. The slug check here is
// advisory, the database's partial unique index settles races.
func (s *Service) Provision(ctx context.Context, in NewTenant) (*tenantpkg.Tenant, error) {
	if !tenantpkg.ValidIdentifier(in.Slug) {
		return nil, fmt.Errorf("%w: %q", tenantpkg.ErrInvalidIdentifier, in.Slug)
	}

	if existing, err := s.store.GetBySlug(ctx, in.Slug); err == nil && existing.Active {
		return nil, ErrSlugTaken
	} else if err != nil && !errors.Is(err, tenantpkg.ErrTenantNotFound) {
		return nil, err
	}

	t, err := s.manager.ProvisionTenant(ctx, tenantdb.Descriptor{
		Slug:     in.Slug,
		Name:     in.Name,
		Plan:     in.Plan,
		Features: in.Features,
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "tenant onboarded",
		logger.TenantID(t.ID),
		logger.TenantSlug(t.Slug))
	return t, nil
}

// Load resolves an identifier (UUID or slug) to the tenant with its
// credential decrypted. Inactive tenants load too, with Active false; the
// caller decides whether that matters. Unknown identifiers return
// tenant.ErrTenantNotFound.
func (s *Service) Load(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
	rec, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	credential := ""
	if rec.EncryptedCredential != "" {
		credential, err = s.keyring.DecryptCredential(rec.ID.String(), rec.EncryptedCredential)
		if err != nil {
			return nil, errors.Join(ErrCredentialDecrypt, err)
		}
	}
	return rec.Tenant(credential), nil
}

// GetByIdentifier makes Service a tenant.Provider for the middleware.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
	return s.Load(ctx, identifier)
}

func (s *Service) lookup(ctx context.Context, identifier string) (*Record, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		return s.store.GetByID(ctx, id)
	}
	if !tenantpkg.ValidIdentifier(identifier) {
		return nil, fmt.Errorf("%w: %q", tenantpkg.ErrInvalidIdentifier, identifier)
	}
	return s.store.GetBySlug(ctx, identifier)
}

// Deactivate offboards a tenant. The registry flag flips first, then the
// metadata cache drops the record, then the cached connection is evicted:
// a racing request either sees the old still-active record or the new
// inactive one, never an evicted connection behind an active flag, and no
// later request can revive the engine from a stale cache entry.
// Deactivation is terminal and idempotent.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SetActive(ctx, id, false); err != nil {
		return err
	}

	// The middleware caches under whichever identifier resolved the request.
	s.cache.Delete(ctx, id.String())
	s.cache.Delete(ctx, rec.Slug)

	if err := s.manager.EvictTenant(ctx, id); err != nil {
		return fmt.Errorf("evict deactivated tenant: %w", err)
	}

	s.log.InfoContext(ctx, "tenant deactivated", logger.TenantID(id))
	return nil
}

// HealthCheck probes the tenant's database with one round-trip query.
// Works for inactive tenants too so operators can verify an offboarded
// database before reclaiming it. Never returns an error: failures are
// logged and reported as false.
func (s *Service) HealthCheck(ctx context.Context, identifier string) bool {
	t, err := s.Load(ctx, identifier)
	if err != nil {
		s.log.WarnContext(ctx, "tenant health check failed to load tenant",
			slog.String("identifier", identifier),
			logger.Error(err))
		return false
	}
	return s.manager.HealthCheck(ctx, t)
}

// State derives the lifecycle state of a loaded tenant from its active flag
// and the latest health probe. Degraded is observational only; it never
// blocks requests.
func (s *Service) State(ctx context.Context, t *tenantpkg.Tenant) State {
	if t == nil {
		return ""
	}
	if !t.Active {
		return StateDeactivated
	}
	if s.manager.HealthCheck(ctx, t) {
		return StateActive
	}
	return StateDegraded
}
