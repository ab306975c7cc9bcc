package tenant

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant carries everything the request path needs to know about a customer
// organization: identity, the connection target of its isolated database,
// and coarse account state. Values are produced once per resolution and
// treated as immutable afterwards.
type Tenant struct {
	ID          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	DatabaseURL string    `json:"-"`
	Credential  string    `json:"-"`
	Plan        string    `json:"plan"`
	Features    []string  `json:"features,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsFileBacked reports whether the tenant database is a local file rather
// than a server. File targets have no URL scheme or use file:.
func (t *Tenant) IsFileBacked() bool {
	if t.DatabaseURL == "" {
		return false
	}
	if strings.HasPrefix(t.DatabaseURL, "file:") {
		return true
	}
	return !strings.Contains(t.DatabaseURL, "://")
}

// HasFeature reports whether the named capability flag is enabled.
func (t *Tenant) HasFeature(name string) bool {
	return slices.Contains(t.Features, name)
}

// Provider loads tenant information from the registry.
type Provider interface {
	// GetByIdentifier retrieves a tenant by UUID or slug. Implementations
	// return the tenant with its credential already decrypted, and
	// ErrTenantNotFound when no row matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
