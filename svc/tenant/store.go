package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// Record is one row of the tenants catalog in the global database. The
// credential is encrypted at rest; rows are soft-deleted only (active flips
// to false, the row stays for historical references).
type Record struct {
	ID                  uuid.UUID
	Slug                string
	Name                string
	DatabaseURL         string
	EncryptedCredential string
	Plan                string
	Features            []string
	Active              bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Tenant builds the request-path view of the record with the credential
// already decrypted by the caller.
func (r *Record) Tenant(credential string) *tenantpkg.Tenant {
	return &tenantpkg.Tenant{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		DatabaseURL: r.DatabaseURL,
		Credential:  credential,
		Plan:        r.Plan,
		Features:    r.Features,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

// Store persists registry records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create inserts a new record. Returns ErrSlugTaken when an active
	// tenant already holds the slug.
	Create(ctx context.Context, rec *Record) error

	// GetByID returns the record regardless of its active flag, or
	// tenant.ErrTenantNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// GetBySlug returns the record for a slug, preferring the active row
	// when deactivated tenants left namesakes behind.
	GetBySlug(ctx context.Context, slug string) (*Record, error)

	// SetActive flips the active flag. Setting the current value again is
	// a no-op, not an error; an unknown id is tenant.ErrTenantNotFound.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]*Record, error)
}
