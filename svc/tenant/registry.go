package tenant

import (
	"context"
	"errors"

	"github.com/stewardhq/steward/pkg/secrets"
	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// Registry persists freshly provisioned tenants: it encrypts the database
// credential under the tenant-scoped key and writes the record through the
// Store. It is the tenantdb.Registry implementation handed to the
// connection manager; the cleartext credential never reaches the store.
type Registry struct {
	store   Store
	keyring *secrets.Keyring
}

func NewRegistry(store Store, keyring *secrets.Keyring) *Registry {
	return &Registry{store: store, keyring: keyring}
}

func (r *Registry) Register(ctx context.Context, t *tenantpkg.Tenant) error {
	encrypted := ""
	if t.Credential != "" {
		var err error
		encrypted, err = r.keyring.EncryptCredential(t.ID.String(), t.Credential)
		if err != nil {
			return errors.Join(errors.New("encrypt tenant credential"), err)
		}
	}

	return r.store.Create(ctx, &Record{
		ID:                  t.ID,
		Slug:                t.Slug,
		Name:                t.Name,
		DatabaseURL:         t.DatabaseURL,
		EncryptedCredential: encrypted,
		Plan:                t.Plan,
		Features:            t.Features,
		Active:              t.Active,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.CreatedAt,
	})
}
