package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
	"github.com/stewardhq/steward/svc/tenant"
)

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("encrypts credential at rest", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemStore()
		keyring := testKeyring(t)
		registry := tenant.NewRegistry(store, keyring)

		tn := &tenantpkg.Tenant{
			ID:          uuid.New(),
			Slug:        "acme",
			Name:        "Acme",
			DatabaseURL: "postgres://db.internal/acme",
			Credential:  "s3cret",
			Plan:        "standard",
			Active:      true,
			CreatedAt:   time.Now().UTC(),
		}
		require.NoError(t, registry.Register(context.Background(), tn))

		rec, err := store.GetByID(context.Background(), tn.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret", rec.EncryptedCredential)

		plaintext, err := keyring.DecryptCredential(tn.ID.String(), rec.EncryptedCredential)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", plaintext)
	})

	t.Run("file-backed tenants have no credential", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemStore()
		registry := tenant.NewRegistry(store, testKeyring(t))

		tn := &tenantpkg.Tenant{
			ID:          uuid.New(),
			Slug:        "dev",
			DatabaseURL: "file:/tmp/dev.db",
			Active:      true,
			CreatedAt:   time.Now().UTC(),
		}
		require.NoError(t, registry.Register(context.Background(), tn))

		rec, err := store.GetByID(context.Background(), tn.ID)
		require.NoError(t, err)
		assert.Empty(t, rec.EncryptedCredential)
	})

	t.Run("propagates slug conflicts", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemStore()
		registry := tenant.NewRegistry(store, testKeyring(t))

		first := &tenantpkg.Tenant{ID: uuid.New(), Slug: "acme", Active: true, CreatedAt: time.Now().UTC()}
		require.NoError(t, registry.Register(context.Background(), first))

		second := &tenantpkg.Tenant{ID: uuid.New(), Slug: "acme", Active: true, CreatedAt: time.Now().UTC()}
		assert.ErrorIs(t, registry.Register(context.Background(), second), tenant.ErrSlugTaken)
	})
}
