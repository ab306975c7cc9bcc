package tenant

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// The Tenant JSON tags hide connection fields from API responses, so the
// cache envelope must carry them explicitly. This guards against the
// envelope silently losing a field the engine opener needs.
func TestCachedTenantCodec(t *testing.T) {
	t.Parallel()

	original := &tenantpkg.Tenant{
		ID:          uuid.New(),
		Slug:        "acme",
		Name:        "Acme",
		DatabaseURL: "postgres://db.internal/acme",
		Credential:  "s3cret",
		Plan:        "family",
		Features:    []string{"budgets"},
		Active:      true,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	raw, err := encodeCachedTenant(original)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "database_url")

	got, err := decodeCachedTenant(raw)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestDecodeCachedTenantRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := decodeCachedTenant([]byte("not json"))
	assert.Error(t, err)

	_, err = decodeCachedTenant([]byte(`{"id":"not-a-uuid"}`))
	assert.Error(t, err)
}
