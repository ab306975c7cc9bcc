package tenants_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/modules/tenants"
	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
	"github.com/stewardhq/steward/pkg/tenantdb"
	svctenant "github.com/stewardhq/steward/svc/tenant"
)

type fakeService struct {
	provisionFn  func(ctx context.Context, in svctenant.NewTenant) (*tenantpkg.Tenant, error)
	loadFn       func(ctx context.Context, identifier string) (*tenantpkg.Tenant, error)
	deactivateFn func(ctx context.Context, id uuid.UUID) error
	healthFn     func(ctx context.Context, identifier string) bool
}

func (f *fakeService) Provision(ctx context.Context, in svctenant.NewTenant) (*tenantpkg.Tenant, error) {
	return f.provisionFn(ctx, in)
}

func (f *fakeService) Load(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
	return f.loadFn(ctx, identifier)
}

func (f *fakeService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return f.deactivateFn(ctx, id)
}

func (f *fakeService) HealthCheck(ctx context.Context, identifier string) bool {
	return f.healthFn(ctx, identifier)
}

func sampleTenant() *tenantpkg.Tenant {
	return &tenantpkg.Tenant{
		ID:          uuid.New(),
		Slug:        "acme",
		Name:        "Acme Household",
		DatabaseURL: "postgres://db.internal/acme",
		Credential:  "s3cret",
		Plan:        "family",
		Features:    []string{"budgets"},
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestProvisionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates tenant", func(t *testing.T) {
		t.Parallel()

		created := sampleTenant()
		svc := &fakeService{
			provisionFn: func(ctx context.Context, in svctenant.NewTenant) (*tenantpkg.Tenant, error) {
				assert.Equal(t, "acme", in.Slug)
				assert.Equal(t, "family", in.Plan)
				return created, nil
			},
		}

		body := `{"slug":"acme","name":"Acme Household","plan":"family","features":["budgets"]}`
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		tenants.Router(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, created.ID.String(), resp["id"])
		// Connection details must never appear in responses.
		assert.NotContains(t, rec.Body.String(), "s3cret")
		assert.NotContains(t, rec.Body.String(), "db.internal")
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{")))
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps slug conflict to 409", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			provisionFn: func(ctx context.Context, in svctenant.NewTenant) (*tenantpkg.Tenant, error) {
				return nil, svctenant.ErrSlugTaken
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slug":"acme"}`))
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "slug_taken")
	})

	t.Run("maps provisioning failure to 502 with stage", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			provisionFn: func(ctx context.Context, in svctenant.NewTenant) (*tenantpkg.Tenant, error) {
				return nil, &tenantdb.ProvisioningError{
					Stage:   tenantdb.StageMigrate,
					Target:  "acme_x1y2z3",
					Partial: true,
					Err:     errors.New("schema apply failed"),
				}
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slug":"acme"}`))
		tenants.Router(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "migrate", resp["stage"])
		assert.Equal(t, true, resp["partial"])
	})
}

func TestGetEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns registry view", func(t *testing.T) {
		t.Parallel()

		tn := sampleTenant()
		svc := &fakeService{
			loadFn: func(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
				assert.Equal(t, tn.ID.String(), identifier)
				return tn, nil
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/"+tn.ID.String(), nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), tn.Slug)
		assert.NotContains(t, rec.Body.String(), "s3cret")
	})

	t.Run("unknown tenant is 404", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			loadFn: func(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
				return nil, tenantpkg.ErrTenantNotFound
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ghost", nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "tenant_not_found")
	})

	t.Run("invalid identifier is 422", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			loadFn: func(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
				return nil, tenantpkg.ErrInvalidIdentifier
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/bad", nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestDeactivateEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("deactivates", func(t *testing.T) {
		t.Parallel()

		id := uuid.New()
		var got uuid.UUID
		svc := &fakeService{
			deactivateFn: func(ctx context.Context, deactivated uuid.UUID) error {
				got = deactivated
				return nil
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/"+id.String(), nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id, got)
	})

	t.Run("requires a UUID", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/acme", nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown tenant is 404", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			deactivateFn: func(ctx context.Context, id uuid.UUID) error {
				return tenantpkg.ErrTenantNotFound
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/"+uuid.NewString(), nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("reports health", func(t *testing.T) {
		t.Parallel()

		tn := sampleTenant()
		svc := &fakeService{
			loadFn: func(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
				return tn, nil
			},
			healthFn: func(ctx context.Context, identifier string) bool {
				return true
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/acme/health", nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"healthy":true}`, rec.Body.String())
	})

	t.Run("unknown tenant is 404, not unhealthy", func(t *testing.T) {
		t.Parallel()

		svc := &fakeService{
			loadFn: func(ctx context.Context, identifier string) (*tenantpkg.Tenant, error) {
				return nil, tenantpkg.ErrTenantNotFound
			},
		}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ghost/health", nil)
		tenants.Router(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
