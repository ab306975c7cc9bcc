package provision_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/pkg/provision"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func controlPlaneConfig(url string) provision.Config {
	return provision.Config{
		ControlPlaneURL:   url,
		ControlPlaneToken: "test-token",
		RequestTimeout:    5 * time.Second,
	}
}

func TestNewControlPlane(t *testing.T) {
	t.Parallel()

	t.Run("requires base url", func(t *testing.T) {
		t.Parallel()

		_, err := provision.NewControlPlane(provision.Config{}, testLogger())
		require.ErrorIs(t, err, provision.ErrMissingControlPlaneURL)
	})
}

func TestControlPlaneCreateDatabase(t *testing.T) {
	t.Parallel()

	t.Run("provisions database", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/databases", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			var body struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "acme_x7g3k2", body.Name)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"url":"postgres://acme_x7g3k2.db.steward.app:5432/acme_x7g3k2","token":"s3cr3t"}`))
		}))
		defer srv.Close()

		cp, err := provision.NewControlPlane(controlPlaneConfig(srv.URL), testLogger())
		require.NoError(t, err)

		db, err := cp.CreateDatabase(context.Background(), "acme_x7g3k2")
		require.NoError(t, err)
		assert.Equal(t, "acme_x7g3k2", db.Name)
		assert.Equal(t, "postgres://acme_x7g3k2.db.steward.app:5432/acme_x7g3k2", db.URL)
		assert.Equal(t, "s3cr3t", db.Credential)
	})

	t.Run("name conflict", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer srv.Close()

		cp, err := provision.NewControlPlane(controlPlaneConfig(srv.URL), testLogger())
		require.NoError(t, err)

		_, err = cp.CreateDatabase(context.Background(), "taken")
		require.ErrorIs(t, err, provision.ErrNameTaken)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		cp, err := provision.NewControlPlane(controlPlaneConfig(srv.URL), testLogger())
		require.NoError(t, err)

		_, err = cp.CreateDatabase(context.Background(), "acme")
		require.ErrorIs(t, err, provision.ErrControlPlaneUnavailable)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"url":"postgres://db.local:5432/acme","token":"tok"}`))
		}))
		defer srv.Close()

		cfg := controlPlaneConfig(srv.URL)
		cfg.RetryCount = 2
		cfg.RetryWaitTime = 10 * time.Millisecond
		cfg.RetryMaxWaitTime = 20 * time.Millisecond

		cp, err := provision.NewControlPlane(cfg, testLogger())
		require.NoError(t, err)

		db, err := cp.CreateDatabase(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "postgres://db.local:5432/acme", db.URL)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		cp, err := provision.NewControlPlane(controlPlaneConfig(url), testLogger())
		require.NoError(t, err)

		_, err = cp.CreateDatabase(context.Background(), "acme")
		require.ErrorIs(t, err, provision.ErrControlPlaneUnavailable)
	})

	t.Run("other client errors pass through untyped", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		cp, err := provision.NewControlPlane(controlPlaneConfig(srv.URL), testLogger())
		require.NoError(t, err)

		_, err = cp.CreateDatabase(context.Background(), "bad name")
		require.Error(t, err)
		assert.NotErrorIs(t, err, provision.ErrNameTaken)
		assert.NotErrorIs(t, err, provision.ErrControlPlaneUnavailable)
		assert.Contains(t, err.Error(), "status 400")
	})

	t.Run("missing url in response", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"token":"tok"}`))
		}))
		defer srv.Close()

		cp, err := provision.NewControlPlane(controlPlaneConfig(srv.URL), testLogger())
		require.NoError(t, err)

		_, err = cp.CreateDatabase(context.Background(), "acme")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no connection url")
	})
}
