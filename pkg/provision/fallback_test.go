package provision_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/pkg/provision"
)

type provisionerFunc func(ctx context.Context, name string) (provision.Database, error)

func (f provisionerFunc) CreateDatabase(ctx context.Context, name string) (provision.Database, error) {
	return f(ctx, name)
}

func TestFallbackCreateDatabase(t *testing.T) {
	t.Parallel()

	primaryDB := provision.Database{Name: "acme", URL: "postgres://db.local:5432/acme", Credential: "tok"}
	fileDB := provision.Database{Name: "acme", URL: "file:/tmp/acme.db"}

	ok := func(db provision.Database) provisionerFunc {
		return func(ctx context.Context, name string) (provision.Database, error) {
			return db, nil
		}
	}
	fail := func(err error) provisionerFunc {
		return func(ctx context.Context, name string) (provision.Database, error) {
			return provision.Database{}, err
		}
	}

	t.Run("primary result wins", func(t *testing.T) {
		t.Parallel()

		p := provision.NewFallback(ok(primaryDB), ok(fileDB), true, testLogger())

		db, err := p.CreateDatabase(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, primaryDB, db)
	})

	t.Run("falls back when control plane is down", func(t *testing.T) {
		t.Parallel()

		p := provision.NewFallback(fail(provision.ErrControlPlaneUnavailable), ok(fileDB), true, testLogger())

		db, err := p.CreateDatabase(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, fileDB, db)
	})

	t.Run("disabled fallback passes the error through", func(t *testing.T) {
		t.Parallel()

		p := provision.NewFallback(fail(provision.ErrControlPlaneUnavailable), ok(fileDB), false, testLogger())

		_, err := p.CreateDatabase(context.Background(), "acme")
		require.ErrorIs(t, err, provision.ErrControlPlaneUnavailable)
	})

	t.Run("name conflicts never fall back", func(t *testing.T) {
		t.Parallel()

		p := provision.NewFallback(fail(provision.ErrNameTaken), ok(fileDB), true, testLogger())

		_, err := p.CreateDatabase(context.Background(), "acme")
		require.ErrorIs(t, err, provision.ErrNameTaken)
	})

	t.Run("both failing joins the errors", func(t *testing.T) {
		t.Parallel()

		secondary := errors.New("disk full")
		p := provision.NewFallback(fail(provision.ErrControlPlaneUnavailable), fail(secondary), true, testLogger())

		_, err := p.CreateDatabase(context.Background(), "acme")
		require.ErrorIs(t, err, provision.ErrControlPlaneUnavailable)
		require.ErrorIs(t, err, secondary)
	})
}
