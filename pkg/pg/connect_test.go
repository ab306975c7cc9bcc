package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stewardhq/steward/pkg/pg"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("rejects malformed connection string", func(t *testing.T) {
		t.Parallel()

		cfg := pg.Config{
			ConnectionString: "://not-a-url",
			RetryAttempts:    1,
			RetryInterval:    10 * time.Millisecond,
		}
		_, err := pg.Connect(context.Background(), cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
	})

	t.Run("no trailing sleep after the final attempt", func(t *testing.T) {
		t.Parallel()

		// Port 1 refuses immediately, so elapsed time is dominated by the
		// backoff sleeps: one between the two attempts, none after the last.
		cfg := pg.Config{
			ConnectionString: "postgres://steward@127.0.0.1:1/registry",
			RetryAttempts:    2,
			RetryInterval:    500 * time.Millisecond,
		}

		start := time.Now()
		_, err := pg.Connect(context.Background(), cfg)
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.ErrorIs(t, err, pg.ErrFailedToOpenDBConnection)
		assert.Less(t, elapsed, 1200*time.Millisecond)
	})

	t.Run("honours context cancellation between attempts", func(t *testing.T) {
		t.Parallel()

		cfg := pg.Config{
			ConnectionString: "postgres://steward@127.0.0.1:1/registry",
			RetryAttempts:    5,
			RetryInterval:    10 * time.Second,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := pg.Connect(ctx, cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, pg.ErrFailedToOpenDBConnection)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}
