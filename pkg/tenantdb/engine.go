package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/stewardhq/steward/pkg/provision"
	"github.com/stewardhq/steward/pkg/tenant"
)

// engine owns the pooled connections for one tenant database. The *sql.DB
// is the primary handle for both backends so repositories stay
// driver-agnostic; Postgres engines keep the underlying pgxpool alongside
// for shutdown.
type engine struct {
	db   *sql.DB
	pool *pgxpool.Pool // nil for file-backed engines
}

// dial opens and verifies an engine for the tenant's connection target.
// Transient failures are retried with linear backoff: freshly provisioned
// databases can lag behind DNS, so a failed first attempt is normal.
func dial(ctx context.Context, t *tenant.Tenant, cfg Config) (*engine, error) {
	var lastErr error
	for i := range cfg.RetryAttempts {
		e, err := dialTarget(ctx, t, cfg)
		if err == nil {
			return e, nil
		}
		lastErr = err

		if i == cfg.RetryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ctx.Err(), lastErr)
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrFailedToOpenEngine, lastErr)
}

func dialTarget(ctx context.Context, t *tenant.Tenant, cfg Config) (*engine, error) {
	if t.IsFileBacked() {
		return dialSQLite(ctx, t.DatabaseURL)
	}
	return dialPostgres(ctx, t, cfg)
}

func dialPostgres(ctx context.Context, t *tenant.Tenant, cfg Config) (*engine, error) {
	poolCfg, err := pgxpool.ParseConfig(t.DatabaseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidDatabaseURL, err)
	}
	// The registry stores credentials separately from the URL; inject at
	// dial time so connection strings never carry secrets.
	if t.Credential != "" {
		poolCfg.ConnConfig.Password = t.Credential
	}
	poolCfg.MaxConns = cfg.MaxOpenConns
	poolCfg.MinConns = cfg.MaxIdleConns
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	// Verify with a real round-trip to catch auth and permission issues
	// before the engine is published.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &engine{db: stdlib.OpenDBFromPool(pool), pool: pool}, nil
}

func dialSQLite(ctx context.Context, target string) (*engine, error) {
	db, err := sql.Open("sqlite", sqliteDSN(target))
	if err != nil {
		return nil, errors.Join(ErrInvalidDatabaseURL, err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn
	// between pooled writes.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &engine{db: db}, nil
}

// sqliteDSN normalizes a stored connection target. Bare file paths get the
// standard pragmas; targets that already carry a query string are trusted
// as complete DSNs.
func sqliteDSN(target string) string {
	if strings.Contains(target, "?") {
		return target
	}
	return provision.FileDSN(strings.TrimPrefix(target, "file:"))
}

func (e *engine) ping(ctx context.Context) error {
	var one int
	return e.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// close shuts the sql.DB first, then the pgx pool underneath it.
func (e *engine) close() error {
	err := e.db.Close()
	if e.pool != nil {
		e.pool.Close()
	}
	return err
}
