package tenantdb

import "time"

type Config struct {
	MaxOpenConns    int32         `env:"TENANTDB_MAX_OPEN_CONNS" envDefault:"4"`       // MaxOpenConns is the per-tenant connection pool ceiling.
	MaxIdleConns    int32         `env:"TENANTDB_MAX_IDLE_CONNS" envDefault:"1"`       // MaxIdleConns is the number of idle connections kept per tenant.
	MaxConnIdleTime time.Duration `env:"TENANTDB_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is how long a connection may sit idle before it is dropped.
	MaxConnLifetime time.Duration `env:"TENANTDB_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum age of any pooled connection.

	OpenTimeout   time.Duration `env:"TENANTDB_OPEN_TIMEOUT" envDefault:"15s"`     // OpenTimeout bounds one engine open, dial retries included.
	RetryAttempts int           `env:"TENANTDB_RETRY_ATTEMPTS" envDefault:"2"`     // RetryAttempts is the number of dial attempts per engine open.
	RetryInterval time.Duration `env:"TENANTDB_RETRY_INTERVAL" envDefault:"500ms"` // RetryInterval is the base wait between dial attempts.
}

// withDefaults fills zero values so a literal Config behaves like the env
// defaults. Per-tenant pools stay small: every active tenant holds one.
func (c Config) withDefaults() Config {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 4
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 1
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = 10 * time.Minute
	}
	if c.MaxConnLifetime <= 0 {
		c.MaxConnLifetime = 30 * time.Minute
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 2
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 500 * time.Millisecond
	}
	return c
}
