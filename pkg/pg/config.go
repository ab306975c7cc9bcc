package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"REGISTRY_DATABASE_URL,required"`               // ConnectionString is the registry database URL.
	MaxOpenConns      int32         `env:"REGISTRY_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns is the pool ceiling for the registry database.
	MaxIdleConns      int32         `env:"REGISTRY_MAX_IDLE_CONNS" envDefault:"5"`       // MaxIdleConns is the number of idle connections kept open.
	HealthCheckPeriod time.Duration `env:"REGISTRY_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the pool's internal liveness probe cadence.
	MaxConnIdleTime   time.Duration `env:"REGISTRY_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is how long a connection may sit idle before it is dropped.
	MaxConnLifetime   time.Duration `env:"REGISTRY_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum age of any pooled connection.

	RetryAttempts int           `env:"REGISTRY_RETRY_ATTEMPTS" envDefault:"3"`  // RetryAttempts is the number of connection attempts at startup.
	RetryInterval time.Duration `env:"REGISTRY_RETRY_INTERVAL" envDefault:"5s"` // RetryInterval is the base wait between connection attempts.
}
