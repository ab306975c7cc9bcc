package provision

import "time"

type Config struct {
	ControlPlaneURL   string        `env:"PROVISION_CONTROL_PLANE_URL"`                // ControlPlaneURL is the base URL of the managed-database service.
	ControlPlaneToken string        `env:"PROVISION_CONTROL_PLANE_TOKEN"`              // ControlPlaneToken is the bearer token sent with every control plane request.
	RequestTimeout    time.Duration `env:"PROVISION_REQUEST_TIMEOUT" envDefault:"30s"` // RequestTimeout is the per-request timeout for control plane calls.

	RetryCount       int           `env:"PROVISION_RETRY_COUNT" envDefault:"3"`     // RetryCount is the number of retries for transient control plane failures.
	RetryWaitTime    time.Duration `env:"PROVISION_RETRY_WAIT" envDefault:"1s"`     // RetryWaitTime is the initial wait between retries.
	RetryMaxWaitTime time.Duration `env:"PROVISION_RETRY_MAX_WAIT" envDefault:"5s"` // RetryMaxWaitTime is the upper bound for retry backoff.

	FileDir           string `env:"PROVISION_FILE_DIR" envDefault:"./data/tenants"`  // FileDir is the directory for file-backed tenant databases.
	AllowFileFallback bool   `env:"PROVISION_ALLOW_FILE_FALLBACK" envDefault:"true"` // AllowFileFallback permits file-backed provisioning when the control plane is down. Keep false in production.
}
