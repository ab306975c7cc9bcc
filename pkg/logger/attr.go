package logger

import (
	"log/slog"
	"time"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under the key "tenant_id".
// If id is nil, it returns an empty Attr.
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// TenantSlug records the tenant slug under the key "tenant_slug".
func TenantSlug(slug string) slog.Attr {
	return slog.String("tenant_slug", slug)
}

// Database records a physical database name under the key "database".
func Database(name string) slog.Attr {
	return slog.String("database", name)
}

// Stage records a provisioning stage under the key "stage".
func Stage(stage string) slog.Attr {
	return slog.String("stage", stage)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}
