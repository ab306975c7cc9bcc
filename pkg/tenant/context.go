package tenant

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// sessionKey keys the per-request database session.
type sessionKey struct{}

// Session is a tenant-scoped database session as seen by the request path.
// The concrete implementation lives in the connection manager; handlers only
// need the connection and the release call.
type Session interface {
	Conn() *sql.Conn
	TenantID() uuid.UUID
	Close() error
}

// SessionSource hands out sessions for resolved tenants. The middleware
// accepts it as a function so the connection manager can be wired in with a
// one-line closure without an import cycle.
type SessionSource func(ctx context.Context, t *Tenant) (Session, error)

// WithTenant adds a tenant to the context.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tenant from the context.
// Returns nil, false if no tenant is found.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok
}

// IDFromContext retrieves just the tenant ID from the context.
// Returns zero UUID and false if no tenant is found.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext retrieves the tenant from the context.
// Panics if no tenant is found. Use this only in handlers that cannot run
// without one.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok || t == nil {
		panic("tenant: no tenant in context")
	}
	return t
}

// WithSession adds a database session to the context.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext retrieves the request's database session.
// Returns nil, false if none was attached.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// LoggerExtractor returns a logger context extractor that records the tenant
// id on every log line emitted within a resolved request.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
