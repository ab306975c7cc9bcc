package tenantdb

import (
	"database/sql"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session is a request-scoped lease on one tenant database connection.
// Hold it for the duration of a request only: Close returns the connection
// to the tenant's pool, and the middleware that created it releases it when
// the request ends.
type Session struct {
	conn     *sql.Conn
	tenantID uuid.UUID
	closed   atomic.Bool
}

// Conn exposes the dedicated database connection.
func (s *Session) Conn() *sql.Conn { return s.conn }

// TenantID identifies the tenant this session is bound to.
func (s *Session) TenantID() uuid.UUID { return s.tenantID }

// Close releases the connection back to the pool. Idempotent.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}
