package httpserver

import (
	"context"
	"log/slog"
	"net"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for server lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithListener serves on the provided listener instead of binding the
// configured address. Used for socket activation and by tests that need to
// know the port before the server starts.
func WithListener(l net.Listener) Option {
	return func(s *Server) {
		s.listener = l
	}
}

// WithStartHook registers a callback that runs once the server is accepting
// connections.
func WithStartHook(h func(*slog.Logger)) Option {
	return func(s *Server) {
		if h != nil {
			s.startHooks = append(s.startHooks, h)
		}
	}
}

// WithDrainHook registers a teardown step that runs after the listener has
// stopped accepting requests, within what remains of the shutdown deadline.
// Hooks run in registration order; the tenant connection manager goes here
// so per-tenant pools close only once no request can reach them.
func WithDrainHook(h func(context.Context) error) Option {
	return func(s *Server) {
		if h != nil {
			s.drainHooks = append(s.drainHooks, h)
		}
	}
}
