package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Server is the serving shell for the admin API: one http.Server with
// graceful shutdown and ordered drain hooks for the resources behind it.
type Server struct {
	cfg        Config
	log        *slog.Logger
	listener   net.Listener
	startHooks []func(*slog.Logger)
	drainHooks []func(context.Context) error

	mu      sync.Mutex
	started bool
	srv     *http.Server
	stop    sync.Once
}

// New returns a Server for the given config. Zero config values fall back
// to the env defaults.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg: cfg.withDefaults(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run serves handler and blocks until ctx is cancelled, an interrupt or
// TERM signal arrives, or the listener fails. On the way out it shuts the
// listener down gracefully and runs the drain hooks; serve failures are
// wrapped with ErrServe, shutdown failures with ErrShutdown. A Server runs
// at most once.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		return errors.Join(ErrServe, errors.New("nil handler"))
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Join(ErrServe, errors.New("server already ran"))
	}
	s.started = true
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.srv = srv
	s.mu.Unlock()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if s.listener != nil {
			errCh <- srv.Serve(s.listener)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	for _, hook := range s.startHooks {
		hook(s.log)
	}

	var serveErr, stopErr error
	select {
	case <-ctx.Done():
		stopErr = s.shutdown()
		serveErr = <-errCh
	case serveErr = <-errCh:
		// The listener failed on its own. Drain anyway so the resources
		// behind the server close.
		stopErr = s.shutdown()
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Join(ErrServe, serveErr, stopErr)
	}
	return stopErr
}

// shutdown stops accepting connections, waits out in-flight requests, then
// runs the drain hooks in registration order. All steps share one deadline.
// Safe for repeated calls.
func (s *Server) shutdown() error {
	var err error
	s.stop.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if e := s.srv.Shutdown(ctx); e != nil {
			errs = append(errs, e)
		}
		for _, drain := range s.drainHooks {
			if e := drain(ctx); e != nil {
				errs = append(errs, e)
			}
		}
		if len(errs) > 0 {
			err = errors.Join(append([]error{ErrShutdown}, errs...)...)
		}
		s.log.Info("http server stopped")
	})
	return err
}
