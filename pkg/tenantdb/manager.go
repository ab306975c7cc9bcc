package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/pkg/logger"
	"github.com/stewardhq/steward/pkg/provision"
	"github.com/stewardhq/steward/pkg/tenant"
)

// Registry persists newly provisioned tenants in the control database.
// Implementations encrypt the credential before storing it.
type Registry interface {
	Register(ctx context.Context, t *tenant.Tenant) error
}

// Migrator applies the tenant schema to a freshly created database.
type Migrator interface {
	Run(ctx context.Context, db *sql.DB, dialect string) error
}

// Descriptor describes a tenant to provision.
type Descriptor struct {
	Slug     string
	Name     string
	Plan     string
	Features []string
}

// entry is one slot in the engine cache. The installing goroutine closes
// ready exactly once, after which either engine or err is set. A failed
// install removes the entry from the map before publishing, so the error
// is never cached.
type entry struct {
	ready  chan struct{}
	engine *engine
	err    error
}

// Manager caches one database engine per active tenant, creating each
// lazily on first use. Exactly one engine is ever opened per tenant id no
// matter how many requests race on a cold cache.
type Manager struct {
	cfg Config
	log *slog.Logger

	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
	closed  bool

	provisioner    provision.Provisioner
	migrator       Migrator
	registry       Registry
	createObserver func(tenantID uuid.UUID)
}

func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:     cfg.withDefaults(),
		log:     slog.Default(),
		entries: make(map[uuid.UUID]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.migrator == nil {
		m.migrator = provision.NewMigrator(m.log)
	}
	return m
}

// GetSession leases a dedicated connection from the tenant's engine,
// opening the engine first if this is the tenant's first use. Callers must
// Close the session when the request ends.
func (m *Manager) GetSession(ctx context.Context, t *tenant.Tenant) (*Session, error) {
	if t == nil {
		return nil, ErrNilTenant
	}
	if !t.Active {
		return nil, ErrTenantInactive
	}

	e, err := m.engineFor(ctx, t)
	if err != nil {
		return nil, err
	}

	conn, err := e.engine.db.Conn(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The cached engine cannot hand out connections anymore. Evict
		// it so the next call dials fresh instead of failing forever.
		m.evictEntry(t.ID, e)
		return nil, &ConnError{TenantID: t.ID, Err: err}
	}

	return &Session{conn: conn, tenantID: t.ID}, nil
}

// engineFor returns the ready cache entry for the tenant, installing and
// opening one if absent. Waiters abandon on their own context; the open
// itself is detached and finishes for whoever comes next.
func (m *Manager) engineFor(ctx context.Context, t *tenant.Tenant) (*entry, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrManagerClosed
	}
	e, ok := m.entries[t.ID]
	m.mu.RUnlock()

	if ok {
		return m.await(ctx, e)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	if e, ok := m.entries[t.ID]; ok {
		m.mu.Unlock()
		return m.await(ctx, e)
	}
	e = &entry{ready: make(chan struct{})}
	m.entries[t.ID] = e
	m.mu.Unlock()

	go m.open(context.WithoutCancel(ctx), t, e)

	return m.await(ctx, e)
}

// open dials the tenant engine and publishes the result on e.ready. It
// runs on a detached context: other requests may be waiting on the same
// entry, so one caller's cancellation must not abort the shared dial.
func (m *Manager) open(ctx context.Context, t *tenant.Tenant, e *entry) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.OpenTimeout)
	defer cancel()

	started := time.Now()
	eng, err := dial(ctx, t, m.cfg)
	if err != nil {
		// Remove before publishing: waiters get the error, the next
		// GetSession starts over instead of hitting a cached failure.
		m.mu.Lock()
		if m.entries[t.ID] == e {
			delete(m.entries, t.ID)
		}
		m.mu.Unlock()

		e.err = err
		close(e.ready)

		m.log.WarnContext(ctx, "tenant engine dial failed",
			logger.TenantID(t.ID),
			logger.Error(err),
			logger.Duration(time.Since(started)))
		return
	}

	e.engine = eng
	close(e.ready)

	if m.createObserver != nil {
		m.createObserver(t.ID)
	}
	m.log.DebugContext(ctx, "tenant engine opened",
		logger.TenantID(t.ID),
		logger.Duration(time.Since(started)))
}

func (m *Manager) await(ctx context.Context, e *entry) (*entry, error) {
	select {
	case <-e.ready:
		if e.err != nil {
			return nil, e.err
		}
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// evictEntry removes e if it is still the live entry for id and closes its
// engine. The pointer comparison guards against tearing down a replacement
// installed after e was obtained.
func (m *Manager) evictEntry(id uuid.UUID, e *entry) {
	m.mu.Lock()
	if m.entries[id] != e {
		m.mu.Unlock()
		return
	}
	delete(m.entries, id)
	m.mu.Unlock()

	if e.engine != nil {
		if err := e.engine.close(); err != nil {
			m.log.Warn("tenant engine close failed",
				logger.TenantID(id),
				logger.Error(err))
		}
	}
}

// EvictTenant removes the tenant's engine from the cache and closes it.
// Waits out an in-flight open so the engine is not leaked mid-dial. A
// tenant with no cached engine is a no-op.
func (m *Manager) EvictTenant(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	e, ok := m.entries[id]
	if ok {
		delete(m.entries, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		// Finish the teardown once the dial completes, detached from
		// this caller.
		go func() {
			<-e.ready
			if e.engine != nil {
				_ = e.engine.close()
			}
		}()
		return ctx.Err()
	}

	if e.err != nil || e.engine == nil {
		return nil
	}
	if err := e.engine.close(); err != nil {
		return err
	}

	m.log.InfoContext(ctx, "tenant engine evicted", logger.TenantID(id))
	return nil
}

// ProvisionTenant creates the tenant's physical database, applies the
// domain schema, and registers the tenant. Slow by contract: it is invoked
// from signup flows, never the request path.
func (m *Manager) ProvisionTenant(ctx context.Context, d Descriptor) (*tenant.Tenant, error) {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrManagerClosed
	}
	if m.provisioner == nil {
		return nil, ErrMissingProvisioner
	}
	if m.registry == nil {
		return nil, ErrMissingRegistry
	}
	if !tenant.ValidIdentifier(d.Slug) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, d.Slug)
	}

	dbName := provision.DatabaseName(d.Slug)

	db, err := m.provisioner.CreateDatabase(ctx, dbName)
	if err != nil {
		m.log.ErrorContext(ctx, "tenant provisioning failed",
			logger.TenantSlug(d.Slug),
			logger.Database(dbName),
			logger.Stage(StageCreate),
			logger.Error(err))
		return nil, &ProvisioningError{Stage: StageCreate, Target: dbName, Err: err}
	}

	t := &tenant.Tenant{
		ID:          uuid.New(),
		Slug:        d.Slug,
		Name:        d.Name,
		DatabaseURL: db.URL,
		Credential:  db.Credential,
		Plan:        d.Plan,
		Features:    d.Features,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := m.migrate(ctx, t); err != nil {
		m.log.ErrorContext(ctx, "tenant provisioning failed, database orphaned",
			logger.TenantSlug(d.Slug),
			logger.Database(dbName),
			logger.Stage(StageMigrate),
			logger.Error(err))
		return nil, &ProvisioningError{Stage: StageMigrate, Target: dbName, Partial: true, Err: err}
	}

	if err := m.registry.Register(ctx, t); err != nil {
		m.log.ErrorContext(ctx, "tenant provisioning failed, database orphaned",
			logger.TenantSlug(d.Slug),
			logger.Database(dbName),
			logger.Stage(StageRegister),
			logger.Error(err))
		return nil, &ProvisioningError{Stage: StageRegister, Target: dbName, Partial: true, Err: err}
	}

	m.log.InfoContext(ctx, "tenant provisioned",
		logger.TenantID(t.ID),
		logger.TenantSlug(t.Slug),
		logger.Database(dbName))

	return t, nil
}

// migrate opens a short-lived engine on the new database and applies the
// domain schema, retrying once: a freshly created database can refuse its
// first connection. Goose version tracking makes the replay safe.
func (m *Manager) migrate(ctx context.Context, t *tenant.Tenant) error {
	run := func() error {
		eng, err := dial(ctx, t, m.cfg)
		if err != nil {
			return err
		}
		defer func() { _ = eng.close() }()
		return m.migrator.Run(ctx, eng.db, provision.DialectFor(t.DatabaseURL))
	}

	err := run()
	if err == nil || ctx.Err() != nil {
		return err
	}

	m.log.WarnContext(ctx, "tenant schema migration failed, retrying",
		logger.TenantID(t.ID),
		logger.Stage(StageMigrate),
		logger.RetryCount(1),
		logger.Error(err))
	return run()
}

// HealthCheck reports whether the tenant's database answers a round-trip.
// Uses the cached engine when present, otherwise dials a one-shot engine
// that is closed straight after; the cache is never populated by a health
// check. Failures are logged at warn and reported as false, never as an
// error: degraded tenants keep serving.
func (m *Manager) HealthCheck(ctx context.Context, t *tenant.Tenant) bool {
	if t == nil {
		return false
	}

	m.mu.RLock()
	closed := m.closed
	e, ok := m.entries[t.ID]
	m.mu.RUnlock()
	if closed {
		return false
	}

	if ok {
		ready, err := m.await(ctx, e)
		if err != nil {
			m.log.WarnContext(ctx, "tenant database health check failed",
				logger.TenantID(t.ID),
				logger.Error(err))
			return false
		}
		if err := ready.engine.ping(ctx); err != nil {
			m.log.WarnContext(ctx, "tenant database health check failed",
				logger.TenantID(t.ID),
				logger.Error(err))
			return false
		}
		return true
	}

	eng, err := dial(ctx, t, m.cfg)
	if err != nil {
		m.log.WarnContext(ctx, "tenant database unreachable",
			logger.TenantID(t.ID),
			logger.Error(err))
		return false
	}
	defer func() { _ = eng.close() }()

	if err := eng.ping(ctx); err != nil {
		m.log.WarnContext(ctx, "tenant database health check failed",
			logger.TenantID(t.ID),
			logger.Error(err))
		return false
	}
	return true
}

// Close evicts every cached engine and refuses further use. Engines close
// in parallel; ctx bounds the wait, with stragglers finishing in the
// background.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	m.closed = true
	snapshot := m.entries
	m.entries = nil
	m.mu.Unlock()

	var (
		errMu sync.Mutex
		errs  []error
		wg    sync.WaitGroup
	)
	for _, e := range snapshot {
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()
			<-e.ready
			if e.err != nil || e.engine == nil {
				return
			}
			if err := e.engine.close(); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(e)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		errMu.Lock()
		defer errMu.Unlock()
		return errors.Join(errs...)
	case <-ctx.Done():
		return ctx.Err()
	}
}
