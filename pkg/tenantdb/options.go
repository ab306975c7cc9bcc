package tenantdb

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/pkg/provision"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for engine lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithProvisioner sets the physical database provisioner. Required for
// ProvisionTenant; a manager serving only the read path can omit it.
func WithProvisioner(p provision.Provisioner) Option {
	return func(m *Manager) {
		m.provisioner = p
	}
}

// WithMigrator overrides the schema migrator used during provisioning.
// Defaults to the embedded-migrations runner.
func WithMigrator(mig Migrator) Option {
	return func(m *Manager) {
		m.migrator = mig
	}
}

// WithRegistry sets the registry that persists newly provisioned tenants.
// Required for ProvisionTenant.
func WithRegistry(r Registry) Option {
	return func(m *Manager) {
		m.registry = r
	}
}

// WithCreateObserver registers a hook invoked after every engine creation
// with the tenant id. Used by tests to count creations under concurrency.
func WithCreateObserver(fn func(tenantID uuid.UUID)) Option {
	return func(m *Manager) {
		m.createObserver = fn
	}
}
