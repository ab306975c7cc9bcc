package tenantdb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/pkg/tenant"
)

var (
	// ErrTenantInactive is the tenant package sentinel re-exported so
	// callers can match on either package.
	ErrTenantInactive = tenant.ErrTenantInactive

	ErrManagerClosed      = errors.New("tenant database manager closed")
	ErrNilTenant          = errors.New("nil tenant")
	ErrInvalidSlug        = errors.New("invalid tenant slug")
	ErrFailedToOpenEngine = errors.New("failed to open tenant database engine")
	ErrInvalidDatabaseURL = errors.New("invalid tenant database url")
	ErrMissingProvisioner = errors.New("no provisioner configured")
	ErrMissingRegistry    = errors.New("no tenant registry configured")
)

// ConnError reports a failure to acquire a connection from an already
// cached engine. The manager evicts that engine before surfacing it, so a
// retry dials fresh.
type ConnError struct {
	TenantID uuid.UUID
	Err      error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("tenant %s: acquire connection: %v", e.TenantID, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// Provisioning stages, in execution order.
const (
	StageCreate   = "create"
	StageMigrate  = "migrate"
	StageRegister = "register"
)

// ProvisioningError pinpoints the stage at which provisioning a tenant
// failed. Partial reports whether a physical database had already been
// created and is now orphaned; operators reclaim those out of band.
type ProvisioningError struct {
	Stage   string // create, migrate, or register
	Target  string // physical database name
	Partial bool
	Err     error
}

func (e *ProvisioningError) Error() string {
	if e.Partial {
		return fmt.Sprintf("provision %s: %s stage: %v (orphaned database left behind)", e.Target, e.Stage, e.Err)
	}
	return fmt.Sprintf("provision %s: %s stage: %v", e.Target, e.Stage, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }
