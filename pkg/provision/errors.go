package provision

import "errors"

var (
	ErrControlPlaneUnavailable = errors.New("database control plane unavailable")
	ErrNameTaken               = errors.New("database name already taken")
	ErrMissingControlPlaneURL  = errors.New("control plane base url not configured")
	ErrFailedToCreateDatabase  = errors.New("failed to create tenant database")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)
