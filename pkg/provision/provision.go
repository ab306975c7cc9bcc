package provision

import "context"

// Database describes a freshly provisioned physical database.
type Database struct {
	Name       string // physical database name
	URL        string // connection target handed to the engine opener
	Credential string // access credential; empty for file-backed databases
}

// Provisioner creates physical tenant databases. Implementations must be
// safe for concurrent use; name uniqueness is the caller's responsibility
// (see DatabaseName), though implementations reject collisions with
// ErrNameTaken.
type Provisioner interface {
	CreateDatabase(ctx context.Context, name string) (Database, error)
}
