// Package httpserver is the serving shell for the steward admin API. The
// tenancy core holds a per-tenant connection pool for every active tenant,
// so shutdown order matters more than raw features: the listener stops
// accepting, in-flight requests finish, and only then do the drain hooks
// close the connection manager and the metadata cache.
//
// Construction goes through New with a Config (HTTP_* env) and functional
// options; WithDrainHook wires teardown steps that need the listener gone
// first. Run blocks until the context is cancelled or an interrupt/TERM
// signal arrives. Serve failures wrap ErrServe and shutdown failures wrap
// ErrShutdown, so callers can tell them apart with errors.Is.
//
// Liveness and Readiness build the probe handlers. Readiness takes named
// Checks; wiring the registry pool's ping keeps an instance out of rotation
// until the global database answers, with the failing dependency named in
// the probe body.
package httpserver
