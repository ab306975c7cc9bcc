package httpserver

import "errors"

var (
	// ErrServe indicates the listener failed to start or serve.
	ErrServe = errors.New("http server failed to serve")
	// ErrShutdown indicates graceful shutdown did not complete cleanly:
	// in-flight requests, a drain hook, or both were cut off.
	ErrShutdown = errors.New("http server shutdown incomplete")
)
