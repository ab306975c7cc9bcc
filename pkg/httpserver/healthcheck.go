package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stewardhq/steward/pkg/logger"
)

// Check is a named readiness dependency, e.g. the registry database.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

// Liveness reports process liveness. No dependencies are consulted: a
// steward instance with an unreachable registry is still alive, just not
// ready.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// Readiness probes every dependency on each request. The first failure
// takes the instance out of rotation with a 503 naming the dependency, so
// operators see from the probe body whether the registry database or the
// tenant cache is the one misbehaving.
func Readiness(log *slog.Logger, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c.Probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					slog.String("check", c.Name),
					logger.Error(err))
				writeStatus(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"failed": c.Name,
				})
				return
			}
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
