package provision

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stewardhq/steward/pkg/logger"
)

// Fallback tries a primary provisioner and, when it is unreachable, falls
// back to a secondary one. Intended for development setups where the control
// plane may be absent: the downgrade is gated by configuration and logged
// loudly, never silent.
type Fallback struct {
	primary   Provisioner
	secondary Provisioner
	allowed   bool
	log       *slog.Logger
}

// NewFallback wraps primary with secondary. The secondary is only consulted
// when allowed is true (Config.AllowFileFallback) and the primary failed
// with ErrControlPlaneUnavailable; any other failure passes through.
func NewFallback(primary, secondary Provisioner, allowed bool, log *slog.Logger) *Fallback {
	if log == nil {
		log = slog.Default()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		allowed:   allowed,
		log:       log,
	}
}

func (p *Fallback) CreateDatabase(ctx context.Context, name string) (Database, error) {
	db, err := p.primary.CreateDatabase(ctx, name)
	if err == nil {
		return db, nil
	}
	if !p.allowed || !errors.Is(err, ErrControlPlaneUnavailable) {
		return Database{}, err
	}

	p.log.WarnContext(ctx, "control plane unavailable, provisioning file-backed database without managed durability or isolation",
		logger.Database(name),
		logger.Error(err))

	db, ferr := p.secondary.CreateDatabase(ctx, name)
	if ferr != nil {
		return Database{}, errors.Join(err, ferr)
	}
	return db, nil
}
