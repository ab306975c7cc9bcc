// Command steward runs the tenancy service: the global tenant registry,
// the per-tenant connection manager, and the admin API for onboarding and
// offboarding tenants. Business-domain routers are mounted by deployments
// behind the tenant middleware wired here.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/stewardhq/steward/modules/tenants"
	"github.com/stewardhq/steward/pkg/config"
	"github.com/stewardhq/steward/pkg/httpserver"
	"github.com/stewardhq/steward/pkg/logger"
	"github.com/stewardhq/steward/pkg/pg"
	"github.com/stewardhq/steward/pkg/provision"
	"github.com/stewardhq/steward/pkg/secrets"
	"github.com/stewardhq/steward/pkg/tenant"
	"github.com/stewardhq/steward/pkg/tenantdb"
	svctenant "github.com/stewardhq/steward/svc/tenant"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`       // Env selects logging presets and fallback defaults.
	TenantCache string `env:"TENANT_CACHE" envDefault:"memory"`       // TenantCache selects the metadata cache: memory or redis.
	SeedFile    string `env:"TENANT_SEED_FILE"`                       // SeedFile optionally preloads development fixtures.
	TenantHost  string `env:"TENANT_HOST_SUFFIX" envDefault:""`       // TenantHost is the subdomain suffix tenants resolve under, e.g. ".steward.app".
	HeaderName  string `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"` // HeaderName is the tenant identifier header.
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("steward exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg  appConfig
		pgCfg   pg.Config
		provCfg provision.Config
		secCfg  secrets.Config
		dbCfg   tenantdb.Config
		httpCfg httpserver.Config
	)
	for _, err := range []error{
		config.Load(&appCfg),
		config.Load(&pgCfg),
		config.Load(&provCfg),
		config.Load(&secCfg),
		config.Load(&dbCfg),
		config.Load(&httpCfg),
	} {
		if err != nil {
			return err
		}
	}

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, "steward"),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	keyring, err := secrets.NewKeyringFromConfig(secCfg)
	if err != nil {
		return fmt.Errorf("build credential keyring: %w", err)
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect registry database: %w", err)
	}
	defer pool.Close()

	// The tenants catalog must exist before anything reads it.
	migrator := provision.NewMigrator(log)
	registryDB := stdlib.OpenDBFromPool(pool)
	if err := migrator.RunRegistry(ctx, registryDB, "postgres"); err != nil {
		_ = registryDB.Close()
		return fmt.Errorf("migrate registry schema: %w", err)
	}
	if err := registryDB.Close(); err != nil {
		return fmt.Errorf("release registry migration handle: %w", err)
	}

	store := svctenant.NewPGStore(pool)

	provisioner, err := buildProvisioner(provCfg, log)
	if err != nil {
		return err
	}

	manager := tenantdb.New(dbCfg,
		tenantdb.WithLogger(log),
		tenantdb.WithProvisioner(provisioner),
		tenantdb.WithMigrator(migrator),
		tenantdb.WithRegistry(svctenant.NewRegistry(store, keyring)),
	)
	defer func() { _ = manager.Close(context.Background()) }()

	cache, err := buildCache(ctx, appCfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	// The service and the middleware share one cache instance so that
	// deactivating a tenant invalidates what the request path reads.
	svc := svctenant.NewService(store, keyring, manager,
		svctenant.WithServiceLogger(log),
		svctenant.WithServiceCache(cache),
	)

	if appCfg.SeedFile != "" {
		seed, err := svctenant.LoadSeedFile(appCfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := svctenant.ApplySeed(ctx, store, keyring, seed, log); err != nil {
			return err
		}
	}

	resolver := tenant.NewCompositeResolver(
		tenant.NewHeaderResolver(appCfg.HeaderName),
		tenant.NewSubdomainResolver(appCfg.TenantHost),
		tenant.NewClaimResolver(""),
	)
	sessions := func(ctx context.Context, t *tenant.Tenant) (tenant.Session, error) {
		s, err := manager.GetSession(ctx, t)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	r := chi.NewRouter()
	r.Get("/healthz", httpserver.Liveness())
	r.Get("/readyz", httpserver.Readiness(log,
		httpserver.Check{Name: "registry", Probe: pg.Healthcheck(pool)},
	))
	r.Mount("/admin/tenants", tenants.Router(svc))

	r.Route("/api", func(api chi.Router) {
		api.Use(tenant.Middleware(resolver, svc, sessions,
			tenant.WithCache(cache),
			tenant.WithLogger(log),
		))
		// Business-domain routers mount here in deployments; whoami lets
		// operators verify resolution end to end.
		api.Get("/whoami", whoami)
	})

	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("steward listening", slog.String("addr", httpCfg.Addr))
		}),
		// Tenant pools drain only after the listener stops accepting.
		httpserver.WithDrainHook(manager.Close),
		httpserver.WithDrainHook(func(context.Context) error { return cache.Close() }),
	)
	return srv.Run(ctx, r)
}

// buildProvisioner assembles the provisioning chain: managed control plane
// when configured, file-backed databases as the explicit development
// fallback. A deployment with neither is a configuration error.
func buildProvisioner(cfg provision.Config, log *slog.Logger) (provision.Provisioner, error) {
	fileProv := provision.NewFileProvisioner(cfg.FileDir, log)

	if cfg.ControlPlaneURL == "" {
		if !cfg.AllowFileFallback {
			return nil, errors.New("no control plane configured and file fallback is disabled")
		}
		log.Warn("no control plane configured, tenant databases will be local files",
			slog.String("dir", cfg.FileDir))
		return fileProv, nil
	}

	cp, err := provision.NewControlPlane(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("build control plane client: %w", err)
	}
	return provision.NewFallback(cp, fileProv, cfg.AllowFileFallback, log), nil
}

func buildCache(ctx context.Context, cfg appConfig, log *slog.Logger) (tenant.Cache, error) {
	if cfg.TenantCache != "redis" {
		return tenant.NewMemoryCache(), nil
	}

	var redisCfg svctenant.RedisConfig
	if err := config.Load(&redisCfg); err != nil {
		return nil, err
	}
	client, err := svctenant.ConnectRedis(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect tenant cache: %w", err)
	}
	return svctenant.NewRedisCache(client, svctenant.WithCacheLogger(log)), nil
}

func whoami(w http.ResponseWriter, r *http.Request) {
	t := tenant.MustFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"tenant_id":   t.ID.String(),
		"tenant_slug": t.Slug,
		"plan":        t.Plan,
	})
}
