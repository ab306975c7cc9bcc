package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/stewardhq/steward/migrations"
)

// Migrator applies the embedded goose migrations: the full domain schema to
// tenant databases and the tenants table to the global registry database.
// Runs are idempotent; goose version tracking makes replays no-ops.
type Migrator struct {
	log *slog.Logger
}

func NewMigrator(log *slog.Logger) *Migrator {
	if log == nil {
		log = slog.Default()
	}
	return &Migrator{log: log}
}

// Run applies the tenant domain schema to db.
func (m *Migrator) Run(ctx context.Context, db *sql.DB, dialect string) error {
	return m.apply(ctx, db, dialect, migrations.Tenant, "tenant")
}

// RunRegistry applies the registry schema to the global database.
func (m *Migrator) RunRegistry(ctx context.Context, db *sql.DB, dialect string) error {
	return m.apply(ctx, db, dialect, migrations.Registry, "registry")
}

// gooseMu serializes runs: goose dialect, base FS, and logger are process
// globals.
var gooseMu sync.Mutex

func (m *Migrator) apply(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(newGooseSlogAdapter(m.log))

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// DialectFor maps a connection target to the goose dialect that manages it.
func DialectFor(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// gooseSlogAdapter routes goose output through the application logger
// instead of stdout. Fatalf maps to Error and Printf to Info.
type gooseSlogAdapter struct {
	log *slog.Logger
}

func newGooseSlogAdapter(log *slog.Logger) goose.Logger {
	return &gooseSlogAdapter{log: log}
}

func (a *gooseSlogAdapter) Fatalf(format string, v ...any) {
	a.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (a *gooseSlogAdapter) Printf(format string, v ...any) {
	a.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
