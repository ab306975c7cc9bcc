package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stewardhq/steward/pkg/logger"
)

// FileProvisioner creates SQLite database files for development and tests.
// Each tenant gets <dir>/<name>.db; the returned URL is a ready-to-open DSN.
type FileProvisioner struct {
	dir string
	log *slog.Logger
}

func NewFileProvisioner(dir string, log *slog.Logger) *FileProvisioner {
	if log == nil {
		log = slog.Default()
	}
	return &FileProvisioner{dir: dir, log: log}
}

func (p *FileProvisioner) CreateDatabase(ctx context.Context, name string) (Database, error) {
	if err := ctx.Err(); err != nil {
		return Database{}, err
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return Database{}, errors.Join(ErrFailedToCreateDatabase, err)
	}

	path := filepath.Join(p.dir, name+".db")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return Database{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
		}
		return Database{}, errors.Join(ErrFailedToCreateDatabase, err)
	}
	if err := f.Close(); err != nil {
		return Database{}, errors.Join(ErrFailedToCreateDatabase, err)
	}

	p.log.InfoContext(ctx, "file-backed tenant database created",
		logger.Database(name),
		slog.String("path", path))

	return Database{Name: name, URL: FileDSN(path)}, nil
}

// FileDSN builds the SQLite connection string for a database file: WAL so
// readers don't block the writer, a busy timeout instead of immediate
// SQLITE_BUSY, and enforced foreign keys.
func FileDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
