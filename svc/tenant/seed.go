package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/stewardhq/steward/pkg/logger"
	"github.com/stewardhq/steward/pkg/secrets"
	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// SeedFile describes development fixtures: tenants to preload into the
// registry, typically pointing at file-backed databases.
type SeedFile struct {
	Tenants []SeedTenant `yaml:"tenants"`
}

// SeedTenant is one fixture entry. Credential is cleartext in the file and
// encrypted on the way into the store; development seeds normally leave it
// empty and use file-backed databases.
type SeedTenant struct {
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	DatabaseURL string   `yaml:"database_url"`
	Credential  string   `yaml:"credential"`
	Plan        string   `yaml:"plan"`
	Features    []string `yaml:"features"`
	Active      *bool    `yaml:"active"`
}

// LoadSeedFile reads and validates a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidSeedFile, err)
	}

	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidSeedFile, err)
	}

	for i, s := range file.Tenants {
		if !tenantpkg.ValidIdentifier(s.Slug) {
			return nil, fmt.Errorf("%w: tenant %d: invalid slug %q", ErrInvalidSeedFile, i, s.Slug)
		}
		if s.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: tenant %q: database_url is required", ErrInvalidSeedFile, s.Slug)
		}
	}
	return &file, nil
}

// ApplySeed inserts the fixtures into the store, minting a fresh id per
// tenant and encrypting credentials. Entries whose slug is already taken
// are skipped so re-running a seed against a warm store is harmless.
func ApplySeed(ctx context.Context, store Store, keyring *secrets.Keyring, file *SeedFile, log *slog.Logger) ([]*Record, error) {
	if log == nil {
		log = slog.Default()
	}

	var applied []*Record
	for _, s := range file.Tenants {
		rec := &Record{
			ID:          uuid.New(),
			Slug:        s.Slug,
			Name:        s.Name,
			DatabaseURL: s.DatabaseURL,
			Plan:        s.Plan,
			Features:    s.Features,
			Active:      s.Active == nil || *s.Active,
			CreatedAt:   time.Now().UTC(),
		}
		rec.UpdatedAt = rec.CreatedAt

		if s.Credential != "" {
			encrypted, err := keyring.EncryptCredential(rec.ID.String(), s.Credential)
			if err != nil {
				return applied, fmt.Errorf("seed tenant %q: %w", s.Slug, err)
			}
			rec.EncryptedCredential = encrypted
		}

		if err := store.Create(ctx, rec); err != nil {
			if errors.Is(err, ErrSlugTaken) {
				log.InfoContext(ctx, "seed tenant already present, skipping",
					logger.TenantSlug(s.Slug))
				continue
			}
			return applied, fmt.Errorf("seed tenant %q: %w", s.Slug, err)
		}
		applied = append(applied, rec)
	}
	return applied, nil
}
