package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stewardhq/steward/pkg/pg"
	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// PGStore persists registry records in the global Postgres database. Slug
// uniqueness among active tenants is enforced by a partial unique index, so
// concurrent signups for one slug race safely at the database.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const recordColumns = `id, slug, name, database_url, credential, plan, features, active, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, rec *Record) error {
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tenants (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		rec.ID.String(), rec.Slug, rec.Name, rec.DatabaseURL, rec.EncryptedCredential,
		rec.Plan, string(features), rec.Active, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *PGStore) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM tenants
		WHERE id = $1
	`, id.String())
	return scanRecord(row)
}

// GetBySlug prefers the active row: a deactivated tenant keeps its row but
// frees the slug, so one slug may map to several historical rows.
func (s *PGStore) GetBySlug(ctx context.Context, slug string) (*Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM tenants
		WHERE slug = $1
		ORDER BY active DESC, created_at DESC
		LIMIT 1
	`, slug)
	return scanRecord(row)
}

func (s *PGStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tenants
		SET active = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update tenant active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenantpkg.ErrTenantNotFound
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM tenants
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec      Record
		id       string
		features string
	)
	err := row.Scan(
		&id, &rec.Slug, &rec.Name, &rec.DatabaseURL, &rec.EncryptedCredential,
		&rec.Plan, &features, &rec.Active, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenantpkg.ErrTenantNotFound
		}
		return nil, fmt.Errorf("scan tenant row: %w", err)
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse tenant id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
		return nil, fmt.Errorf("decode features for tenant %s: %w", id, err)
	}
	return &rec, nil
}
