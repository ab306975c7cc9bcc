package tenant

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	tenantpkg "github.com/stewardhq/steward/pkg/tenant"
)

// MemStore is an in-memory Store for tests and seeded local development.
// It mirrors the Postgres semantics: slugs are unique among active records
// only, and records are never removed.
type MemStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[uuid.UUID]*Record)}
}

func (s *MemStore) Create(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Active {
		for _, existing := range s.records {
			if existing.Active && existing.Slug == rec.Slug {
				return ErrSlugTaken
			}
		}
	}

	s.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (s *MemStore) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, tenantpkg.ErrTenantNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemStore) GetBySlug(ctx context.Context, slug string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *Record
	for _, rec := range s.records {
		if rec.Slug != slug {
			continue
		}
		if best == nil || betterSlugMatch(rec, best) {
			best = rec
		}
	}
	if best == nil {
		return nil, tenantpkg.ErrTenantNotFound
	}
	return cloneRecord(best), nil
}

// betterSlugMatch ranks candidate rows for one slug: active beats inactive,
// then newer beats older.
func betterSlugMatch(candidate, current *Record) bool {
	if candidate.Active != current.Active {
		return candidate.Active
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}

func (s *MemStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return tenantpkg.ErrTenantNotFound
	}
	if rec.Active != active {
		rec.Active = active
		rec.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, cloneRecord(rec))
	}
	slices.SortFunc(records, func(a, b *Record) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return records, nil
}

func cloneRecord(rec *Record) *Record {
	out := *rec
	out.Features = slices.Clone(rec.Features)
	return &out
}
