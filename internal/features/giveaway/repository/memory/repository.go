package memory

import (
	"context"
	"sync"
	"time"

	"giveaway-market-backend/internal/features/giveaway/models"
	"giveaway-market-backend/internal/features/giveaway/repository"
)

// Repository is an in-memory implementation of GiveawayRepository and
// AuditLog. It backs local development and the test suite; semantics mirror
// the Redis implementation, including try-lock behavior.
type Repository struct {
	mu        sync.RWMutex
	giveaways map[string]*models.Giveaway
	entries   map[string][]models.Entry
	draws     map[string]*models.DrawRecord
	locks     map[string]time.Time // lock key -> expiry
}

func NewRepository() *Repository {
	return &Repository{
		giveaways: make(map[string]*models.Giveaway),
		entries:   make(map[string][]models.Entry),
		draws:     make(map[string]*models.DrawRecord),
		locks:     make(map[string]time.Time),
	}
}

func (r *Repository) CreateGiveaway(ctx context.Context, giveaway *models.Giveaway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *giveaway
	r.giveaways[giveaway.ID] = &cp
	return nil
}

func (r *Repository) GetGiveaway(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	giveaway, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	cp := *giveaway
	return &cp, nil
}

func (r *Repository) UpdateGiveaway(ctx context.Context, giveaway *models.Giveaway, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.giveaways[giveaway.ID]
	if !ok {
		return repository.ErrGiveawayNotFound
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}

	cp := *giveaway
	cp.Version = expectedVersion + 1
	r.giveaways[giveaway.ID] = &cp
	giveaway.Version = cp.Version
	return nil
}

func (r *Repository) AppendEntry(ctx context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entry.GiveawayID] = append(r.entries[entry.GiveawayID], *entry)
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, giveawayID string) ([]models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[giveawayID]
	entries := make([]models.Entry, len(stored))
	copy(entries, stored)
	return entries, nil
}

func (r *Repository) GetEntry(ctx context.Context, giveawayID, entryID string) (*models.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries[giveawayID] {
		if entry.ID == entryID {
			cp := entry
			return &cp, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (r *Repository) CountCreatorGiveaways(ctx context.Context, creatorID int64, from, to time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, giveaway := range r.giveaways {
		if giveaway.CreatorID != creatorID {
			continue
		}
		if giveaway.CreatedAt.Before(from) || !giveaway.CreatedAt.Before(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID int64) ([]*models.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Giveaway
	for _, giveaway := range r.giveaways {
		if giveaway.CreatorID == creatorID {
			cp := *giveaway
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *Repository) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, giveaway := range r.giveaways {
		if giveaway.Status == models.GiveawayStatusActive && giveaway.HasEnded(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Repository) AcquireLock(ctx context.Context, key string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if expiry, held := r.locks[key]; held && now.Before(expiry) {
		return repository.ErrAlreadyLocked
	}
	r.locks[key] = now.Add(ttl)
	return nil
}

func (r *Repository) ReleaseLock(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locks, key)
	return nil
}

func (r *Repository) RecordDraw(ctx context.Context, record *models.DrawRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.draws[record.GiveawayID]; exists {
		return repository.ErrDrawRecordExists
	}
	cp := *record
	r.draws[record.GiveawayID] = &cp
	return nil
}

func (r *Repository) GetDraw(ctx context.Context, giveawayID string) (*models.DrawRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.draws[giveawayID]
	if !ok {
		return nil, repository.ErrDrawRecordNotFound
	}
	cp := *record
	return &cp, nil
}
