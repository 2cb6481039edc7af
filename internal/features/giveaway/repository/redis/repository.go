package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"giveaway-market-backend/internal/features/giveaway/models"
	"giveaway-market-backend/internal/features/giveaway/repository"
)

const (
	keyPrefixGiveaway  = "giveaway:"
	keyPrefixLock      = "lock:"
	keyActiveByEndsAt  = "giveaways:active_by_ends_at"
	keyPrefixByCreator = "giveaways:by_creator:"
)

// Repository is the Redis-backed implementation of GiveawayRepository and
// AuditLog. Giveaways are stored as JSON values; the version check of
// UpdateGiveaway runs under WATCH so a racing write loses cleanly.
type Repository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func makeEntriesKey(id string) string {
	return keyPrefixGiveaway + id + ":entries"
}

func makeDrawKey(id string) string {
	return keyPrefixGiveaway + id + ":draw"
}

func makeByCreatorKey(creatorID int64) string {
	return keyPrefixByCreator + strconv.FormatInt(creatorID, 10)
}

func (r *Repository) CreateGiveaway(ctx context.Context, giveaway *models.Giveaway) error {
	data, err := json.Marshal(giveaway)
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, makeGiveawayKey(giveaway.ID), data, 0)
	pipe.ZAdd(ctx, makeByCreatorKey(giveaway.CreatorID), redis.Z{
		Score:  float64(giveaway.CreatedAt.Unix()),
		Member: giveaway.ID,
	})
	if giveaway.Status == models.GiveawayStatusActive {
		pipe.ZAdd(ctx, keyActiveByEndsAt, redis.Z{
			Score:  float64(giveaway.EndsAt.Unix()),
			Member: giveaway.ID,
		})
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *Repository) GetGiveaway(ctx context.Context, id string) (*models.Giveaway, error) {
	data, err := r.client.Get(ctx, makeGiveawayKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, err
	}

	var giveaway models.Giveaway
	if err := json.Unmarshal(data, &giveaway); err != nil {
		return nil, fmt.Errorf("failed to unmarshal giveaway %s: %w", id, err)
	}
	return &giveaway, nil
}

func (r *Repository) UpdateGiveaway(ctx context.Context, giveaway *models.Giveaway, expectedVersion int64) error {
	key := makeGiveawayKey(giveaway.ID)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrGiveawayNotFound
		}
		if err != nil {
			return err
		}

		var stored models.Giveaway
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal giveaway %s: %w", giveaway.ID, err)
		}
		if stored.Version != expectedVersion {
			return repository.ErrVersionConflict
		}

		next := *giveaway
		next.Version = expectedVersion + 1
		payload, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("failed to marshal giveaway: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			if next.Status == models.GiveawayStatusActive {
				pipe.ZAdd(ctx, keyActiveByEndsAt, redis.Z{
					Score:  float64(next.EndsAt.Unix()),
					Member: next.ID,
				})
			} else {
				pipe.ZRem(ctx, keyActiveByEndsAt, next.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}

		giveaway.Version = next.Version
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Key changed between read and write; same outcome as a stale version.
		return repository.ErrVersionConflict
	}
	return err
}

func (r *Repository) AppendEntry(ctx context.Context, entry *models.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return r.client.RPush(ctx, makeEntriesKey(entry.GiveawayID), data).Err()
}

func (r *Repository) ListEntries(ctx context.Context, giveawayID string) ([]models.Entry, error) {
	raw, err := r.client.LRange(ctx, makeEntriesKey(giveawayID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(raw))
	for _, item := range raw {
		var entry models.Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry for giveaway %s: %w", giveawayID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Repository) GetEntry(ctx context.Context, giveawayID, entryID string) (*models.Entry, error) {
	entries, err := r.ListEntries(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == entryID {
			return &entries[i], nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (r *Repository) CountCreatorGiveaways(ctx context.Context, creatorID int64, from, to time.Time) (int, error) {
	count, err := r.client.ZCount(ctx, makeByCreatorKey(creatorID),
		strconv.FormatInt(from.Unix(), 10),
		"("+strconv.FormatInt(to.Unix(), 10),
	).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID int64) ([]*models.Giveaway, error) {
	ids, err := r.client.ZRange(ctx, makeByCreatorKey(creatorID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	giveaways := make([]*models.Giveaway, 0, len(ids))
	for _, id := range ids {
		giveaway, err := r.GetGiveaway(ctx, id)
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		giveaways = append(giveaways, giveaway)
	}
	return giveaways, nil
}

func (r *Repository) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	return r.client.ZRangeByScore(ctx, keyActiveByEndsAt, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}

func (r *Repository) AcquireLock(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := r.client.SetNX(ctx, keyPrefixLock+key, "locked", ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return repository.ErrAlreadyLocked
	}
	return nil
}

func (r *Repository) ReleaseLock(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefixLock+key).Err()
}

func (r *Repository) RecordDraw(ctx context.Context, record *models.DrawRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal draw record: %w", err)
	}

	ok, err := r.client.SetNX(ctx, makeDrawKey(record.GiveawayID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrDrawRecordExists
	}
	return nil
}

func (r *Repository) GetDraw(ctx context.Context, giveawayID string) (*models.DrawRecord, error) {
	data, err := r.client.Get(ctx, makeDrawKey(giveawayID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrDrawRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	var record models.DrawRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draw record for giveaway %s: %w", giveawayID, err)
	}
	return &record, nil
}
