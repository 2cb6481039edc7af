package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-market-backend/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound   = errors.New("giveaway not found")
	ErrEntryNotFound      = errors.New("entry not found")
	ErrDrawRecordNotFound = errors.New("draw record not found")
	ErrDrawRecordExists   = errors.New("draw record already exists")
	ErrVersionConflict    = errors.New("giveaway version conflict")
	ErrAlreadyLocked      = errors.New("resource is already locked")
)

// GiveawayRepository is the persistence boundary of the ticketing core.
//
// Writes are guarded two ways: the service serializes mutations of one
// giveaway through AcquireLock, and UpdateGiveaway additionally rejects stale
// writes via the version check. Entries are append-only.
type GiveawayRepository interface {
	CreateGiveaway(ctx context.Context, giveaway *models.Giveaway) error
	GetGiveaway(ctx context.Context, id string) (*models.Giveaway, error)

	// UpdateGiveaway writes the giveaway if the stored version still equals
	// expectedVersion and bumps the version by one. Returns
	// ErrVersionConflict otherwise.
	UpdateGiveaway(ctx context.Context, giveaway *models.Giveaway, expectedVersion int64) error

	AppendEntry(ctx context.Context, entry *models.Entry) error
	ListEntries(ctx context.Context, giveawayID string) ([]models.Entry, error)
	GetEntry(ctx context.Context, giveawayID, entryID string) (*models.Entry, error)

	// CountCreatorGiveaways counts giveaways the creator opened in [from, to).
	// Cancelled giveaways still count against the window: cancelling is not a
	// quota refund.
	CountCreatorGiveaways(ctx context.Context, creatorID int64, from, to time.Time) (int, error)
	ListByCreator(ctx context.Context, creatorID int64) ([]*models.Giveaway, error)

	// ListExpired returns ids of active giveaways whose endsAt is not after now.
	ListExpired(ctx context.Context, now time.Time) ([]string, error)

	// AcquireLock takes a short-lived exclusive lock. Returns ErrAlreadyLocked
	// when the lock is held; callers poll with a backoff.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) error
	ReleaseLock(ctx context.Context, key string) error
}

// AuditLog stores draw records append-only: one record per giveaway, written
// exactly once, never overwritten.
type AuditLog interface {
	RecordDraw(ctx context.Context, record *models.DrawRecord) error
	GetDraw(ctx context.Context, giveawayID string) (*models.DrawRecord, error)
}
