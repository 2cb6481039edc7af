package service

import (
	"context"
	"time"

	"giveaway-market-backend/internal/features/giveaway/models"
	tiermodels "giveaway-market-backend/internal/features/tier/models"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// SecureRandom is the draw's random source. Implementations must be
// cryptographically secure; this injection point is never shared with
// cosmetic randomness elsewhere in the app.
type SecureRandom interface {
	// UniformInt returns a uniformly distributed integer in [0, n).
	UniformInt(n int64) (int64, error)
}

// NotificationSink delivers winner notifications. Fire-and-forget: a delivery
// failure never rolls back a draw.
type NotificationSink interface {
	NotifyWinner(userID int64, giveawayID string)
}

// TierLookup resolves a creator's current trust tier. Backed by the account
// system, which is outside this core.
type TierLookup interface {
	TierOf(ctx context.Context, userID int64) (tiermodels.TrustTier, error)
}

// GiveawayService is the ticketing and winner-selection core.
type GiveawayService interface {
	Create(ctx context.Context, creatorID int64, input *models.GiveawayCreate) (*models.GiveawayResponse, error)
	Publish(ctx context.Context, creatorID int64, giveawayID string) (*models.GiveawayResponse, error)
	Approve(ctx context.Context, giveawayID string) (*models.GiveawayResponse, error)
	Cancel(ctx context.Context, creatorID int64, giveawayID string) (*models.GiveawayResponse, error)

	Purchase(ctx context.Context, giveawayID string, userID int64, slotCount int) (*models.Entry, error)

	Close(ctx context.Context, giveawayID string) (*models.Giveaway, error)
	Redraw(ctx context.Context, giveawayID string) (*models.Giveaway, error)

	GetByID(ctx context.Context, giveawayID string) (*models.GiveawayResponse, error)
	ListEntries(ctx context.Context, giveawayID string) ([]models.Entry, error)
	GetDrawRecord(ctx context.Context, giveawayID string) (*models.DrawRecord, error)
	ListByCreator(ctx context.Context, creatorID int64) ([]*models.GiveawayResponse, error)
}
