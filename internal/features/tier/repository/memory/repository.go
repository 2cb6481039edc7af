package memory

import (
	"context"
	"sync"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/tier/models"
)

// Repository is the in-memory tier lookup used by tests and local dev.
type Repository struct {
	mu    sync.RWMutex
	tiers map[int64]models.TrustTier
}

func NewRepository() *Repository {
	return &Repository{tiers: make(map[int64]models.TrustTier)}
}

// SetTier assigns a user's tier. Stand-in for the account system.
func (r *Repository) SetTier(userID int64, tier models.TrustTier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[userID] = tier
}

func (r *Repository) TierOf(ctx context.Context, userID int64) (models.TrustTier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tier, ok := r.tiers[userID]
	if !ok {
		return "", apperrors.NewUnknownTierError("").WithDetail("user_id", userID)
	}
	if !tier.IsKnown() {
		return "", apperrors.NewUnknownTierError(string(tier)).WithDetail("user_id", userID)
	}
	return tier, nil
}
