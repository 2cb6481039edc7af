package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/tier/models"
)

const keyPrefixUserTier = "user:tier:"

// Repository reads creator trust tiers maintained by the account system.
// This core never writes tiers.
type Repository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) TierOf(ctx context.Context, userID int64) (models.TrustTier, error) {
	value, err := r.client.Get(ctx, keyPrefixUserTier+strconv.FormatInt(userID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		// An absent tier record is not quietly mapped to Bronze: defaulting
		// is how quota bypasses hide.
		return "", apperrors.NewUnknownTierError("").WithDetail("user_id", userID)
	}
	if err != nil {
		return "", apperrors.NewStorageError("get user tier", err)
	}

	tier := models.TrustTier(value)
	if !tier.IsKnown() {
		return "", apperrors.NewUnknownTierError(value).WithDetail("user_id", userID)
	}
	return tier, nil
}
