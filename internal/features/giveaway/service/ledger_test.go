package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
	tiermodels "giveaway-market-backend/internal/features/tier/models"
)

func TestPurchaseHappyPath(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, 100)

	entry, err := env.service.Purchase(context.Background(), giveaway.ID, 42, 3)
	require.NoError(t, err)
	require.Equal(t, 3, entry.SlotCount)
	require.Equal(t, int64(42), entry.UserID)

	updated, err := env.service.GetByID(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, 3, updated.SoldCount)

	entries, err := env.service.ListEntries(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, entry.ID, entries[0].ID)
}

func TestPurchaseInvalidSlotCount(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, 100)

	for _, slots := range []int{0, -1, -100} {
		_, err := env.service.Purchase(context.Background(), giveaway.ID, 42, slots)
		require.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidSlotCount), "slots=%d", slots)
	}
}

func TestPurchaseRequiresActiveStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierBronze)

	created, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Draft", Value: 50, Capacity: 10, Duration: 3600,
	})
	require.NoError(t, err)

	_, err = env.service.Purchase(context.Background(), created.ID, 42, 1)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeGiveawayNotActive))

	published, err := env.service.Publish(context.Background(), 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusPendingApproval, published.Status)

	_, err = env.service.Purchase(context.Background(), created.ID, 42, 1)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeGiveawayNotActive))
}

func TestPurchaseAfterExpiry(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, 100)

	env.clock.Advance(2 * time.Hour)

	_, err := env.service.Purchase(context.Background(), giveaway.ID, 42, 1)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeGiveawayExpired))
}

func TestPurchaseCapacityBoundary(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, 10)

	_, err := env.service.Purchase(context.Background(), giveaway.ID, 42, 10)
	require.NoError(t, err)

	_, err = env.service.Purchase(context.Background(), giveaway.ID, 43, 1)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeCapacityExceeded))

	updated, err := env.service.GetByID(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, 10, updated.SoldCount)
}

func TestPurchaseUnlimitedCapacity(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, models.CapacityUnlimited)

	for user := int64(1); user <= 20; user++ {
		_, err := env.service.Purchase(context.Background(), giveaway.ID, user, 500)
		require.NoError(t, err)
	}

	updated, err := env.service.GetByID(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, 10_000, updated.SoldCount)
}

// Two concurrent purchases that jointly overflow capacity: exactly one wins.
func TestPurchaseConcurrentOverflow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, 100)

	requests := []int{60, 50}
	results := make([]error, len(requests))

	var wg sync.WaitGroup
	for i, slots := range requests {
		wg.Add(1)
		go func(i, slots int) {
			defer wg.Done()
			_, results[i] = env.service.Purchase(context.Background(), giveaway.ID, int64(100+i), slots)
		}(i, slots)
	}
	wg.Wait()

	var succeeded, capacityFailed int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.HasCode(err, apperrors.ErrCodeCapacityExceeded):
			capacityFailed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, capacityFailed)

	updated, err := env.service.GetByID(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Contains(t, []int{50, 60}, updated.SoldCount)
}

// Many concurrent purchases against a small capacity: the counter never
// oversells and fills completely.
func TestPurchaseConcurrentStress(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)
	giveaway := env.mustCreateActive(t, 1, 50)

	const workers = 40
	results := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.service.Purchase(context.Background(), giveaway.ID, int64(i), 2)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, apperrors.HasCode(err, apperrors.ErrCodeCapacityExceeded), "unexpected error: %v", err)
	}
	// 50 slots at 2 per purchase: exactly 25 buyers fit.
	require.Equal(t, 25, succeeded)

	updated, err := env.service.GetByID(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, 50, updated.SoldCount)

	entries, err := env.service.ListEntries(context.Background(), giveaway.ID)
	require.NoError(t, err)
	total := 0
	for _, entry := range entries {
		total += entry.SlotCount
	}
	require.Equal(t, 50, total)
}
