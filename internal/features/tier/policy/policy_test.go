package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/tier/models"
)

func TestPrivilegesForKnownTiers(t *testing.T) {
	tests := []struct {
		tier        models.TrustTier
		maxPerMonth int
		maxValue    int64
		approval    bool
		paidAllowed bool
	}{
		{models.TierBronze, 2, 100, true, false},
		{models.TierSilver, 5, 500, true, true},
		{models.TierGold, 10, 2500, false, true},
		{models.TierPlatinum, 20, 10000, false, true},
		{models.TierDiamond, models.Unlimited, models.Unlimited, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			record, err := PrivilegesFor(tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.maxPerMonth, record.MaxGiveawaysPerMonth)
			assert.Equal(t, tt.maxValue, record.MaxGiveawayValue)
			assert.Equal(t, tt.approval, record.RequiresApproval)
			assert.Equal(t, tt.paidAllowed, record.PaidEntriesAllowed)
		})
	}
}

func TestPrivilegesForUnknownTier(t *testing.T) {
	for _, tier := range []models.TrustTier{"", "copper", "BRONZE", "gold "} {
		_, err := PrivilegesFor(tier)
		require.Error(t, err, "tier %q", tier)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownTier))
	}
}

func TestEveryKnownTierHasPrivileges(t *testing.T) {
	for _, tier := range models.KnownTiers() {
		_, err := PrivilegesFor(tier)
		require.NoError(t, err, "tier %q", tier)
	}
}
