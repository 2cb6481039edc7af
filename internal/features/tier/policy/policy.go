package policy

import (
	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/tier/models"
)

// privileges is the full tier table. Giveaway values are in whole currency
// units.
var privileges = map[models.TrustTier]models.PrivilegeRecord{
	models.TierBronze: {
		MaxGiveawaysPerMonth: 2,
		MaxGiveawayValue:     100,
		RequiresApproval:     true,
		PaidEntriesAllowed:   false,
	},
	models.TierSilver: {
		MaxGiveawaysPerMonth: 5,
		MaxGiveawayValue:     500,
		RequiresApproval:     true,
		PaidEntriesAllowed:   true,
	},
	models.TierGold: {
		MaxGiveawaysPerMonth: 10,
		MaxGiveawayValue:     2500,
		RequiresApproval:     false,
		PaidEntriesAllowed:   true,
	},
	models.TierPlatinum: {
		MaxGiveawaysPerMonth: 20,
		MaxGiveawayValue:     10000,
		RequiresApproval:     false,
		PaidEntriesAllowed:   true,
	},
	models.TierDiamond: {
		MaxGiveawaysPerMonth: models.Unlimited,
		MaxGiveawayValue:     models.Unlimited,
		RequiresApproval:     false,
		PaidEntriesAllowed:   true,
	},
}

// PrivilegesFor maps a trust tier to its privilege record. A tier outside the
// known set is an error, never a silent fallback to a default tier.
func PrivilegesFor(tier models.TrustTier) (models.PrivilegeRecord, error) {
	record, ok := privileges[tier]
	if !ok {
		return models.PrivilegeRecord{}, apperrors.NewUnknownTierError(string(tier))
	}
	return record, nil
}
