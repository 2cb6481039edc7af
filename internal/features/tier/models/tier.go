package models

// TrustTier is a creator classification bounding creation frequency and
// giveaway value. Tiers are ordered Bronze < Silver < Gold < Platinum < Diamond.
type TrustTier string

const (
	TierBronze   TrustTier = "bronze"
	TierSilver   TrustTier = "silver"
	TierGold     TrustTier = "gold"
	TierPlatinum TrustTier = "platinum"
	TierDiamond  TrustTier = "diamond"
)

// Unlimited is the sentinel for numeric privilege fields that carry no limit.
const Unlimited = -1

// PrivilegeRecord holds the numeric and boolean privileges a tier grants.
// Numeric fields use Unlimited (-1) to mean "no limit".
type PrivilegeRecord struct {
	MaxGiveawaysPerMonth int   `json:"max_giveaways_per_month"`
	MaxGiveawayValue     int64 `json:"max_giveaway_value"`
	RequiresApproval     bool  `json:"requires_approval"`
	PaidEntriesAllowed   bool  `json:"paid_entries_allowed"`
}

// KnownTiers lists the five tiers in rank order.
func KnownTiers() []TrustTier {
	return []TrustTier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
}

// IsKnown reports whether t is one of the five known tiers.
func (t TrustTier) IsKnown() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond:
		return true
	}
	return false
}
