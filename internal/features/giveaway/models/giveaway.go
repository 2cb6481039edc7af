package models

import (
	"time"

	tiermodels "giveaway-market-backend/internal/features/tier/models"
)

// GiveawayStatus represents the lifecycle state of a giveaway.
type GiveawayStatus string

const (
	GiveawayStatusDraft           GiveawayStatus = "draft"
	GiveawayStatusPendingApproval GiveawayStatus = "pending_approval"
	GiveawayStatusActive          GiveawayStatus = "active"
	GiveawayStatusEnded           GiveawayStatus = "ended"
	GiveawayStatusCancelled       GiveawayStatus = "cancelled"
)

// CapacityUnlimited is the single sentinel for an uncapped giveaway. Negative
// capacities are rejected at the model boundary; screens that used -1 must
// normalize before calling the core.
const CapacityUnlimited = 0

// Giveaway represents a giveaway with numbered entry slots.
type Giveaway struct {
	ID          string `json:"id"`
	CreatorID   int64  `json:"creator_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// EntryCost is the price of one slot in whole currency units, 0 for free.
	EntryCost int64 `json:"entry_cost"`
	// Value is the declared monetary value checked against the creator's tier.
	Value int64 `json:"value"`
	// Capacity is the total number of purchasable slots, CapacityUnlimited for no cap.
	Capacity int `json:"capacity"`
	// SoldCount is monotonic and never exceeds a finite Capacity.
	SoldCount int `json:"sold_count"`
	// CreatorTier records the tier that admitted this giveaway. Later tier
	// upgrades of the creator do not rewrite history.
	CreatorTier tiermodels.TrustTier `json:"creator_tier"`
	// RequiresApproval is the recorded admission outcome: it decides whether
	// publishing routes through PendingApproval.
	RequiresApproval bool `json:"requires_approval"`
	// Duration is the sale window length in seconds; EndsAt is fixed when the
	// giveaway goes Active.
	Duration int64          `json:"duration"`
	EndsAt   time.Time      `json:"ends_at"`
	Status   GiveawayStatus `json:"status"`
	// WinnerEntryID is set exactly once, together with the Ended transition,
	// and only when at least one entry exists.
	WinnerEntryID *string   `json:"winner_entry_id,omitempty"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// legalTransitions is the lifecycle state machine:
// draft -> pending_approval -> active -> {ended, cancelled}.
// Ended and Cancelled are terminal.
var legalTransitions = map[GiveawayStatus][]GiveawayStatus{
	GiveawayStatusDraft:           {GiveawayStatusPendingApproval, GiveawayStatusActive, GiveawayStatusCancelled},
	GiveawayStatusPendingApproval: {GiveawayStatusActive, GiveawayStatusCancelled},
	GiveawayStatusActive:          {GiveawayStatusEnded, GiveawayStatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle transition.
func CanTransition(from, to GiveawayStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s GiveawayStatus) IsTerminal() bool {
	return s == GiveawayStatusEnded || s == GiveawayStatusCancelled
}

// HasUnlimitedCapacity reports whether the giveaway has no slot cap.
func (g *Giveaway) HasUnlimitedCapacity() bool {
	return g.Capacity == CapacityUnlimited
}

// HasEnded reports whether the giveaway's sale window is over at now.
func (g *Giveaway) HasEnded(now time.Time) bool {
	return !now.Before(g.EndsAt)
}

// RemainingSlots returns the headroom left, or -1 for unlimited capacity.
func (g *Giveaway) RemainingSlots() int {
	if g.HasUnlimitedCapacity() {
		return -1
	}
	return g.Capacity - g.SoldCount
}

// CheckIntegrity verifies stored invariants that must hold on every read.
// A violation is fatal to the operation, never silently corrected.
func (g *Giveaway) CheckIntegrity() error {
	if g.Capacity < 0 {
		return errInvalidCapacity(g.ID, g.Capacity)
	}
	if g.SoldCount < 0 {
		return errNegativeSoldCount(g.ID, g.SoldCount)
	}
	if !g.HasUnlimitedCapacity() && g.SoldCount > g.Capacity {
		return errOversold(g.ID, g.SoldCount, g.Capacity)
	}
	if g.WinnerEntryID != nil && (g.Status != GiveawayStatusEnded || g.SoldCount == 0) {
		// A winner may exist only on an Ended giveaway with at least one entry.
		return errStrayWinner(g.ID, string(g.Status))
	}
	return nil
}
