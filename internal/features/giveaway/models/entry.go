package models

import (
	"sort"
	"time"
)

// Entry is an immutable record of slots purchased by a user against a
// giveaway. Entries are only ever created, never updated.
type Entry struct {
	ID         string `json:"id"`
	GiveawayID string `json:"giveaway_id"`
	UserID     int64  `json:"user_id"`
	// SlotCount is the number of weighted draw units this entry contributes.
	SlotCount int `json:"slot_count"`
	// PurchasedAt establishes the audit order of the ledger. Selection odds
	// do not depend on it.
	PurchasedAt time.Time `json:"purchased_at"`
}

// SortEntries orders a ledger by (purchasedAt, id). The draw walks entries in
// this order so an audit replay visits the same cumulative ranges.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].PurchasedAt.Equal(entries[j].PurchasedAt) {
			return entries[i].PurchasedAt.Before(entries[j].PurchasedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
