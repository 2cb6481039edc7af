package models

import "time"

// DrawRecord is the append-only audit record of a winner draw. A third party
// can verify the draw by sorting the ledger with SortEntries, accumulating
// slot counts and checking that RandomValue falls inside the winning entry's
// cumulative range.
type DrawRecord struct {
	GiveawayID     string    `json:"giveaway_id"`
	TotalWeight    int64     `json:"total_weight"`
	RandomValue    int64     `json:"random_value"`
	WinningEntryID string    `json:"winning_entry_id"`
	DrawnAt        time.Time `json:"drawn_at"`
}
