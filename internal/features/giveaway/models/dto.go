package models

import "time"

// GiveawayCreate represents data for creating a new giveaway. Tier and quota
// limits are re-checked server-side on this payload regardless of what the
// mobile form already validated.
type GiveawayCreate struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Value       int64  `json:"value" binding:"required,min=1"`
	EntryCost   int64  `json:"entry_cost" binding:"min=0"`
	// Capacity 0 means unlimited; negative values are rejected.
	Capacity int   `json:"capacity" binding:"min=0"`
	Duration int64 `json:"duration" binding:"required,min=60"` // seconds
}

// PurchaseRequest represents a request to buy entry slots.
type PurchaseRequest struct {
	SlotCount int `json:"slot_count" binding:"required,min=1"`
}

// GiveawayResponse is the API view of a giveaway.
type GiveawayResponse struct {
	ID            string         `json:"id"`
	CreatorID     int64          `json:"creator_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Value         int64          `json:"value"`
	EntryCost     int64          `json:"entry_cost"`
	Capacity      int            `json:"capacity"`
	SoldCount     int            `json:"sold_count"`
	EndsAt        time.Time      `json:"ends_at"`
	Status        GiveawayStatus `json:"status"`
	WinnerEntryID *string        `json:"winner_entry_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AdmissionDecision is the outcome of a successful admission check.
type AdmissionDecision struct {
	RequiresApproval bool `json:"requires_approval"`
}

// ToResponse maps a giveaway to its API view.
func (g *Giveaway) ToResponse() *GiveawayResponse {
	return &GiveawayResponse{
		ID:            g.ID,
		CreatorID:     g.CreatorID,
		Title:         g.Title,
		Description:   g.Description,
		Value:         g.Value,
		EntryCost:     g.EntryCost,
		Capacity:      g.Capacity,
		SoldCount:     g.SoldCount,
		EndsAt:        g.EndsAt,
		Status:        g.Status,
		WinnerEntryID: g.WinnerEntryID,
		CreatedAt:     g.CreatedAt,
	}
}
