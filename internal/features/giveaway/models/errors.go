package models

import (
	apperrors "giveaway-market-backend/internal/common/errors"
)

func errInvalidCapacity(id string, capacity int) error {
	return apperrors.NewDataIntegrityError("giveaway capacity is negative").
		WithDetail("giveaway_id", id).
		WithDetail("capacity", capacity)
}

func errNegativeSoldCount(id string, sold int) error {
	return apperrors.NewDataIntegrityError("giveaway sold count is negative").
		WithDetail("giveaway_id", id).
		WithDetail("sold_count", sold)
}

func errOversold(id string, sold, capacity int) error {
	return apperrors.NewDataIntegrityError("giveaway sold count exceeds capacity").
		WithDetail("giveaway_id", id).
		WithDetail("sold_count", sold).
		WithDetail("capacity", capacity)
}

func errStrayWinner(id, status string) error {
	return apperrors.NewDataIntegrityError("winner set outside a completed draw").
		WithDetail("giveaway_id", id).
		WithDetail("status", status)
}
