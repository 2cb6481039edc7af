package service

import (
	"context"

	"github.com/google/uuid"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
)

// Purchase atomically reserves slotCount entry slots against the giveaway's
// capacity and appends the immutable entry record.
//
// The check-and-increment runs under the per-giveaway lock, so two purchases
// that would jointly overflow a finite capacity resolve to exactly one
// success and one CapacityExceeded. The version check on the write is the
// backstop in case a lock ever expires mid-operation.
func (s *giveawayService) Purchase(ctx context.Context, giveawayID string, userID int64, slotCount int) (*models.Entry, error) {
	if slotCount < 1 {
		return nil, apperrors.Newf(apperrors.ErrCodeInvalidSlotCount, "slot count must be at least 1, got %d", slotCount).
			WithDetail("slot_count", slotCount)
	}

	var entry *models.Entry
	err := s.withGiveawayLock(ctx, giveawayID, func() error {
		giveaway, err := s.getGiveaway(ctx, giveawayID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if giveaway.Status != models.GiveawayStatusActive {
			return apperrors.Newf(apperrors.ErrCodeGiveawayNotActive, "giveaway is %s, not accepting entries", giveaway.Status).
				WithDetail("status", string(giveaway.Status))
		}
		if giveaway.HasEnded(now) {
			return apperrors.New(apperrors.ErrCodeGiveawayExpired, "giveaway sale window has ended").
				WithDetail("ends_at", giveaway.EndsAt)
		}
		if !giveaway.HasUnlimitedCapacity() && giveaway.SoldCount+slotCount > giveaway.Capacity {
			return apperrors.NewCapacityExceededError(giveaway.Capacity, giveaway.SoldCount, slotCount)
		}

		// The counter moves first. If the entry append then fails, the
		// giveaway undersells by slotCount, which is recoverable; the other
		// order could oversell, which is not.
		expectedVersion := giveaway.Version
		giveaway.SoldCount += slotCount
		giveaway.UpdatedAt = now
		if err := s.repo.UpdateGiveaway(ctx, giveaway, expectedVersion); err != nil {
			return apperrors.NewStorageError("reserve slots", err)
		}

		entry = &models.Entry{
			ID:          uuid.New().String(),
			GiveawayID:  giveawayID,
			UserID:      userID,
			SlotCount:   slotCount,
			PurchasedAt: now,
		}
		if err := s.repo.AppendEntry(ctx, entry); err != nil {
			s.logger.Error().
				Err(err).
				Str("giveaway_id", giveawayID).
				Int("slot_count", slotCount).
				Msg("DATA INTEGRITY ALERT: slots reserved but entry append failed")
			return apperrors.NewStorageError("append entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("giveaway_id", giveawayID).
		Str("entry_id", entry.ID).
		Int64("user_id", userID).
		Int("slot_count", slotCount).
		Msg("Entry purchased")

	return entry, nil
}
