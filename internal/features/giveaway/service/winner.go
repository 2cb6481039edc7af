package service

import (
	"context"
	"errors"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
	"giveaway-market-backend/internal/features/giveaway/repository"
)

// Close ends an Active giveaway and draws the winner in one serialized
// operation. It is idempotent: closing an already Ended giveaway returns the
// stored result and never re-draws.
//
// The draw gives every purchased slot equal probability: a single uniform
// integer in [0, totalWeight) is taken from the secure source and mapped onto
// the ledger walked in (purchasedAt, id) order.
func (s *giveawayService) Close(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	var result *models.Giveaway
	err := s.withGiveawayLock(ctx, giveawayID, func() error {
		giveaway, err := s.getGiveaway(ctx, giveawayID)
		if err != nil {
			return err
		}

		// Idempotent retry: the draw already happened.
		if giveaway.Status == models.GiveawayStatusEnded {
			result = giveaway
			return nil
		}
		if giveaway.Status != models.GiveawayStatusActive {
			return apperrors.NewInvalidTransitionError(string(giveaway.Status), string(models.GiveawayStatusEnded))
		}

		now := s.clock.Now()
		if !giveaway.HasEnded(now) && giveaway.SoldCount == 0 {
			// Manual early close needs at least one entry; expiry handles the
			// rest.
			return apperrors.New(apperrors.ErrCodeNoEntries, "cannot end a running giveaway before any entry exists")
		}

		entries, err := s.repo.ListEntries(ctx, giveawayID)
		if err != nil {
			return apperrors.NewStorageError("list entries", err)
		}

		// Ended with no winner is a valid terminal state.
		if len(entries) == 0 {
			result, err = s.transition(ctx, giveaway, models.GiveawayStatusEnded)
			if err != nil {
				return err
			}
			s.logger.Info().Str("giveaway_id", giveawayID).Msg("Giveaway ended with no entries")
			return nil
		}

		winner, record, err := s.drawWinner(ctx, giveaway, entries)
		if err != nil {
			return err
		}

		giveaway.WinnerEntryID = &winner.ID
		result, err = s.transition(ctx, giveaway, models.GiveawayStatusEnded)
		if err != nil {
			return err
		}

		s.logger.Info().
			Str("giveaway_id", giveawayID).
			Str("winning_entry_id", winner.ID).
			Int64("total_weight", record.TotalWeight).
			Int64("random_value", record.RandomValue).
			Msg("Winner drawn")

		// Fire-and-forget: notification failure never rolls back the draw.
		go s.notifier.NotifyWinner(winner.UserID, giveawayID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// drawWinner performs the weighted uniform draw and persists the audit
// record. The record is written before the status flips, so a crash between
// the two leaves a draw that a retried Close adopts instead of re-drawing.
func (s *giveawayService) drawWinner(ctx context.Context, giveaway *models.Giveaway, entries []models.Entry) (*models.Entry, *models.DrawRecord, error) {
	models.SortEntries(entries)

	var totalWeight int64
	for i := range entries {
		if entries[i].SlotCount < 1 {
			return nil, nil, apperrors.NewDataIntegrityError("ledger entry with non-positive slot count").
				WithDetail("entry_id", entries[i].ID)
		}
		totalWeight += int64(entries[i].SlotCount)
	}
	if totalWeight != int64(giveaway.SoldCount) {
		s.logger.Error().
			Str("giveaway_id", giveaway.ID).
			Int64("ledger_weight", totalWeight).
			Int("sold_count", giveaway.SoldCount).
			Msg("DATA INTEGRITY ALERT: ledger weight does not match sold count")
		return nil, nil, apperrors.NewDataIntegrityError("ledger weight does not match sold count")
	}

	// Crash recovery: a record without the Ended status means a previous
	// close drew but died before the transition. Adopt its outcome.
	if existing, err := s.audit.GetDraw(ctx, giveaway.ID); err == nil {
		winner, err := s.findEntry(entries, existing.WinningEntryID)
		if err != nil {
			return nil, nil, err
		}
		s.logger.Warn().
			Str("giveaway_id", giveaway.ID).
			Str("winning_entry_id", existing.WinningEntryID).
			Msg("Adopting draw record from interrupted close")
		return winner, existing, nil
	} else if !errors.Is(err, repository.ErrDrawRecordNotFound) {
		return nil, nil, apperrors.NewStorageError("get draw record", err)
	}

	randomValue, err := s.random.UniformInt(totalWeight)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "secure random source failed")
	}

	var winner *models.Entry
	var cumulative int64
	for i := range entries {
		cumulative += int64(entries[i].SlotCount)
		if cumulative > randomValue {
			winner = &entries[i]
			break
		}
	}
	if winner == nil {
		// Unreachable while randomValue < totalWeight.
		return nil, nil, apperrors.New(apperrors.ErrCodeInternal, "draw walked past the ledger")
	}

	record := &models.DrawRecord{
		GiveawayID:     giveaway.ID,
		TotalWeight:    totalWeight,
		RandomValue:    randomValue,
		WinningEntryID: winner.ID,
		DrawnAt:        s.clock.Now(),
	}
	if err := s.audit.RecordDraw(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDrawRecordExists) {
			// Lost a race that the lock should have prevented; defer to the
			// stored record.
			existing, getErr := s.audit.GetDraw(ctx, giveaway.ID)
			if getErr != nil {
				return nil, nil, apperrors.NewStorageError("get draw record", getErr)
			}
			winner, findErr := s.findEntry(entries, existing.WinningEntryID)
			if findErr != nil {
				return nil, nil, findErr
			}
			return winner, existing, nil
		}
		return nil, nil, apperrors.NewStorageError("record draw", err)
	}

	return winner, record, nil
}

func (s *giveawayService) findEntry(entries []models.Entry, entryID string) (*models.Entry, error) {
	for i := range entries {
		if entries[i].ID == entryID {
			return &entries[i], nil
		}
	}
	return nil, apperrors.NewDataIntegrityError("draw record references an unknown entry").
		WithDetail("entry_id", entryID)
}

// Redraw is the explicit fresh-draw request. Unlike Close, it refuses with
// AlreadyDrawn when a draw record exists; it never replaces a recorded draw.
func (s *giveawayService) Redraw(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	_, err := s.audit.GetDraw(ctx, giveawayID)
	if err == nil {
		return nil, apperrors.New(apperrors.ErrCodeAlreadyDrawn, "winner already drawn for this giveaway").
			WithDetail("giveaway_id", giveawayID)
	}
	if !errors.Is(err, repository.ErrDrawRecordNotFound) {
		return nil, apperrors.NewStorageError("get draw record", err)
	}
	return s.Close(ctx, giveawayID)
}
