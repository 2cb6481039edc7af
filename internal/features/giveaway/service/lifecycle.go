package service

import (
	"context"
	"time"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
)

// Publish moves a Draft into circulation: straight to Active when the
// admitting tier needed no approval, to PendingApproval otherwise. The sale
// window starts only when the giveaway goes Active.
func (s *giveawayService) Publish(ctx context.Context, creatorID int64, giveawayID string) (*models.GiveawayResponse, error) {
	var updated *models.Giveaway
	err := s.withGiveawayLock(ctx, giveawayID, func() error {
		giveaway, err := s.getGiveaway(ctx, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.CreatorID != creatorID {
			return apperrors.New(apperrors.ErrCodeForbidden, "only the creator may publish a giveaway")
		}

		target := models.GiveawayStatusActive
		if giveaway.RequiresApproval {
			target = models.GiveawayStatusPendingApproval
		}
		updated, err = s.transition(ctx, giveaway, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(), nil
}

// Approve moves a PendingApproval giveaway to Active. Exposed to moderators
// only; the delivery layer enforces that.
func (s *giveawayService) Approve(ctx context.Context, giveawayID string) (*models.GiveawayResponse, error) {
	var updated *models.Giveaway
	err := s.withGiveawayLock(ctx, giveawayID, func() error {
		giveaway, err := s.getGiveaway(ctx, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.Status != models.GiveawayStatusPendingApproval {
			return apperrors.NewInvalidTransitionError(string(giveaway.Status), string(models.GiveawayStatusActive))
		}
		updated, err = s.transition(ctx, giveaway, models.GiveawayStatusActive)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(), nil
}

// Cancel is allowed from Draft, PendingApproval and Active, but only while no
// entries were sold. Refunding paid entries is a workflow outside this core,
// so a giveaway with sales cannot be cancelled here.
func (s *giveawayService) Cancel(ctx context.Context, creatorID int64, giveawayID string) (*models.GiveawayResponse, error) {
	var updated *models.Giveaway
	err := s.withGiveawayLock(ctx, giveawayID, func() error {
		giveaway, err := s.getGiveaway(ctx, giveawayID)
		if err != nil {
			return err
		}
		if giveaway.CreatorID != creatorID {
			return apperrors.New(apperrors.ErrCodeForbidden, "only the creator may cancel a giveaway")
		}
		if giveaway.SoldCount > 0 {
			return apperrors.New(apperrors.ErrCodeConflict, "cannot cancel a giveaway with sold entries").
				WithDetail("sold_count", giveaway.SoldCount)
		}
		updated, err = s.transition(ctx, giveaway, models.GiveawayStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("giveaway_id", giveawayID).Msg("Giveaway cancelled")
	return updated.ToResponse(), nil
}

// transition applies a legal state change and persists it. Must be called
// under the giveaway lock.
func (s *giveawayService) transition(ctx context.Context, giveaway *models.Giveaway, target models.GiveawayStatus) (*models.Giveaway, error) {
	if !models.CanTransition(giveaway.Status, target) {
		return nil, apperrors.NewInvalidTransitionError(string(giveaway.Status), string(target))
	}

	now := s.clock.Now()
	expectedVersion := giveaway.Version
	giveaway.Status = target
	giveaway.UpdatedAt = now
	if target == models.GiveawayStatusActive {
		giveaway.EndsAt = now.Add(time.Duration(giveaway.Duration) * time.Second)
	}

	if err := s.repo.UpdateGiveaway(ctx, giveaway, expectedVersion); err != nil {
		return nil, apperrors.NewStorageError("update giveaway status", err)
	}
	return giveaway, nil
}
