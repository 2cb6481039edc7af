package service

import (
	"context"
	"time"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
	tiermodels "giveaway-market-backend/internal/features/tier/models"
	tierpolicy "giveaway-market-backend/internal/features/tier/policy"
)

// Decide is the pure admission rule: given a tier's privileges, a proposed
// giveaway value, the entry cost and the creator's count for the current
// month, it either refuses or returns the admission decision.
func Decide(privileges tiermodels.PrivilegeRecord, proposedValue, entryCost int64, countThisMonth int) (*models.AdmissionDecision, error) {
	if privileges.MaxGiveawaysPerMonth != tiermodels.Unlimited && countThisMonth >= privileges.MaxGiveawaysPerMonth {
		return nil, apperrors.NewQuotaExceededError(privileges.MaxGiveawaysPerMonth, countThisMonth)
	}
	if privileges.MaxGiveawayValue != tiermodels.Unlimited && proposedValue > privileges.MaxGiveawayValue {
		return nil, apperrors.NewValueLimitExceededError(privileges.MaxGiveawayValue, proposedValue)
	}
	if entryCost > 0 && !privileges.PaidEntriesAllowed {
		return nil, apperrors.New(apperrors.ErrCodePaidEntriesDenied, "tier does not allow paid entries").
			WithDetail("entry_cost", entryCost)
	}
	return &models.AdmissionDecision{RequiresApproval: privileges.RequiresApproval}, nil
}

// admit resolves the creator's privileges and current calendar-month count,
// then applies Decide. This runs at the persistence boundary on every create,
// regardless of any client-side pre-check.
func (s *giveawayService) admit(ctx context.Context, creatorID int64, creatorTier tiermodels.TrustTier, proposedValue, entryCost int64) (*models.AdmissionDecision, error) {
	privileges, err := tierpolicy.PrivilegesFor(creatorTier)
	if err != nil {
		return nil, err
	}

	from, to := monthWindow(s.clock.Now())
	count, err := s.repo.CountCreatorGiveaways(ctx, creatorID, from, to)
	if err != nil {
		return nil, apperrors.NewStorageError("count creator giveaways", err)
	}

	return Decide(privileges, proposedValue, entryCost, count)
}

// monthWindow returns [start of now's calendar month, start of next month)
// in UTC.
func monthWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
