package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
	"giveaway-market-backend/internal/features/giveaway/repository"
)

type giveawayService struct {
	repo     repository.GiveawayRepository
	audit    repository.AuditLog
	tiers    TierLookup
	clock    Clock
	random   SecureRandom
	notifier NotificationSink
	logger   zerolog.Logger
}

func NewGiveawayService(
	repo repository.GiveawayRepository,
	audit repository.AuditLog,
	tiers TierLookup,
	clock Clock,
	random SecureRandom,
	notifier NotificationSink,
	logger zerolog.Logger,
) GiveawayService {
	return &giveawayService{
		repo:     repo,
		audit:    audit,
		tiers:    tiers,
		clock:    clock,
		random:   random,
		notifier: notifier,
		logger:   logger.With().Str("component", "giveaway_service").Logger(),
	}
}

// realClock is the production Clock.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewRealClock() Clock { return realClock{} }

// Create runs the authoritative admission check and persists the giveaway in
// Draft. Whatever the mobile form validated is advisory; this is the check
// that counts.
func (s *giveawayService) Create(ctx context.Context, creatorID int64, input *models.GiveawayCreate) (*models.GiveawayResponse, error) {
	if input.Capacity < 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeValidation, "capacity must not be negative, got %d", input.Capacity)
	}

	creatorTier, err := s.tiers.TierOf(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	decision, err := s.admit(ctx, creatorID, creatorTier, input.Value, input.EntryCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	giveaway := &models.Giveaway{
		ID:               uuid.New().String(),
		CreatorID:        creatorID,
		Title:            input.Title,
		Description:      input.Description,
		Value:            input.Value,
		EntryCost:        input.EntryCost,
		Capacity:         input.Capacity,
		SoldCount:        0,
		CreatorTier:      creatorTier,
		Duration:         input.Duration,
		RequiresApproval: decision.RequiresApproval,
		Status:           models.GiveawayStatusDraft,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.CreateGiveaway(ctx, giveaway); err != nil {
		return nil, apperrors.NewStorageError("create giveaway", err)
	}

	s.logger.Info().
		Str("giveaway_id", giveaway.ID).
		Int64("creator_id", creatorID).
		Str("tier", string(creatorTier)).
		Bool("requires_approval", decision.RequiresApproval).
		Msg("Giveaway created")

	return giveaway.ToResponse(), nil
}

func (s *giveawayService) GetByID(ctx context.Context, giveawayID string) (*models.GiveawayResponse, error) {
	giveaway, err := s.getGiveaway(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	return giveaway.ToResponse(), nil
}

func (s *giveawayService) ListEntries(ctx context.Context, giveawayID string) ([]models.Entry, error) {
	if _, err := s.getGiveaway(ctx, giveawayID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntries(ctx, giveawayID)
	if err != nil {
		return nil, apperrors.NewStorageError("list entries", err)
	}
	models.SortEntries(entries)
	return entries, nil
}

func (s *giveawayService) GetDrawRecord(ctx context.Context, giveawayID string) (*models.DrawRecord, error) {
	if _, err := s.getGiveaway(ctx, giveawayID); err != nil {
		return nil, err
	}

	record, err := s.audit.GetDraw(ctx, giveawayID)
	if errors.Is(err, repository.ErrDrawRecordNotFound) {
		return nil, apperrors.NewNotFoundError("draw record", giveawayID)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get draw record", err)
	}
	return record, nil
}

func (s *giveawayService) ListByCreator(ctx context.Context, creatorID int64) ([]*models.GiveawayResponse, error) {
	giveaways, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperrors.NewStorageError("list by creator", err)
	}

	responses := make([]*models.GiveawayResponse, 0, len(giveaways))
	for _, giveaway := range giveaways {
		responses = append(responses, giveaway.ToResponse())
	}
	return responses, nil
}

// getGiveaway reads a giveaway and verifies its stored invariants. An
// integrity violation aborts the operation and is logged as an alert.
func (s *giveawayService) getGiveaway(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	giveaway, err := s.repo.GetGiveaway(ctx, giveawayID)
	if errors.Is(err, repository.ErrGiveawayNotFound) {
		return nil, apperrors.NewNotFoundError("giveaway", giveawayID)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("get giveaway", err)
	}

	if err := giveaway.CheckIntegrity(); err != nil {
		s.logger.Error().
			Err(err).
			Str("giveaway_id", giveawayID).
			Msg("DATA INTEGRITY ALERT: stored giveaway violates invariants")
		return nil, err
	}
	return giveaway, nil
}

// withGiveawayLock serializes mutations of one giveaway. The lock is a
// try-lock, so contenders poll until lockWaitTimeout.
func (s *giveawayService) withGiveawayLock(ctx context.Context, giveawayID string, fn func() error) error {
	lockKey := fmt.Sprintf("giveaway:%s", giveawayID)
	deadline := s.clock.Now().Add(lockWaitTimeout)

	for {
		err := s.repo.AcquireLock(ctx, lockKey, lockTTL)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrAlreadyLocked) {
			return apperrors.NewStorageError("acquire lock", err)
		}
		if s.clock.Now().After(deadline) {
			return apperrors.Wrap(err, apperrors.ErrCodeConflict, "giveaway is busy, retry")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
	defer func() {
		if err := s.repo.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Error().Err(err).Str("giveaway_id", giveawayID).Msg("Failed to release giveaway lock")
		}
	}()

	return fn()
}
