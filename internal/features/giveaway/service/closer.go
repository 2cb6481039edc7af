package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/repository"
)

// Closer is the background sweep that observes expired giveaways and invokes
// the close transition on each. Close itself is idempotent and serialized, so
// overlapping sweeps and multiple instances are safe.
type Closer struct {
	ctx       context.Context
	cancel    context.CancelFunc
	repo      repository.GiveawayRepository
	service   GiveawayService
	clock     Clock
	interval  time.Duration
	inFlight  sync.Map
	semaphore chan struct{}
	wg        sync.WaitGroup
	logger    zerolog.Logger
}

func NewCloser(repo repository.GiveawayRepository, service GiveawayService, clock Clock, interval time.Duration, maxConcurrent int, logger zerolog.Logger) *Closer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Closer{
		ctx:       ctx,
		cancel:    cancel,
		repo:      repo,
		service:   service,
		clock:     clock,
		interval:  interval,
		semaphore: make(chan struct{}, maxConcurrent),
		logger:    logger.With().Str("component", "closer").Logger(),
	}
}

func (c *Closer) Start() {
	c.logger.Info().Dur("interval", c.interval).Msg("Starting closer")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.sweep(); err != nil {
					c.logger.Error().Err(err).Msg("Sweep failed")
				}
			case <-c.ctx.Done():
				return
			}
		}
	}()
}

func (c *Closer) Stop() {
	c.logger.Info().Msg("Stopping closer")
	c.cancel()
	c.wg.Wait()
	c.logger.Info().Msg("Closer stopped")
}

func (c *Closer) sweep() error {
	expired, err := c.repo.ListExpired(c.ctx, c.clock.Now())
	if err != nil {
		return err
	}

	for _, giveawayID := range expired {
		if _, exists := c.inFlight.LoadOrStore(giveawayID, true); exists {
			continue
		}

		// Tracked by the WaitGroup so Stop waits for in-flight closes too.
		c.wg.Add(1)
		go func(id string) {
			defer c.wg.Done()
			defer c.inFlight.Delete(id)

			select {
			case c.semaphore <- struct{}{}:
				defer func() { <-c.semaphore }()
			case <-c.ctx.Done():
				return
			}

			if err := c.closeWithRetry(id); err != nil {
				c.logger.Error().Err(err).Str("giveaway_id", id).Msg("Failed to close expired giveaway")
			}
		}(giveawayID)
	}

	return nil
}

func (c *Closer) closeWithRetry(giveawayID string) error {
	var lastErr error
	for attempt := 1; attempt <= closerMaxRetries; attempt++ {
		_, err := c.service.Close(c.ctx, giveawayID)
		if err == nil {
			return nil
		}
		// Someone else already finished it, or it was cancelled meanwhile.
		if apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition) || apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			return nil
		}
		lastErr = err

		select {
		case <-c.ctx.Done():
			return lastErr
		case <-time.After(closerRetryDelay):
		}
	}
	return lastErr
}
