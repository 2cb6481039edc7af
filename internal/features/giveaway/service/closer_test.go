package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"giveaway-market-backend/internal/features/giveaway/models"
	tiermodels "giveaway-market-backend/internal/features/tier/models"
)

func TestCloserSweepsExpiredGiveaways(t *testing.T) {
	env := newTestEnv(t, &stubRandom{value: 0})
	env.tiers.SetTier(1, tiermodels.TierGold)

	expired := env.mustCreateActive(t, 1, 10)
	_, err := env.service.Purchase(context.Background(), expired.ID, 7, 2)
	require.NoError(t, err)

	// Past the first giveaway's window; the second one is created after the
	// jump and stays open.
	env.clock.Advance(2 * time.Hour)
	running := env.mustCreateActive(t, 1, 10)

	closer := NewCloser(env.repo, env.service, env.clock, 10*time.Millisecond, 2, zerolog.Nop())
	closer.Start()
	defer closer.Stop()

	require.Eventually(t, func() bool {
		got, err := env.service.GetByID(context.Background(), expired.ID)
		return err == nil && got.Status == models.GiveawayStatusEnded
	}, 2*time.Second, 10*time.Millisecond)

	got, err := env.service.GetByID(context.Background(), expired.ID)
	require.NoError(t, err)
	require.NotNil(t, got.WinnerEntryID)

	still, err := env.service.GetByID(context.Background(), running.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusActive, still.Status)
}

func TestCloserIgnoresAlreadyClosed(t *testing.T) {
	env := newTestEnv(t, &stubRandom{value: 0})
	env.tiers.SetTier(1, tiermodels.TierGold)

	giveaway := env.mustCreateActive(t, 1, 10)
	_, err := env.service.Purchase(context.Background(), giveaway.ID, 7, 1)
	require.NoError(t, err)

	closed, err := env.service.Close(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusEnded, closed.Status)

	env.clock.Advance(2 * time.Hour)

	closer := NewCloser(env.repo, env.service, env.clock, 10*time.Millisecond, 2, zerolog.Nop())
	closer.Start()
	time.Sleep(50 * time.Millisecond)
	closer.Stop()

	record, err := env.service.GetDrawRecord(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, *closed.WinnerEntryID, record.WinningEntryID)
}

// slowCloseService holds the underlying close until released, exposing the
// window between Stop and a close still in flight.
type slowCloseService struct {
	GiveawayService
	entered  chan struct{}
	release  chan struct{}
	once     sync.Once
	finished atomic.Bool
}

func (s *slowCloseService) Close(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	giveaway, err := s.GiveawayService.Close(ctx, giveawayID)
	s.finished.Store(true)
	return giveaway, err
}

func TestCloserStopWaitsForInFlightCloses(t *testing.T) {
	env := newTestEnv(t, &stubRandom{value: 0})
	env.tiers.SetTier(1, tiermodels.TierGold)

	giveaway := env.mustCreateActive(t, 1, 10)
	_, err := env.service.Purchase(context.Background(), giveaway.ID, 7, 1)
	require.NoError(t, err)
	env.clock.Advance(2 * time.Hour)

	slow := &slowCloseService{
		GiveawayService: env.service,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	closer := NewCloser(env.repo, slow, env.clock, 10*time.Millisecond, 2, zerolog.Nop())
	closer.Start()

	select {
	case <-slow.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never picked up the expired giveaway")
	}

	stopped := make(chan struct{})
	go func() {
		closer.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a close was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(slow.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the close finished")
	}
	require.True(t, slow.finished.Load())

	got, err := env.service.GetByID(context.Background(), giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusEnded, got.Status)
}
