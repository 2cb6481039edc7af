package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apperrors "giveaway-market-backend/internal/common/errors"
	"giveaway-market-backend/internal/features/giveaway/models"
	"giveaway-market-backend/internal/features/giveaway/repository/memory"
	tiermodels "giveaway-market-backend/internal/features/tier/models"
	tiermemory "giveaway-market-backend/internal/features/tier/repository/memory"
	"giveaway-market-backend/internal/utils/random"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubRandom returns a fixed value, making the draw deterministic.
type stubRandom struct {
	value int64
}

func (r *stubRandom) UniformInt(n int64) (int64, error) {
	if r.value >= n {
		return n - 1, nil
	}
	return r.value, nil
}

type captureNotifier struct {
	mu       sync.Mutex
	notified []int64
}

func (n *captureNotifier) NotifyWinner(userID int64, giveawayID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, userID)
}

type testEnv struct {
	service  GiveawayService
	repo     *memory.Repository
	tiers    *tiermemory.Repository
	clock    *fakeClock
	random   SecureRandom
	notifier *captureNotifier
}

func newTestEnv(t *testing.T, rnd SecureRandom) *testEnv {
	t.Helper()

	repo := memory.NewRepository()
	tiers := tiermemory.NewRepository()
	clock := newFakeClock(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))
	notifier := &captureNotifier{}
	if rnd == nil {
		rnd = random.NewCryptoSource()
	}

	svc := NewGiveawayService(repo, repo, tiers, clock, rnd, notifier, zerolog.Nop())
	return &testEnv{
		service:  svc,
		repo:     repo,
		tiers:    tiers,
		clock:    clock,
		random:   rnd,
		notifier: notifier,
	}
}

// mustCreateActive creates, publishes and (if needed) approves a giveaway so
// it is ready for purchases.
func (e *testEnv) mustCreateActive(t *testing.T, creatorID int64, capacity int) *models.GiveawayResponse {
	t.Helper()

	created, err := e.service.Create(context.Background(), creatorID, &models.GiveawayCreate{
		Title:    "Test giveaway",
		Value:    100,
		Capacity: capacity,
		Duration: 3600,
	})
	require.NoError(t, err)

	published, err := e.service.Publish(context.Background(), creatorID, created.ID)
	require.NoError(t, err)

	if published.Status == models.GiveawayStatusPendingApproval {
		published, err = e.service.Approve(context.Background(), created.ID)
		require.NoError(t, err)
	}
	require.Equal(t, models.GiveawayStatusActive, published.Status)
	return published
}

func TestCreateRecordsAdmissionOutcome(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierBronze)
	env.tiers.SetTier(2, tiermodels.TierGold)

	bronze, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Bronze", Value: 50, Duration: 3600,
	})
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusDraft, bronze.Status)

	published, err := env.service.Publish(context.Background(), 1, bronze.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusPendingApproval, published.Status)

	gold, err := env.service.Create(context.Background(), 2, &models.GiveawayCreate{
		Title: "Gold", Value: 50, Duration: 3600,
	})
	require.NoError(t, err)

	published, err = env.service.Publish(context.Background(), 2, gold.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusActive, published.Status)
}

func TestCreateUnknownTier(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.service.Create(context.Background(), 99, &models.GiveawayCreate{
		Title: "No tier", Value: 50, Duration: 3600,
	})
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnknownTier))
}

func TestCreateQuotaBoundary(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierBronze) // 2 per month

	for i := 0; i < 2; i++ {
		_, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
			Title: "Quota", Value: 50, Duration: 3600,
		})
		require.NoError(t, err, "creation %d within quota must succeed", i+1)
	}

	_, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Over quota", Value: 50, Duration: 3600,
	})
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeQuotaExceeded))

	// A new calendar month resets the window.
	env.clock.Advance(31 * 24 * time.Hour)
	_, err = env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Next month", Value: 50, Duration: 3600,
	})
	require.NoError(t, err)
}

func TestCreateValueLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierBronze) // max value 100

	_, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Too rich", Value: 150, Duration: 3600,
	})
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeValueLimitExceeded))

	_, err = env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "At limit", Value: 100, Duration: 3600,
	})
	require.NoError(t, err)
}

func TestCreatePaidEntriesGate(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierBronze)
	env.tiers.SetTier(2, tiermodels.TierSilver)

	_, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Paid bronze", Value: 50, EntryCost: 5, Duration: 3600,
	})
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodePaidEntriesDenied))

	_, err = env.service.Create(context.Background(), 2, &models.GiveawayCreate{
		Title: "Paid silver", Value: 50, EntryCost: 5, Duration: 3600,
	})
	require.NoError(t, err)
}

func TestCreateRejectsNegativeCapacity(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)

	_, err := env.service.Create(context.Background(), 1, &models.GiveawayCreate{
		Title: "Negative", Value: 50, Capacity: -1, Duration: 3600,
	})
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
}

func TestDecideUnlimitedTier(t *testing.T) {
	privileges := tiermodels.PrivilegeRecord{
		MaxGiveawaysPerMonth: tiermodels.Unlimited,
		MaxGiveawayValue:     tiermodels.Unlimited,
		PaidEntriesAllowed:   true,
	}

	decision, err := Decide(privileges, 1_000_000, 100, 5_000)
	require.NoError(t, err)
	require.False(t, decision.RequiresApproval)
}

func TestCancelRules(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)

	giveaway := env.mustCreateActive(t, 1, 10)

	// Active with no sales cancels fine.
	cancelled, err := env.service.Cancel(context.Background(), 1, giveaway.ID)
	require.NoError(t, err)
	require.Equal(t, models.GiveawayStatusCancelled, cancelled.Status)

	// Terminal: no way back.
	_, err = env.service.Publish(context.Background(), 1, giveaway.ID)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))

	// With sold entries cancellation is refused.
	second := env.mustCreateActive(t, 1, 10)
	_, err = env.service.Purchase(context.Background(), second.ID, 7, 1)
	require.NoError(t, err)

	_, err = env.service.Cancel(context.Background(), 1, second.ID)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))
}

func TestCancelOnlyByCreator(t *testing.T) {
	env := newTestEnv(t, nil)
	env.tiers.SetTier(1, tiermodels.TierGold)

	giveaway := env.mustCreateActive(t, 1, 10)
	_, err := env.service.Cancel(context.Background(), 2, giveaway.ID)
	require.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
}
