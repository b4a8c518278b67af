package recommendation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayurUbarhande0/recommendations-api/business/recommender"
	"github.com/MayurUbarhande0/recommendations-api/domain"
	"github.com/MayurUbarhande0/recommendations-api/internal/repository/memory"
)

// ---- fakes ----

type fakeActivityRepo struct {
	mu        sync.Mutex
	searches  map[uint64][]domain.SearchActivity
	purchases map[uint64][]domain.PurchaseActivity
	failWith  map[uint64]error
	delay     time.Duration

	searchCalls   atomic.Int32
	purchaseCalls atomic.Int32
	inFlight      atomic.Int32
	maxInFlight   atomic.Int32
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{
		searches:  make(map[uint64][]domain.SearchActivity),
		purchases: make(map[uint64][]domain.PurchaseActivity),
		failWith:  make(map[uint64]error),
	}
}

func (r *fakeActivityRepo) FetchSearches(ctx context.Context, userID uint64) ([]domain.SearchActivity, error) {
	r.searchCalls.Add(1)

	cur := r.inFlight.Add(1)
	for {
		max := r.maxInFlight.Load()
		if cur <= max || r.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	defer r.inFlight.Add(-1)

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failWith[userID]; ok {
		return nil, err
	}
	return r.searches[userID], nil
}

func (r *fakeActivityRepo) FetchPurchases(ctx context.Context, userID uint64) ([]domain.PurchaseActivity, error) {
	r.purchaseCalls.Add(1)

	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failWith[userID]; ok {
		return nil, err
	}
	return r.purchases[userID], nil
}

type fakeRemoteCache struct {
	mu      sync.Mutex
	entries map[uint64]domain.CacheEntry
	getErr  error
	setErr  error
	delErr  error
	deletes int
}

func newFakeRemoteCache() *fakeRemoteCache {
	return &fakeRemoteCache{entries: make(map[uint64]domain.CacheEntry)}
}

func (c *fakeRemoteCache) Get(ctx context.Context, userID uint64) (domain.CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return domain.CacheEntry{}, false, c.getErr
	}
	entry, ok := c.entries[userID]
	return entry, ok, nil
}

func (c *fakeRemoteCache) Set(ctx context.Context, userID uint64, entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[userID] = entry
	return nil
}

func (c *fakeRemoteCache) Delete(ctx context.Context, userID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delErr != nil {
		return c.delErr
	}
	c.deletes++
	delete(c.entries, userID)
	return nil
}

func (c *fakeRemoteCache) entry(userID uint64) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[userID]
	return entry, ok
}

func newTestService(repo *fakeActivityRepo, remote *fakeRemoteCache, cfg Config) (*Service, *memory.RecommendationCache) {
	local := memory.NewRecommendationCache(64, time.Minute)
	engine := recommender.NewEngine(recommender.DefaultConfig())
	return NewService(repo, engine, local, remote, cfg), local
}

func seedActivity(repo *fakeActivityRepo, userID uint64) {
	repo.searches[userID] = []domain.SearchActivity{
		{UserID: userID, Category: "books", Success: true},
	}
	repo.purchases[userID] = []domain.PurchaseActivity{
		{UserID: userID, ProductCategory: "electronics", Success: true},
		{UserID: userID, ProductCategory: "electronics", Success: true},
	}
}

// ---- Get ----

func TestGetComputesOnColdCache(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)

	svc, _ := newTestService(repo, remote, DefaultConfig())

	result, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.TierNone, tier)
	assert.Equal(t, "electronics", result.RecommendedCategories[0])
	assert.Equal(t, int32(1), repo.searchCalls.Load())
	assert.Equal(t, int32(1), repo.purchaseCalls.Load())

	// both tiers populated
	entry, ok := remote.entry(1)
	require.True(t, ok)
	assert.Equal(t, result, entry.Result)
}

func TestGetServesLocalTierOnRepeat(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)

	svc, _ := newTestService(repo, remote, DefaultConfig())

	first, _, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	second, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.TierLocal, tier)
	assert.Equal(t, first, second)
	// no extra activity store access inside the TTL window
	assert.Equal(t, int32(1), repo.searchCalls.Load())
	assert.Equal(t, int32(1), repo.purchaseCalls.Load())
}

func TestGetDistributedHitPopulatesLocal(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()

	want := domain.RecommendationResult{
		Weightage:             3.1,
		PurchaseWeight:        3.1,
		RecommendedCategories: []string{"electronics"},
		ExploreCategories:     []string{},
		PurchaseCount:         2,
	}
	remote.entries[1] = domain.NewCacheEntry(want, time.Now(), time.Hour)

	svc, local := newTestService(repo, remote, DefaultConfig())

	result, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierDistributed, tier)
	assert.Equal(t, want, result)

	// local tier now holds the entry with its original expiry
	entry, ok := local.Get(1)
	require.True(t, ok)
	assert.Equal(t, want, entry.Result)

	_, tier, err = svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierLocal, tier)

	// activity store never touched
	assert.Equal(t, int32(0), repo.searchCalls.Load())
}

func TestGetTreatsExpiredDistributedEntryAsMiss(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)

	stale := domain.RecommendationResult{RecommendedCategories: []string{"outdated"}}
	remote.entries[1] = domain.NewCacheEntry(stale, time.Now().Add(-2*time.Hour), time.Hour)

	svc, _ := newTestService(repo, remote, DefaultConfig())

	result, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.TierNone, tier)
	assert.NotContains(t, result.RecommendedCategories, "outdated")
	assert.Equal(t, int32(1), repo.searchCalls.Load())
}

func TestGetCollapsesConcurrentMisses(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)
	repo.delay = 50 * time.Millisecond

	svc, _ := newTestService(repo, remote, DefaultConfig())

	const waiters = 20
	results := make([]domain.RecommendationResult, waiters)
	errs := make([]error, waiters)

	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			results[i], _, errs[i] = svc.Get(context.Background(), 1)
		}()
	}
	wg.Wait()

	for i := 0; i < waiters; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	// exactly one activity store query despite N concurrent misses
	assert.Equal(t, int32(1), repo.searchCalls.Load())
	assert.Equal(t, int32(1), repo.purchaseCalls.Load())
}

func TestGetSharesFailureWithAllWaiters(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	repo.failWith[7] = domain.ErrUnavailable
	repo.delay = 20 * time.Millisecond

	svc, _ := newTestService(repo, remote, DefaultConfig())

	const waiters = 10
	errs := make([]error, waiters)

	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			_, _, errs[i] = svc.Get(context.Background(), 7)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)

		var compErr *domain.ComputationError
		require.ErrorAs(t, err, &compErr)
		assert.Equal(t, uint64(7), compErr.UserID)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	}

	assert.Equal(t, int32(1), repo.searchCalls.Load())
}

func TestGetDegradesWhenDistributedCacheDown(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)
	remote.getErr = errors.New("connection refused")
	remote.setErr = errors.New("connection refused")

	svc, local := newTestService(repo, remote, DefaultConfig())

	result, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierNone, tier)
	assert.Equal(t, "electronics", result.RecommendedCategories[0])

	// local tier still populated, so the next call avoids recompute
	_, ok := local.Get(1)
	assert.True(t, ok)
}

func TestGetCachesEmptyResultWithShortTTL(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()

	cfg := DefaultConfig()
	cfg.RecommendationTTL = time.Hour
	cfg.EmptyResultTTL = 5 * time.Minute

	svc, _ := newTestService(repo, remote, cfg)

	result, _, err := svc.Get(context.Background(), 42)
	require.NoError(t, err)

	assert.Zero(t, result.Weightage)
	assert.Empty(t, result.RecommendedCategories)

	entry, ok := remote.entry(42)
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, entry.TTL)
}

func TestGetFailsFastWhenPoolExhausted(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)
	seedActivity(repo, 2)
	repo.delay = 300 * time.Millisecond

	cfg := DefaultConfig()
	cfg.MaxConcurrentFetches = 1
	cfg.AcquireTimeout = 30 * time.Millisecond

	svc, _ := newTestService(repo, remote, cfg)

	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Get(context.Background(), 1)
		done <- err
	}()

	// let the first computation claim the only permit
	time.Sleep(50 * time.Millisecond)

	_, _, err := svc.Get(context.Background(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResourceExhausted)

	require.NoError(t, <-done)
}

func TestGetCallerTimeoutDoesNotCancelComputation(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)
	repo.delay = 100 * time.Millisecond

	svc, _ := newTestService(repo, remote, DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := svc.Get(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the shared computation keeps running and still populates the caches
	assert.Eventually(t, func() bool {
		_, ok := remote.entry(1)
		return ok
	}, time.Second, 10*time.Millisecond)

	_, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierLocal, tier)
	assert.Equal(t, int32(1), repo.searchCalls.Load())
}

// ---- Invalidate ----

func TestInvalidateForcesFreshComputation(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)

	svc, local := newTestService(repo, remote, DefaultConfig())

	_, _, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.searchCalls.Load())

	require.NoError(t, svc.Invalidate(context.Background(), 1))

	_, ok := local.Get(1)
	assert.False(t, ok)
	_, ok = remote.entry(1)
	assert.False(t, ok)

	_, tier, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TierNone, tier)
	assert.Equal(t, int32(2), repo.searchCalls.Load())
}

func TestInvalidateAbsentKeyIsNoop(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()

	svc, _ := newTestService(repo, remote, DefaultConfig())

	assert.NoError(t, svc.Invalidate(context.Background(), 99))
}

func TestInvalidateFailsWhenDistributedDeleteFails(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	remote.delErr = errors.New("connection refused")

	svc, _ := newTestService(repo, remote, DefaultConfig())

	err := svc.Invalidate(context.Background(), 1)
	require.Error(t, err)
}
