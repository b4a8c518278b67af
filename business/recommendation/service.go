package recommendation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/MayurUbarhande0/recommendations-api/domain"
	"github.com/MayurUbarhande0/recommendations-api/pkg/logger"
)

// ---- Repository / collaborator interfaces ----

type ActivityRepository interface {
	FetchSearches(ctx context.Context, userID uint64) ([]domain.SearchActivity, error)
	FetchPurchases(ctx context.Context, userID uint64) ([]domain.PurchaseActivity, error)
}

type Engine interface {
	Compute(searches []domain.SearchActivity, purchases []domain.PurchaseActivity) domain.RecommendationResult
}

// LocalCache is the per-process first tier. Implementations must be safe
// for concurrent use.
type LocalCache interface {
	Get(userID uint64) (domain.CacheEntry, bool)
	Set(userID uint64, entry domain.CacheEntry)
	Delete(userID uint64)
}

// RemoteCache is the shared second tier. A connectivity failure on Get or
// Set is degraded to a miss / no-op by the coordinator; Delete failures
// are propagated because invalidation must reach both tiers.
type RemoteCache interface {
	Get(ctx context.Context, userID uint64) (domain.CacheEntry, bool, error)
	Set(ctx context.Context, userID uint64, entry domain.CacheEntry) error
	Delete(ctx context.Context, userID uint64) error
}

type Config struct {
	// distributed-tier freshness window
	RecommendationTTL time.Duration
	// shorter window for users with no activity, so new activity shows up fast
	EmptyResultTTL time.Duration

	// activity store backpressure
	MaxConcurrentFetches int64
	AcquireTimeout       time.Duration

	// batch fan-out bound
	BatchConcurrency int
}

const (
	defaultRecommendationTTL    = time.Hour
	defaultEmptyResultTTL       = 5 * time.Minute
	defaultMaxConcurrentFetches = 100
	defaultAcquireTimeout       = 2 * time.Second
	defaultBatchConcurrency     = 10
)

func DefaultConfig() Config {
	return Config{
		RecommendationTTL:    defaultRecommendationTTL,
		EmptyResultTTL:       defaultEmptyResultTTL,
		MaxConcurrentFetches: defaultMaxConcurrentFetches,
		AcquireTimeout:       defaultAcquireTimeout,
		BatchConcurrency:     defaultBatchConcurrency,
	}
}

// ---- Usecase / Service ----

// Service is the cache coordinator: it answers recommendation lookups from
// the local tier, then the distributed tier, and finally by computing from
// activity data, collapsing concurrent misses for one user into a single
// shared computation.
type Service struct {
	activityRepo ActivityRepository
	engine       Engine
	local        LocalCache
	remote       RemoteCache
	flight       singleflight.Group
	fetchSem     *semaphore.Weighted
	cfg          Config
}

func NewService(
	activityRepo ActivityRepository,
	engine Engine,
	local LocalCache,
	remote RemoteCache,
	cfg Config,
) *Service {
	if cfg.RecommendationTTL <= 0 {
		cfg.RecommendationTTL = defaultRecommendationTTL
	}
	if cfg.EmptyResultTTL <= 0 {
		cfg.EmptyResultTTL = defaultEmptyResultTTL
	}
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = defaultMaxConcurrentFetches
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = defaultAcquireTimeout
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}
	return &Service{
		activityRepo: activityRepo,
		engine:       engine,
		local:        local,
		remote:       remote,
		fetchSem:     semaphore.NewWeighted(cfg.MaxConcurrentFetches),
		cfg:          cfg,
	}
}

// Get returns the recommendation for userID together with the cache tier
// that satisfied it. It never fabricates data: a degraded distributed tier
// falls through to computation, and a failed computation surfaces as a
// *domain.ComputationError shared by every concurrent waiter.
func (s *Service) Get(ctx context.Context, userID uint64) (domain.RecommendationResult, domain.CacheTier, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationResult{}, domain.TierNone, fmt.Errorf("context error: %w", err)
	}

	now := time.Now()

	if entry, ok := s.local.Get(userID); ok && !entry.Expired(now) {
		cacheHitsTotal.WithLabelValues(string(domain.TierLocal)).Inc()
		return entry.Result, domain.TierLocal, nil
	}

	entry, ok, err := s.remote.Get(ctx, userID)
	if err != nil {
		// distributed tier down: degrade to a miss and keep serving
		cacheErrorsTotal.WithLabelValues("get").Inc()
		logger.Warn("distributed cache read failed, treating as miss",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
	} else if ok && !entry.Expired(now) {
		// keep the remaining TTL: the entry carries its own expiry
		s.local.Set(userID, entry)
		cacheHitsTotal.WithLabelValues(string(domain.TierDistributed)).Inc()
		return entry.Result, domain.TierDistributed, nil
	}

	cacheMissesTotal.Inc()

	computed, err := s.computeShared(ctx, userID)
	if err != nil {
		return domain.RecommendationResult{}, domain.TierNone, err
	}

	return computed.Result, domain.TierNone, nil
}

// Invalidate removes any entry for userID from both tiers. Invalidating an
// absent key is a no-op. The distributed delete must succeed for the
// invalidation to be acknowledged.
func (s *Service) Invalidate(ctx context.Context, userID uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	// drop any in-flight computation so the next miss starts fresh
	s.flight.Forget(flightKey(userID))

	s.local.Delete(userID)

	if err := s.remote.Delete(ctx, userID); err != nil {
		cacheErrorsTotal.WithLabelValues("delete").Inc()
		return fmt.Errorf("failed to invalidate distributed cache for user %d: %w", userID, err)
	}

	invalidationsTotal.Inc()

	logger.Debug("cache invalidated",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
	)

	return nil
}

// computeShared collapses concurrent misses for one user into a single
// computation. The computation runs on a detached context so a caller that
// times out stops waiting without cancelling the work for the others; the
// finished result still lands in both caches.
func (s *Service) computeShared(ctx context.Context, userID uint64) (domain.CacheEntry, error) {
	detached := context.WithoutCancel(ctx)

	ch := s.flight.DoChan(flightKey(userID), func() (interface{}, error) {
		return s.compute(detached, userID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.CacheEntry{}, &domain.ComputationError{UserID: userID, Cause: res.Err}
		}
		if res.Shared {
			inflightSharedTotal.Inc()
		}
		return res.Val.(domain.CacheEntry), nil
	case <-ctx.Done():
		return domain.CacheEntry{}, &domain.ComputationError{UserID: userID, Cause: ctx.Err()}
	}
}

// compute fetches activity, runs the engine, and populates both tiers.
func (s *Service) compute(ctx context.Context, userID uint64) (domain.CacheEntry, error) {
	searches, purchases, err := s.fetchActivity(ctx, userID)
	if err != nil {
		return domain.CacheEntry{}, err
	}

	start := time.Now()
	result := s.engine.Compute(searches, purchases)
	computeDuration.Observe(time.Since(start).Seconds())

	ttl := s.cfg.RecommendationTTL
	if result.SearchCount == 0 && result.PurchaseCount == 0 {
		ttl = s.cfg.EmptyResultTTL
	}

	entry := domain.NewCacheEntry(result, time.Now(), ttl)

	if err := s.remote.Set(ctx, userID, entry); err != nil {
		// availability over consistency: the next process simply recomputes
		cacheErrorsTotal.WithLabelValues("set").Inc()
		logger.Warn("distributed cache write failed",
			"trace_id", TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
	}

	s.local.Set(userID, entry)

	return entry, nil
}

// fetchActivity loads both activity streams under the shared access pool.
// When the pool stays full past AcquireTimeout the fetch fails with
// ErrResourceExhausted instead of queuing unboundedly.
func (s *Service) fetchActivity(ctx context.Context, userID uint64) ([]domain.SearchActivity, []domain.PurchaseActivity, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.cfg.AcquireTimeout)
	defer cancel()

	if err := s.fetchSem.Acquire(acquireCtx, 1); err != nil {
		poolExhaustedTotal.Inc()
		return nil, nil, fmt.Errorf("%w: not admitted within %s", domain.ErrResourceExhausted, s.cfg.AcquireTimeout)
	}
	defer s.fetchSem.Release(1)

	var (
		searches  []domain.SearchActivity
		purchases []domain.PurchaseActivity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		searches, err = s.activityRepo.FetchSearches(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = s.activityRepo.FetchPurchases(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return searches, purchases, nil
}

func flightKey(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}
