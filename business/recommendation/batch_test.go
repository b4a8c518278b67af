package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayurUbarhande0/recommendations-api/domain"
)

func TestGetManyIsolatesFailures(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)
	seedActivity(repo, 3)
	repo.failWith[2] = domain.ErrUnavailable

	svc, _ := newTestService(repo, remote, DefaultConfig())

	batch, err := svc.GetMany(context.Background(), []uint64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 2, batch.Successful)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Items, 3)

	assert.Equal(t, uint64(1), batch.Items[0].UserID)
	require.NotNil(t, batch.Items[0].Result)
	assert.NoError(t, batch.Items[0].Err)

	assert.Equal(t, uint64(2), batch.Items[1].UserID)
	assert.Nil(t, batch.Items[1].Result)
	assert.ErrorIs(t, batch.Items[1].Err, domain.ErrUnavailable)

	assert.Equal(t, uint64(3), batch.Items[2].UserID)
	require.NotNil(t, batch.Items[2].Result)
	assert.NoError(t, batch.Items[2].Err)
}

func TestGetManyPreservesInputOrder(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	repo.delay = 10 * time.Millisecond

	ids := []uint64{9, 3, 7, 1, 5, 2, 8, 4, 6}
	for _, id := range ids {
		seedActivity(repo, id)
	}

	cfg := DefaultConfig()
	cfg.BatchConcurrency = 4

	svc, _ := newTestService(repo, remote, cfg)

	batch, err := svc.GetMany(context.Background(), ids)
	require.NoError(t, err)

	require.Len(t, batch.Items, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, batch.Items[i].UserID)
	}
	assert.Equal(t, len(ids), batch.Successful)
}

func TestGetManyRespectsConcurrencyBound(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	repo.delay = 30 * time.Millisecond

	ids := make([]uint64, 0, 8)
	for id := uint64(1); id <= 8; id++ {
		seedActivity(repo, id)
		ids = append(ids, id)
	}

	cfg := DefaultConfig()
	cfg.BatchConcurrency = 2

	svc, _ := newTestService(repo, remote, cfg)

	batch, err := svc.GetMany(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 8, batch.Successful)

	// at most BatchConcurrency computations ran at once
	assert.LessOrEqual(t, repo.maxInFlight.Load(), int32(2))
}

func TestGetManyEmptyInput(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()

	svc, _ := newTestService(repo, remote, DefaultConfig())

	batch, err := svc.GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, batch.Successful)
	assert.Zero(t, batch.Failed)
	assert.Empty(t, batch.Items)
}

func TestGetManyDuplicateIDsCollapse(t *testing.T) {
	repo := newFakeActivityRepo()
	remote := newFakeRemoteCache()
	seedActivity(repo, 1)
	repo.delay = 20 * time.Millisecond

	svc, _ := newTestService(repo, remote, DefaultConfig())

	batch, err := svc.GetMany(context.Background(), []uint64{1, 1, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, 4, batch.Successful)
	// concurrent misses for the same user share one computation
	assert.Equal(t, int32(1), repo.searchCalls.Load())
}
