package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheEntryExpiry(t *testing.T) {
	computedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := NewCacheEntry(RecommendationResult{}, computedAt, time.Hour)

	assert.Equal(t, computedAt.Add(time.Hour), entry.ExpiresAt())

	assert.False(t, entry.Expired(computedAt))
	assert.False(t, entry.Expired(computedAt.Add(59*time.Minute)))
	assert.True(t, entry.Expired(computedAt.Add(time.Hour)))
	assert.True(t, entry.Expired(computedAt.Add(2*time.Hour)))
}

func TestCacheEntryRemaining(t *testing.T) {
	computedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := NewCacheEntry(RecommendationResult{}, computedAt, time.Hour)

	assert.Equal(t, 30*time.Minute, entry.Remaining(computedAt.Add(30*time.Minute)))
	assert.LessOrEqual(t, entry.Remaining(computedAt.Add(2*time.Hour)), time.Duration(0))
}

func TestComputationErrorUnwrap(t *testing.T) {
	err := &ComputationError{UserID: 42, Cause: ErrUnavailable}

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "42")

	var compErr *ComputationError
	assert.True(t, errors.As(error(err), &compErr))
	assert.Equal(t, uint64(42), compErr.UserID)
}
