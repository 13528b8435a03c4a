package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "learnhub-backend/pkg/errors"
)

func TestLimiterAllowsUpToCap(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounterStore(), 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, "+919876543210"))
	}

	err := limiter.Allow(ctx, "+919876543210")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeRateLimit))
}

func TestLimiterKeysArePerPhone(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounterStore(), 1, time.Hour)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "+919876543210"))
	require.Error(t, limiter.Allow(ctx, "+919876543210"))

	// A different number has its own window.
	require.NoError(t, limiter.Allow(ctx, "+919812345678"))
}

func TestLimiterWindowExpiry(t *testing.T) {
	store := NewMemoryCounterStore()
	limiter := NewLimiter(store, 2, 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "+919876543210"))
	require.NoError(t, limiter.Allow(ctx, "+919876543210"))
	require.Error(t, limiter.Allow(ctx, "+919876543210"))

	time.Sleep(60 * time.Millisecond)

	require.NoError(t, limiter.Allow(ctx, "+919876543210"))
}

func TestLimiterReset(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounterStore(), 1, time.Hour)
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "+919876543210"))
	require.Error(t, limiter.Allow(ctx, "+919876543210"))

	require.NoError(t, limiter.Reset(ctx, "+919876543210"))
	require.NoError(t, limiter.Allow(ctx, "+919876543210"))
}

func TestLimiterDefaults(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounterStore(), 0, 0)
	assert.Equal(t, 5, limiter.maxAttempts)
	assert.Equal(t, time.Hour, limiter.window)
}
