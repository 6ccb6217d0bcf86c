package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProviderRoundTrip(t *testing.T) {
	provider, err := NewMemoryProvider(8)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := provider.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, provider.Del(ctx, "k"))
	_, err = provider.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryProviderTTLExpiry(t *testing.T) {
	provider, err := NewMemoryProvider(8)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	require.NoError(t, provider.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, provider.Set(ctx, "long", []byte("b"), time.Hour))
	require.NoError(t, provider.Set(ctx, "forever", []byte("c"), 0))

	now = now.Add(2 * time.Second)

	_, err = provider.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := provider.Get(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)

	_, err = provider.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryProviderSetNX(t *testing.T) {
	provider, err := NewMemoryProvider(8)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := provider.SetNX(ctx, "k", []byte("first"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = provider.SetNX(ctx, "k", []byte("second"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := provider.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestMemoryProviderSetNXReplacesExpired(t *testing.T) {
	provider, err := NewMemoryProvider(8)
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return now }

	ok, err := provider.SetNX(ctx, "k", []byte("old"), time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(time.Minute)

	ok, err = provider.SetNX(ctx, "k", []byte("new"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := provider.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryProviderEvictsOldest(t *testing.T) {
	provider, err := NewMemoryProvider(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, provider.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, provider.Set(ctx, "c", []byte("3"), 0))

	_, err = provider.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = provider.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestNoopProvider(t *testing.T) {
	var provider NoopProvider
	ctx := context.Background()

	require.NoError(t, provider.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := provider.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := provider.SetNX(ctx, "k", []byte("v"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
