package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGet_NotFound(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemory[[]byte](time.Minute, 100)
	require.NoError(t, err)

	body, found, err := cache.Get(ctx, "nonexistent")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, body)
}

func TestMemorySetAndGet_Success(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemory[[]byte](time.Minute, 100)
	require.NoError(t, err)

	expected := []byte(`{"tracks":{"items":[]}}`)

	err = cache.Set(ctx, "test-key", expected)
	require.NoError(t, err)

	body, found, err := cache.Get(ctx, "test-key")

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, expected, body)

	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(0), misses)
}

func TestMemorySet_Overwrites(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemory[string](time.Minute, 0)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "k", "first"))
	require.NoError(t, cache.Set(ctx, "k", "second"))

	value, found, err := cache.Get(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", value)
}

func TestMemoryInvalidate_RemovesEntry(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemory[string](time.Minute, 100)
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "test-key", "value"))
	require.NoError(t, cache.Invalidate(ctx, "test-key"))

	_, found, err := cache.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	cache, err := NewMemory[string](100*time.Millisecond, 100)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cache.TTL())

	require.NoError(t, cache.Set(ctx, "test-key", "value"))

	_, found, err := cache.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.True(t, found)

	time.Sleep(150 * time.Millisecond)

	_, found, err = cache.Get(ctx, "test-key")
	assert.NoError(t, err)
	assert.False(t, found, "entry should expire after its TTL")
}

func TestNewMemory_NegativeSize(t *testing.T) {
	cache, err := NewMemory[[]byte](time.Minute, -1)

	require.Error(t, err)
	assert.Nil(t, cache)
}

func TestNewMemory_Unbounded(t *testing.T) {
	cache, err := NewMemory[[]byte](time.Minute, 0)
	require.NoError(t, err)

	require.NoError(t, cache.Set(context.Background(), "k", []byte("v")))
	_, found, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	t.Run("parameter order does not matter", func(t *testing.T) {
		a := url.Values{}
		a.Set("q", "Believer")
		a.Set("type", "track")
		a.Set("limit", "10")

		b := url.Values{}
		b.Set("limit", "10")
		b.Set("type", "track")
		b.Set("q", "Believer")

		assert.Equal(t, Key("https://api.spotify.com/v1/search", a), Key("https://api.spotify.com/v1/search", b))
	})

	t.Run("different parameters differ", func(t *testing.T) {
		a := url.Values{"q": {"Believer"}}
		b := url.Values{"q": {"Thunder"}}

		assert.NotEqual(t, Key("https://api.spotify.com/v1/search", a), Key("https://api.spotify.com/v1/search", b))
	})

	t.Run("no parameters", func(t *testing.T) {
		assert.Equal(t, "https://api.spotify.com/v1/me", Key("https://api.spotify.com/v1/me", nil))
	})
}
