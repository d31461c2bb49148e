package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheSetGet(t *testing.T) {
	cache := NewQueryCache()

	_, ok := cache.Get("GET /api/rfps")
	assert.False(t, ok)

	cache.Set("GET /api/rfps", []byte(`[{"id":1}]`))
	entry, ok := cache.Get("GET /api/rfps")
	require.True(t, ok)
	assert.Equal(t, []byte(`[{"id":1}]`), entry.Body)
	assert.False(t, entry.FetchedAt.IsZero())
}

func TestQueryCacheInvalidate(t *testing.T) {
	cache := NewQueryCache()
	cache.Set("GET /api/rfps", []byte("a"))
	cache.Set("GET /api/rfps/42", []byte("b"))
	cache.Set("GET /api/notifications", []byte("c"))

	cache.Invalidate("GET /api/rfps/42")
	_, ok := cache.Get("GET /api/rfps/42")
	assert.False(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestQueryCacheInvalidatePrefix(t *testing.T) {
	cache := NewQueryCache()
	cache.Set("GET /api/rfps", []byte("a"))
	cache.Set("GET /api/rfps/42", []byte("b"))
	cache.Set("GET /api/notifications", []byte("c"))

	removed := cache.InvalidatePrefix("GET /api/rfps")

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("GET /api/notifications")
	assert.True(t, ok)
}

func TestQueryCacheNeverExpires(t *testing.T) {
	cache := NewQueryCache()
	cache.Set("GET /api/rfps", []byte("stale but served"))

	entry, ok := cache.Get("GET /api/rfps")
	require.True(t, ok)
	assert.Equal(t, []byte("stale but served"), entry.Body)
}
