package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharedcode/premortem"
)

func TestInMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	want := premortem.AuthoritativeLookup{Source: premortem.NIST, Found: true, Reference: "NIST-SP-800-53-R5"}
	require.NoError(t, c.SetStruct(ctx, "k", want, time.Minute))

	var got premortem.AuthoritativeLookup
	ok, err := c.GetStruct(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ok, err = c.GetStruct(ctx, "missing", &got)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Delete(ctx, []string{"k"})
	require.NoError(t, err)
	ok, _ = c.GetStruct(ctx, "k", &got)
	assert.False(t, ok)
}

func TestInMemoryCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetStruct(ctx, "short", 1, time.Second))
	require.NoError(t, c.SetStruct(ctx, "forever", 2, 0))
	require.NoError(t, c.SetStruct(ctx, "skipped", 3, -1))
	assert.Equal(t, 2, c.Count())

	now = now.Add(2 * time.Second)
	var v int
	ok, _ := c.GetStruct(ctx, "short", &v)
	assert.False(t, ok)
	ok, _ = c.GetStruct(ctx, "forever", &v)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Count())
}

func TestInMemoryCacheCapacity(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3)
	for i := 0; i < 10; i++ {
		require.NoError(t, c.SetStruct(ctx, fmt.Sprintf("k%d", i), i, 0))
	}
	assert.Equal(t, 3, c.Count())
}

func TestInMemoryCacheConcurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = c.SetStruct(ctx, key, i, time.Minute)
			var v int
			_, _ = c.GetStruct(ctx, key, &v)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 4, c.Count())
}

func TestNewFromConfig(t *testing.T) {
	c, err := New(premortem.CacheConfig{Type: premortem.NoCache})
	assert.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(premortem.CacheConfig{Type: premortem.InMemoryCache})
	assert.NoError(t, err)
	assert.IsType(t, &InMemoryCache{}, c)

	_, err = New(premortem.CacheConfig{Type: premortem.RedisCache})
	assert.Error(t, err)

	_, err = New(premortem.CacheConfig{Type: "memcached"})
	assert.Error(t, err)
}

func TestInMemoryCacheKeepsRecentlyRead(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(2)
	require.NoError(t, c.SetStruct(ctx, "hot", 1, 0))
	require.NoError(t, c.SetStruct(ctx, "cold", 2, 0))

	var v int
	ok, _ := c.GetStruct(ctx, "hot", &v)
	require.True(t, ok)
	require.NoError(t, c.SetStruct(ctx, "new", 3, 0))

	ok, _ = c.GetStruct(ctx, "hot", &v)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	ok, _ = c.GetStruct(ctx, "cold", &v)
	assert.False(t, ok)
	ok, _ = c.GetStruct(ctx, "new", &v)
	assert.True(t, ok)
}

func TestInMemoryCacheUpdateRefreshesRecency(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(2)
	require.NoError(t, c.SetStruct(ctx, "a", 1, 0))
	require.NoError(t, c.SetStruct(ctx, "b", 2, 0))
	require.NoError(t, c.SetStruct(ctx, "a", 10, 0))
	require.NoError(t, c.SetStruct(ctx, "c", 3, 0))

	var v int
	ok, _ := c.GetStruct(ctx, "a", &v)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	ok, _ = c.GetStruct(ctx, "b", &v)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Count())
}

func TestMRUCache(t *testing.T) {
	m := NewCache[string, int](3)
	for i, k := range []string{"a", "b", "c", "d"} {
		m.Set(k, i)
	}
	assert.Equal(t, 3, m.Count())
	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Get("b")
	m.Set("e", 4)
	_, ok = m.Get("b")
	assert.True(t, ok)
	_, ok = m.Get("c")
	assert.False(t, ok)

	m.Delete("b", "missing")
	assert.Equal(t, 2, m.Count())
	m.Set("f", 5)
	m.Set("g", 6)
	assert.Equal(t, 3, m.Count())
}
