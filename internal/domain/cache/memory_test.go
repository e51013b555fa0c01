package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcatalog/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func page(name string) *domain.CatalogPage {
	return &domain.CatalogPage{Items: []domain.Show{{Name: name}}, TotalCount: 1}
}

func TestMemoryCache_GetPut(t *testing.T) {
	c := NewMemoryCache()

	c.Put("test_key", page("Test"), time.Hour)

	got, ok := c.Get("test_key")
	require.True(t, ok, "expected item to be in cache")
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Test", got.Items[0].Name)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestMemoryCache_TTLBoundary(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock))

	c.Put("search:all:drama", page("Drama"), 900*time.Second)

	clock.Advance(899 * time.Second)
	_, ok := c.Get("search:all:drama")
	assert.True(t, ok, "entry should be live at T+899")

	clock.Advance(2 * time.Second)
	_, ok = c.Get("search:all:drama")
	assert.False(t, ok, "entry should be expired at T+901")
}

func TestMemoryCache_PutReplacesAndRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock))

	c.Put("k", page("first"), 10*time.Second)
	clock.Advance(8 * time.Second)
	c.Put("k", page("second"), 10*time.Second)
	clock.Advance(8 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got.Items[0].Name)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_EvictExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock))

	c.Put("short", page("short"), time.Second)
	c.Put("long", page("long"), time.Hour)
	clock.Advance(time.Minute)

	assert.Equal(t, 2, c.Len(), "expiry is lazy until evicted")
	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestMemoryCache_Put_Overflow(t *testing.T) {
	c := NewMemoryCache(WithMaxSize(3))

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("key_%d", i), page("x"), time.Hour)
	}
	c.Put("new_key", page("new"), time.Hour)

	assert.Equal(t, 3, c.Len(), "cache should not grow past maxSize")
	_, ok := c.Get("new_key")
	assert.True(t, ok, "the newest entry is never the one evicted")
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%4)
			c.Put(key, page(key), time.Hour)
			_, _ = c.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}

func TestMemoryCache_Sweep(t *testing.T) {
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock))
	c.Put("old", page("old"), time.Second)
	clock.Advance(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Sweep(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
