package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPagesGet_NotFound(t *testing.T) {
	pages := NewPages[string](time.Minute, 100)

	value, found, fresh := pages.Get(Key{Search: "sunset", Page: "1"})

	assert.Empty(t, value)
	assert.False(t, found)
	assert.False(t, fresh)
}

func TestPagesPutAndGet_Fresh(t *testing.T) {
	pages := NewPages[string](time.Minute, 100)

	pages.Put(Key{Search: "sunset", Page: "1"}, "payload")

	value, found, fresh := pages.Get(Key{Search: "sunset", Page: "1"})
	assert.Equal(t, "payload", value)
	assert.True(t, found)
	assert.True(t, fresh)
}

func TestPagesGet_StaleButRetained(t *testing.T) {
	pages := NewPages[string](10*time.Millisecond, 100)

	pages.Put(Key{Search: "sunset", Page: "1"}, "payload")
	time.Sleep(20 * time.Millisecond)

	// a stale entry is still present, just no longer fresh
	value, found, fresh := pages.Get(Key{Search: "sunset", Page: "1"})
	assert.Equal(t, "payload", value)
	assert.True(t, found)
	assert.False(t, fresh)
}

func TestPagesPut_ReplacesWholesale(t *testing.T) {
	pages := NewPages[string](time.Minute, 100)

	key := Key{Search: "sunset", Page: "1"}
	pages.Put(key, "first")
	pages.Put(key, "second")

	value, found, _ := pages.Get(key)
	assert.True(t, found)
	assert.Equal(t, "second", value)
	assert.Equal(t, 1, pages.Len())
}

func TestPagesEviction_FIFOBound(t *testing.T) {
	pages := NewPages[string](time.Minute, 100)

	for i := 0; i < 101; i++ {
		pages.Put(Key{Search: "bulk", Page: fmt.Sprint(i)}, fmt.Sprintf("payload-%d", i))
	}

	assert.Equal(t, 100, pages.Len())

	// first-inserted key is the one evicted
	_, found, _ := pages.Get(Key{Search: "bulk", Page: "0"})
	assert.False(t, found)

	_, found, _ = pages.Get(Key{Search: "bulk", Page: "1"})
	assert.True(t, found)
	_, found, _ = pages.Get(Key{Search: "bulk", Page: "100"})
	assert.True(t, found)
}

func TestPagesEviction_IgnoresRecency(t *testing.T) {
	pages := NewPages[string](time.Minute, 2)

	pages.Put(Key{Search: "a", Page: "1"}, "a1")
	pages.Put(Key{Search: "b", Page: "1"}, "b1")

	// a read does not protect the oldest entry from FIFO eviction
	_, found, _ := pages.Get(Key{Search: "a", Page: "1"})
	assert.True(t, found)

	pages.Put(Key{Search: "c", Page: "1"}, "c1")

	_, found, _ = pages.Get(Key{Search: "a", Page: "1"})
	assert.False(t, found)
	_, found, _ = pages.Get(Key{Search: "b", Page: "1"})
	assert.True(t, found)
}

func TestPagesAnyForSearch_MatchesSearchComponent(t *testing.T) {
	pages := NewPages[string](time.Minute, 100)

	pages.Put(Key{Search: "sunset", Page: "1"}, "sunset-1")
	pages.Put(Key{Search: "sunset", Page: "2"}, "sunset-2")
	pages.Put(Key{Search: "beach", Page: "1"}, "beach-1")

	value, key, ok := pages.AnyForSearch("sunset")
	assert.True(t, ok)
	assert.Equal(t, "sunset-1", value)
	assert.Equal(t, Key{Search: "sunset", Page: "1"}, key)

	_, _, ok = pages.AnyForSearch("mountain")
	assert.False(t, ok)
}

func TestPagesAnyForSearch_IgnoresFreshness(t *testing.T) {
	pages := NewPages[string](10*time.Millisecond, 100)

	pages.Put(Key{Search: "sunset", Page: "1"}, "sunset-1")
	time.Sleep(20 * time.Millisecond)

	value, _, ok := pages.AnyForSearch("sunset")
	assert.True(t, ok)
	assert.Equal(t, "sunset-1", value)
}
