package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](4, time.Minute).WithClock(clock.now)
	c.Set("k", "v")
	c.Set("other", "w")

	clock.advance(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.advance(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Size())
}

func TestLRUPurgeAndDelete(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 1, c.Size(), "size is at least one")

	c.Delete("b")
	assert.Equal(t, 0, c.Size())

	c.Set("a", 1)
	c.Purge()
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestJanitorSweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](4, time.Second).WithClock(clock.now)
	c.Set("a", 1)

	j := NewJanitor(nil)
	j.Register(c)
	assert.Equal(t, 0, j.Sweep())

	clock.advance(2 * time.Second)
	assert.Equal(t, 1, j.Sweep())

	j.Start(time.Millisecond)
	j.Stop()
}
