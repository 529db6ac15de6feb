package cache_test

import (
	"meetflow/shared/cache"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type slotKey struct {
	tenant string
	date   string
}

func TestLocal_GetSet(t *testing.T) {
	c := cache.NewLocal[slotKey, []string](2, time.Minute)

	_, ok := c.Get(slotKey{"acme", "2026-03-02"})
	assert.False(t, ok)

	c.Set(slotKey{"acme", "2026-03-02"}, []string{"09:00"})

	got, ok := c.Get(slotKey{"acme", "2026-03-02"})
	assert.True(t, ok)
	assert.Equal(t, []string{"09:00"}, got)

	c.Delete(slotKey{"acme", "2026-03-02"})

	_, ok = c.Get(slotKey{"acme", "2026-03-02"})
	assert.False(t, ok)
}

func TestLocal_Bounded(t *testing.T) {
	c := cache.NewLocal[string, int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLocal_Expires(t *testing.T) {
	c := cache.NewLocal[string, int](4, 20*time.Millisecond)

	c.Set("a", 1)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")

		return !ok
	}, time.Second, 10*time.Millisecond)
}
