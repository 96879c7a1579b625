// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFIFOEvictsOldestInserted(t *testing.T) {
	c := NewFIFO[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	// Reading "a" must NOT refresh it; eviction is by insertion order.
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Add("c", 3)

	_, ok = c.Get("a")
	assert.False(t, ok, "oldest-inserted entry should be evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestFIFOUpdateKeepsInsertionOrder(t *testing.T) {
	c := NewFIFO[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("a", 9) // Update, not re-insertion.
	c.Add("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "updating a value must not move it to the back of the queue")

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestFIFOZeroCapacityDisablesCaching(t *testing.T) {
	c := NewFIFO[string, int](0)
	c.Add("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestFIFOConcurrentAccess(t *testing.T) {
	c := NewFIFO[int, int](64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Add(base*1000+j, j)
				c.Get(base*1000 + j)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 64)
}

func TestLRURefreshesOnRead(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)

	// Reading "a" refreshes it, so "b" is now the eviction candidate.
	_, ok := c.Get("a")
	assert.True(t, ok)

	c.Add("c", 3)

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
}

func TestExpiringDropsEntriesAfterTTL(t *testing.T) {
	c := NewExpiring[string, int](8, 20*time.Millisecond)
	c.Add("a", 1)

	_, ok := c.Get("a")
	assert.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get("a")
	assert.False(t, ok, "entry should expire after its TTL")
}
