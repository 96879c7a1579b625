// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cache provides the bounded caches owned by the patch strategies:
// an insertion-order (FIFO) cache for similarity scores, plus constructors
// for the recency-based and TTL-based variants built on golang-lru.
//
// Caches are an optimization only. A miss must always be able to recompute
// the identical value a hit would have returned.
package cache

import "sync"

// fifoEntry tracks a value with its insertion order. Order is never
// refreshed on read; eviction removes the oldest-inserted key.
type fifoEntry[V any] struct {
	value V
	order uint64
}

// FIFO is a capacity-bounded cache with oldest-inserted eviction. Reads do
// not refresh an entry's position. Safe for concurrent use; insertion and
// eviction are atomic with respect to the capacity limit.
type FIFO[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	next     uint64
	entries  map[K]fifoEntry[V]
	queue    []K // Keys in insertion order; updates never re-append a key.
}

// NewFIFO creates a FIFO cache holding at most capacity entries.
// A capacity of zero or less disables caching entirely.
func NewFIFO[K comparable, V any](capacity int) *FIFO[K, V] {
	return &FIFO[K, V]{
		capacity: capacity,
		entries:  make(map[K]fifoEntry[V]),
	}
}

// Get returns the cached value for key, if present.
func (c *FIFO[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// Add inserts or replaces the value for key, evicting the oldest-inserted
// entries while the cache is over capacity. Replacing an existing key keeps
// its original insertion order.
func (c *FIFO[K, V]) Add(key K, value V) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.entries[key] = fifoEntry[V]{value: value, order: e.order}
		return
	}

	c.entries[key] = fifoEntry[V]{value: value, order: c.next}
	c.next++
	c.queue = append(c.queue, key)

	for len(c.entries) > c.capacity {
		oldest := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.entries, oldest)
	}
}

// Len reports the number of live entries.
func (c *FIFO[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
