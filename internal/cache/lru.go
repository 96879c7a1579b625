// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// NewLRU creates a recency-evicting cache: every read refreshes the entry,
// eviction removes the least recently used key. Thread-safe.
func NewLRU[K comparable, V any](capacity int) *lru.Cache[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	c, err := lru.New[K, V](capacity)
	if err != nil {
		// Only reachable with a non-positive capacity, which is
		// normalized above.
		panic(err)
	}
	return c
}

// NewExpiring creates a recency-evicting cache whose entries also expire
// ttl after insertion. Thread-safe.
func NewExpiring[K comparable, V any](capacity int, ttl time.Duration) *expirable.LRU[K, V] {
	if capacity <= 0 {
		capacity = 1
	}
	return expirable.NewLRU[K, V](capacity, nil, ttl)
}
