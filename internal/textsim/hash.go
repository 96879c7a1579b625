// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package textsim

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Hash32 returns a fast non-cryptographic hash of s. Equal hashes are a
// candidate filter, not a proof of equality; callers must confirm with an
// exact comparison before treating two strings as identical.
func Hash32(s string) uint32 {
	return murmur3.Sum32([]byte(s))
}

// Hash64 returns a 64-bit murmur hash of s.
func Hash64(s string) uint64 {
	return murmur3.Sum64([]byte(s))
}

// ContentKey returns a 128-bit content fingerprint of s, rendered as a
// fixed-width hex string suitable for cache keys.
func ContentKey(s string) string {
	h1, h2 := murmur3.Sum128([]byte(s))
	return fmt.Sprintf("%016x%016x", h1, h2)
}

// CombineHashes folds a sequence of hashes into one value, order-sensitive.
func CombineHashes(hashes []uint32) uint64 {
	const prime = 1099511628211
	acc := uint64(14695981039346656037)
	for _, h := range hashes {
		acc = (acc ^ uint64(h)) * prime
	}
	return acc
}
