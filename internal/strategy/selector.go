// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wwicak/roo-code/pkg/types"
)

// parallelSizeThreshold is the file size above which the chunked parallel
// strategy takes over.
const parallelSizeThreshold = 1 << 20 // 1 MiB

// hybridExtensions is the text/config set served by the smart hybrid
// strategy when the size is known and small enough.
var hybridExtensions = map[string]bool{
	"json": true, "txt": true, "md": true, "yml": true, "yaml": true, "go": true,
}

// Config configures one strategy set. The zero value gets sensible
// defaults; caches are created per strategy instance and live as long as
// the instance does.
type Config struct {
	FuzzyThreshold float64 // Minimum similarity to accept a fuzzy match (default 1.0, exact)
	NodeThreshold  float64 // Minimum structural score to accept an AST update (default 0.6)
	BufferLines    int     // Extra lines searched around a line-range hint (default 40)
	Workers        int     // Parallel chunk workers (default GOMAXPROCS)

	SimilarityCacheSize int           // Search-replace similarity cache (default 256)
	TreeCacheSize       int           // Parsed-tree LRU entries (default 16)
	HotCacheSize        int           // Hybrid hot-cache entries (default 128)
	HotCacheTTL         time.Duration // Hybrid hot-cache entry lifetime (default 5m)
	ContentCacheSize    int           // Hybrid content-identity cache entries (default 64)

	Logger zerolog.Logger
}

func (c Config) fuzzyThresholdOrDefault() float64 {
	if c.FuzzyThreshold > 0 {
		return c.FuzzyThreshold
	}
	return 1.0
}

func (c Config) nodeThresholdOrDefault() float64 {
	if c.NodeThreshold > 0 {
		return c.NodeThreshold
	}
	return 0.6
}

func (c Config) bufferLinesOrDefault() int {
	if c.BufferLines > 0 {
		return c.BufferLines
	}
	return defaultBufferLines
}

func (c Config) similarityCacheSizeOrDefault() int {
	if c.SimilarityCacheSize > 0 {
		return c.SimilarityCacheSize
	}
	return 256
}

func (c Config) treeCacheSizeOrDefault() int {
	if c.TreeCacheSize > 0 {
		return c.TreeCacheSize
	}
	return 16
}

func (c Config) hotCacheSizeOrDefault() int {
	if c.HotCacheSize > 0 {
		return c.HotCacheSize
	}
	return 128
}

func (c Config) hotCacheTTLOrDefault() time.Duration {
	if c.HotCacheTTL > 0 {
		return c.HotCacheTTL
	}
	return 5 * time.Minute
}

func (c Config) contentCacheSizeOrDefault() int {
	if c.ContentCacheSize > 0 {
		return c.ContentCacheSize
	}
	return 64
}

// Set holds one configured instance of every strategy. Caches belong to
// the instances and survive across calls.
type Set struct {
	SearchReplace *SearchReplace
	Unified       *Unified
	Parallel      *Parallel
	AST           *ASTAware
	Hybrid        *SmartHybrid
}

// NewSet builds all five strategies from one config.
func NewSet(cfg Config) *Set {
	return &Set{
		SearchReplace: NewSearchReplace(cfg),
		Unified:       NewUnified(cfg),
		Parallel:      NewParallel(cfg),
		AST:           NewASTAware(cfg),
		Hybrid:        NewSmartHybrid(cfg),
	}
}

// Select is the pure decision function mapping file metadata to a concrete
// strategy. The model identifier is accepted for parity with callers that
// vary prompts per model; it does not influence the decision order.
//
// First match wins:
//  1. size above 1 MiB -> Parallel
//  2. structurally-parseable language with an available parser -> AST
//  3. known size <= 1 MiB, text/config extension -> Smart Hybrid
//  4. known size <= 1 MiB -> Optimized Unified
//  5. no size information -> Search-Replace
func (s *Set) Select(model string, stats *types.FileStats) types.Strategy {
	if stats == nil {
		return s.SearchReplace
	}

	if stats.Size > parallelSizeThreshold {
		return s.Parallel
	}

	language := languageOfStats(stats)
	if parserAvailable(language) {
		return s.AST
	}
	if hybridExtensions[language] {
		return s.Hybrid
	}
	return s.Unified
}

// ByName resolves a strategy by its Name, for explicit overrides.
func (s *Set) ByName(name string) (types.Strategy, bool) {
	for _, st := range s.All() {
		if st.Name() == name {
			return st, true
		}
	}
	return nil, false
}

// All lists the strategies in selection-priority order.
func (s *Set) All() []types.Strategy {
	return []types.Strategy{s.Parallel, s.AST, s.Hybrid, s.Unified, s.SearchReplace}
}

func languageOfStats(stats *types.FileStats) string {
	if stats.Language != "" {
		return strings.ToLower(stats.Language)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(stats.Path), "."))
}
