// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package patcher is the public entry point of the patch-application
// engine. An Engine owns one configured instance of every strategy and
// routes each call through the selector.
package patcher

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wwicak/roo-code/internal/strategy"
	"github.com/wwicak/roo-code/pkg/types"
)

// Config tunes the engine. The zero value is usable: exact matching,
// default cache sizes, and a no-op logger.
type Config struct {
	FuzzyThreshold float64 // Minimum similarity for fuzzy matches (default 1.0)
	NodeThreshold  float64 // Minimum score for structural updates (default 0.6)
	BufferLines    int     // Search window widening around line hints (default 40)
	Workers        int     // Parallel chunk workers (default GOMAXPROCS)

	SimilarityCacheSize int
	TreeCacheSize       int
	HotCacheSize        int
	HotCacheTTL         time.Duration
	ContentCacheSize    int

	Logger zerolog.Logger
}

// Engine applies diffs through the strategy picked for each file. Safe for
// concurrent use; the per-strategy caches tolerate concurrent calls.
type Engine struct {
	set *strategy.Set
	log zerolog.Logger
}

// New builds an engine with its strategy set and caches.
func New(cfg Config) *Engine {
	set := strategy.NewSet(strategy.Config{
		FuzzyThreshold:      cfg.FuzzyThreshold,
		NodeThreshold:       cfg.NodeThreshold,
		BufferLines:         cfg.BufferLines,
		Workers:             cfg.Workers,
		SimilarityCacheSize: cfg.SimilarityCacheSize,
		TreeCacheSize:       cfg.TreeCacheSize,
		HotCacheSize:        cfg.HotCacheSize,
		HotCacheTTL:         cfg.HotCacheTTL,
		ContentCacheSize:    cfg.ContentCacheSize,
		Logger:              cfg.Logger,
	})
	return &Engine{set: set, log: cfg.Logger}
}

// Apply selects a strategy from the options' file stats and applies the
// diff. The model identifier only affects prompt-side behavior, never the
// patch semantics.
func (e *Engine) Apply(model, original, diff string, opts *types.ApplyOptions) types.DiffResult {
	var stats *types.FileStats
	if opts != nil {
		stats = opts.FileStats
	}
	st := e.set.Select(model, stats)
	e.log.Debug().Str("strategy", st.Name()).Msg("selected strategy")
	return st.ApplyDiff(original, diff, opts)
}

// StrategyFor exposes the selector decision without applying anything.
func (e *Engine) StrategyFor(model string, stats *types.FileStats) types.Strategy {
	return e.set.Select(model, stats)
}

// Strategy resolves a strategy by name for explicit overrides; ok is false
// for an unknown name.
func (e *Engine) Strategy(name string) (types.Strategy, bool) {
	return e.set.ByName(name)
}

// Strategies lists every strategy, in selection-priority order. Used to
// assemble tool descriptions for prompt construction.
func (e *Engine) Strategies() []types.Strategy {
	return e.set.All()
}
