// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wwicak/roo-code/internal/cache"
	"github.com/wwicak/roo-code/internal/diffparse"
	"github.com/wwicak/roo-code/internal/textsim"
	"github.com/wwicak/roo-code/pkg/types"
)

const (
	// earlyAcceptScore stops the sliding-window scan once a candidate is
	// this similar; further candidates cannot change the outcome enough
	// to matter.
	earlyAcceptScore = 0.95

	// similaritySampleStep controls how often the full edit-distance score
	// is computed during the scan. Positions in between rely on the hash
	// quick-accept alone.
	similaritySampleStep = 3

	defaultBufferLines = 40
	diagnosticContext  = 3
)

// simKey identifies a (window, search-block) pair by content fingerprint.
type simKey struct {
	window string
	search string
}

// SearchReplace applies a single fuzzy SEARCH/REPLACE block, optionally
// anchored by a line-range hint. It makes no size-dependent assumptions and
// is the maximum-compatibility fallback.
type SearchReplace struct {
	fuzzyThreshold float64
	bufferLines    int
	simCache       *cache.FIFO[simKey, float64]
	log            zerolog.Logger
}

var _ types.Strategy = (*SearchReplace)(nil)

// NewSearchReplace builds the strategy with its own similarity cache.
func NewSearchReplace(cfg Config) *SearchReplace {
	return &SearchReplace{
		fuzzyThreshold: cfg.fuzzyThresholdOrDefault(),
		bufferLines:    cfg.bufferLinesOrDefault(),
		simCache:       cache.NewFIFO[simKey, float64](cfg.similarityCacheSizeOrDefault()),
		log:            cfg.Logger.With().Str("strategy", "search_replace").Logger(),
	}
}

func (s *SearchReplace) Name() string { return "search_replace" }

// ApplyDiff extracts one SEARCH/REPLACE block, locates the best-matching
// window in original, and splices the replacement in place.
func (s *SearchReplace) ApplyDiff(original, diff string, opts *types.ApplyOptions) types.DiffResult {
	m := startMeter(opts)

	block, err := diffparse.ParseBlock(diff)
	if err != nil {
		return types.Failed(types.FailInvalidFormat, err.Error())
	}

	search, replace := block.Search, block.Replace
	if diffparse.EveryLineNumbered(search, replace) {
		search = diffparse.StripLineNumbers(search)
		replace = diffparse.StripLineNumbers(replace)
	}

	eol := detectEOL(original)
	lines := splitLines(original)

	if len(search) == 0 {
		return s.insert(m, lines, replace, eol, opts)
	}

	searchText := strings.Join(search, "\n")
	from, to := 0, len(lines)-len(search)
	if to < 0 {
		return s.noMatch(original, searchText, 0)
	}

	if opts != nil && (opts.StartLine != 0 || opts.EndLine != 0) {
		if !validRange(opts.StartLine, opts.EndLine, len(lines)) {
			return types.Failed(types.FailInvalidRange, fmt.Sprintf(
				"line range %d-%d is invalid for a %d-line file", opts.StartLine, opts.EndLine, len(lines)))
		}

		// Try the exact addressed region before widening the window.
		anchor := opts.StartLine - 1
		if anchor <= to {
			window := strings.Join(lines[anchor:anchor+len(search)], "\n")
			if score := s.similarity(window, searchText); score >= s.fuzzyThreshold {
				return s.splice(m, lines, search, replace, eol, anchor, score)
			}
		}
		from = maxInt(0, opts.StartLine-1-s.bufferLines)
		to = minInt(to, opts.EndLine-1+s.bufferLines)
	}

	bestIdx, bestScore := s.scan(lines, search, searchText, from, to)
	if bestIdx < 0 || bestScore < s.fuzzyThreshold {
		return s.noMatch(original, searchText, bestScore)
	}

	s.log.Debug().Int("line", bestIdx+1).Float64("score", bestScore).Msg("matched search block")
	return s.splice(m, lines, search, replace, eol, bestIdx, bestScore)
}

// scan slides a window of the search block's line count across lines
// [from, to]. A murmur hash equal to the search block's hash is a candidate
// filter; the match is only accepted after an exact string comparison.
// Every third position additionally gets a full edit-distance score.
func (s *SearchReplace) scan(lines, search []string, searchText string, from, to int) (int, float64) {
	searchHash := textsim.Hash32(searchText)
	n := len(search)

	bestIdx, bestScore := -1, 0.0
	for i := from; i <= to; i++ {
		window := strings.Join(lines[i:i+n], "\n")
		if textsim.Hash32(window) == searchHash && window == searchText {
			return i, 1.0
		}
		if (i-from)%similaritySampleStep != 0 {
			continue
		}
		score := s.similarity(window, searchText)
		if score > bestScore {
			bestIdx, bestScore = i, score
			if bestScore >= earlyAcceptScore {
				break
			}
		}
	}
	return bestIdx, bestScore
}

// similarity returns the cached edit-distance score for a window/search
// pair, computing and caching it on a miss.
func (s *SearchReplace) similarity(window, searchText string) float64 {
	key := simKey{window: textsim.ContentKey(window), search: textsim.ContentKey(searchText)}
	if score, ok := s.simCache.Get(key); ok {
		return score
	}
	score := textsim.Similarity(window, searchText)
	s.simCache.Add(key, score)
	return score
}

// insert handles an empty search side: a pure insertion that requires an
// explicit single-line insertion point.
func (s *SearchReplace) insert(m *meter, lines, replace []string, eol string, opts *types.ApplyOptions) types.DiffResult {
	if opts == nil || opts.StartLine == 0 || opts.StartLine != opts.EndLine {
		return types.Failed(types.FailInvalidFormat,
			"empty search content requires startLine == endLine (a single insertion point)")
	}
	at := opts.StartLine
	if at < 1 || at > len(lines)+1 {
		return types.Failed(types.FailInvalidRange, fmt.Sprintf(
			"insertion point %d is out of bounds for a %d-line file", at, len(lines)))
	}

	out := make([]string, 0, len(lines)+len(replace))
	out = append(out, lines[:at-1]...)
	out = append(out, replace...)
	out = append(out, lines[at-1:]...)

	return m.finish(types.Succeeded(joinLines(out, eol), len(replace)), 1.0, false)
}

// splice replaces the matched window with the re-indented replacement.
func (s *SearchReplace) splice(m *meter, lines, search, replace []string, eol string, at int, score float64) types.DiffResult {
	matched := lines[at : at+len(search)]
	adjusted := remapIndent(replace, leadingWhitespace(search[0]), leadingWhitespace(matched[0]))

	out := make([]string, 0, len(lines)-len(search)+len(adjusted))
	out = append(out, lines[:at]...)
	out = append(out, adjusted...)
	out = append(out, lines[at+len(search):]...)

	return m.finish(types.Succeeded(joinLines(out, eol), len(adjusted)), score, false)
}

// noMatch builds the rejection diagnostic: achieved vs required score, the
// best-matching window with line numbers, and surrounding context.
func (s *SearchReplace) noMatch(original, searchText string, scanned float64) types.DiffResult {
	window, score, lineStart, lineEnd := textsim.ClosestWindow(original, searchText)
	if scanned > score {
		score = scanned
	}

	res := types.Failed(types.FailNoMatch, fmt.Sprintf(
		"no sufficiently similar match found (best score %.2f, required %.2f)", score, s.fuzzyThreshold))

	if window != "" {
		lines := splitLines(original)
		ctxFrom := maxInt(0, lineStart-1-diagnosticContext)
		ctxTo := minInt(len(lines), lineEnd+diagnosticContext)
		res.Details = fmt.Sprintf(
			"best match at lines %d-%d (similarity %.2f, required %.2f):\n%s\n\nsurrounding context (lines %d-%d):\n%s",
			lineStart, lineEnd, score, s.fuzzyThreshold, window,
			ctxFrom+1, ctxTo, strings.Join(lines[ctxFrom:ctxTo], "\n"))
	}
	return res
}

// ToolDescription documents the SEARCH/REPLACE dialect for prompt assembly.
func (s *SearchReplace) ToolDescription(cwd string) string {
	return fmt.Sprintf(`## apply_diff (search/replace)

Apply a change to an existing file (relative to %s) by describing exactly
what to search for and what to replace it with. The search content must
closely match an existing region of the file; indentation is preserved
relative to the matched block.

Parameters:
- path: file to modify
- diff: one search/replace block
- start_line, end_line (optional): 1-based hint for where the search content lives

Format:
%s
[exact content to find]
%s
[new content]
%s

Example:

test.go
%s
func sum(a, b int) int {
	return a + b
}
%s
func sum(a, b int) int {
	return a + b + 1
}
%s`, cwd,
		diffparse.MarkerSearch, diffparse.MarkerDivider, diffparse.MarkerReplace,
		diffparse.MarkerSearch, diffparse.MarkerDivider, diffparse.MarkerReplace)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
