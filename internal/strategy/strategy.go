// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package strategy implements the five patch-application strategies and the
// pure selector that picks between them. Every strategy satisfies
// types.Strategy and returns structured failures instead of errors.
package strategy

import (
	"runtime"
	"strings"
	"time"

	"github.com/wwicak/roo-code/pkg/types"
)

// detectEOL returns the document's line-ending style. Mixed documents get
// "\r\n" when any CRLF is present, matching how the file was most likely
// authored.
func detectEOL(s string) string {
	if strings.Contains(s, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// splitLines normalizes CRLF to LF and splits. The caller re-joins with the
// EOL style detectEOL reported.
func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

func joinLines(lines []string, eol string) string {
	return strings.Join(lines, eol)
}

// leadingWhitespace returns the run of spaces and tabs at the start of s.
func leadingWhitespace(s string) string {
	for i, r := range s {
		if r != ' ' && r != '\t' {
			return s[:i]
		}
	}
	return s
}

// remapIndent shifts every replacement line by the indentation delta between
// the matched block's first line and the search block's first line, so the
// replacement lands at the document's nesting depth while its own relative
// nesting is preserved. Blank lines are left alone.
func remapIndent(replaceLines []string, searchIndent, matchedIndent string) []string {
	if searchIndent == matchedIndent {
		return replaceLines
	}

	out := make([]string, len(replaceLines))
	switch {
	case strings.HasPrefix(matchedIndent, searchIndent):
		extra := matchedIndent[len(searchIndent):]
		for i, line := range replaceLines {
			if strings.TrimSpace(line) == "" {
				out[i] = line
				continue
			}
			out[i] = extra + line
		}
	case strings.HasPrefix(searchIndent, matchedIndent):
		surplus := searchIndent[len(matchedIndent):]
		for i, line := range replaceLines {
			out[i] = strings.TrimPrefix(line, surplus)
		}
	default:
		// Incompatible whitespace styles (tabs vs spaces). Rebase each
		// line onto the matched indentation.
		for i, line := range replaceLines {
			if strings.TrimSpace(line) == "" {
				out[i] = line
				continue
			}
			rest := strings.TrimPrefix(line, searchIndent)
			out[i] = matchedIndent + rest
		}
	}
	return out
}

// meter measures one apply call when metrics collection is requested.
type meter struct {
	enabled bool
	started time.Time
	before  runtime.MemStats
}

func startMeter(opts *types.ApplyOptions) *meter {
	m := &meter{enabled: opts != nil && opts.CollectMetrics}
	if m.enabled {
		runtime.ReadMemStats(&m.before)
		m.started = time.Now()
	}
	return m
}

// finish attaches metrics to a successful result and returns it.
func (m *meter) finish(res types.DiffResult, accuracy float64, cacheHit bool) types.DiffResult {
	if !m.enabled || !res.Success {
		return res
	}
	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	res.Metrics = &types.Metrics{
		Duration:       time.Since(m.started),
		BytesAllocated: after.TotalAlloc - m.before.TotalAlloc,
		Accuracy:       accuracy,
		CacheHit:       cacheHit,
	}
	return res
}

// validRange checks a 1-based inclusive line-range hint against the
// document length.
func validRange(start, end, docLines int) bool {
	return start >= 1 && end >= start && end <= docLines
}
