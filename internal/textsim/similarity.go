// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package textsim provides the normalized-similarity and fast-hashing
// primitives shared by the patch strategies.
package textsim

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Similarity computes the Levenshtein-based similarity ratio between two
// strings. Returns a value between 0.0 (nothing in common) and 1.0 (equal).
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// NormalizedSimilarity compares the two strings after collapsing runs of
// whitespace, so formatting-only differences score 1.0.
func NormalizedSimilarity(a, b string) float64 {
	return Similarity(NormalizeWhitespace(a), NormalizeWhitespace(b))
}

// NormalizeWhitespace trims each line and collapses runs of spaces and tabs
// into a single space.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = CollapseSpaces(strings.TrimSpace(line))
	}
	return strings.Join(lines, "\n")
}

// CollapseSpaces replaces runs of spaces and tabs with a single space.
func CollapseSpaces(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
		} else {
			b.WriteRune(r)
			inSpace = false
		}
	}
	return b.String()
}

// ClosestWindow scans content for the window of len(search lines) most
// similar to search, for diagnostics. Returns the window text, its score,
// and its 1-based inclusive line range. Some window is always returned for
// non-empty inputs, even at score zero, so rejection diagnostics can show
// where the scan looked.
func ClosestWindow(content, search string) (window string, score float64, lineStart, lineEnd int) {
	if search == "" || content == "" {
		return "", 0, 0, 0
	}

	contentLines := strings.Split(content, "\n")
	searchLen := len(strings.Split(search, "\n"))
	if searchLen > len(contentLines) {
		searchLen = len(contentLines)
	}

	bestStart := 0
	var bestScore float64
	for i := 0; i+searchLen <= len(contentLines); i++ {
		candidate := strings.Join(contentLines[i:i+searchLen], "\n")
		if s := Similarity(candidate, search); s > bestScore {
			bestScore = s
			bestStart = i
		}
	}

	window = strings.Join(contentLines[bestStart:bestStart+searchLen], "\n")
	return window, bestScore, bestStart + 1, bestStart + searchLen
}
