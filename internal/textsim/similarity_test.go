// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package textsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical strings", a: "return true;", b: "return true;", want: 1.0},
		{name: "empty left", a: "", b: "x", want: 0.0},
		{name: "empty right", a: "x", b: "", want: 0.0},
		{name: "single char edit", a: "abcd", b: "abce", want: 0.75},
		{name: "completely different", a: "aaaa", b: "zzzz", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNormalizedSimilarity(t *testing.T) {
	// Formatting-only differences score as identical.
	assert.InDelta(t, 1.0, NormalizedSimilarity("  foo( a,  b )", "foo( a, b )"), 1e-9)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc d", NormalizeWhitespace("  a\t b \n\tc  d"))
}

func TestClosestWindow(t *testing.T) {
	content := "alpha\nbeta\ngamma\ndelta\n"

	window, score, start, end := ClosestWindow(content, "beta\ngamme")
	assert.Equal(t, "beta\ngamma", window)
	assert.Greater(t, score, 0.8)
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)
}

func TestClosestWindowNothingSimilar(t *testing.T) {
	// Even when no candidate shares a single character with the search
	// text, a window is still reported so diagnostics have an anchor.
	window, score, start, end := ClosestWindow("function test() {}", "nonexistent content")
	assert.Equal(t, "function test() {}", window)
	assert.Zero(t, score)
	assert.Equal(t, 1, start)
	assert.Equal(t, 1, end)
}

func TestClosestWindowEmptyInputs(t *testing.T) {
	_, score, _, _ := ClosestWindow("", "x")
	assert.Zero(t, score)
	_, score, _, _ = ClosestWindow("x", "")
	assert.Zero(t, score)
}

func TestHash32CandidateFilter(t *testing.T) {
	// Equal inputs hash equal; a one-byte difference must not.
	assert.Equal(t, Hash32("return true;"), Hash32("return true;"))
	assert.NotEqual(t, Hash32("return true;"), Hash32("return false;"))
}

func TestContentKeyShape(t *testing.T) {
	key := ContentKey("some content")
	assert.Len(t, key, 32)
	assert.Equal(t, key, ContentKey("some content"))
	assert.NotEqual(t, key, ContentKey("some other content"))
}

func TestCombineHashesOrderSensitive(t *testing.T) {
	a := CombineHashes([]uint32{1, 2, 3})
	b := CombineHashes([]uint32{3, 2, 1})
	assert.NotEqual(t, a, b)
}
