// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwicak/roo-code/pkg/types"
)

const jsTwoFunctions = "function a() {\n  return 1;\n}\n\nfunction b() {\n  return 2;\n}\n"

func jsOpts(path string) *types.ApplyOptions {
	return &types.ApplyOptions{FileStats: &types.FileStats{Path: path}}
}

func TestASTUnsupportedLanguage(t *testing.T) {
	a := NewASTAware(Config{})

	res := a.ApplyDiff("print('hi')\n", "@@ -1,1 +1,1 @@\n-print('hi')\n+print('bye')\n", jsOpts("script.py"))

	require.False(t, res.Success)
	assert.Equal(t, types.FailUnsupportedLanguage, res.Kind)
	assert.Contains(t, res.Error, `"py"`)
}

func TestASTUpdateStatement(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return 3;\n"

	res := a.ApplyDiff(jsTwoFunctions, diff, jsOpts("a.js"))

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.Contains(t, res.Content, "return 3;")
	assert.NotContains(t, res.Content, "return 1;")
	assert.Contains(t, res.Content, "function b()", "untouched statements survive")
}

func TestASTInsertStatement(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -4,0 +4,3 @@\n+function c() {\n+  return 0;\n+}\n"

	res := a.ApplyDiff(jsTwoFunctions, diff, jsOpts("a.js"))

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.Contains(t, res.Content, "function c()")
	ci := strings.Index(res.Content, "function c()")
	bi := strings.Index(res.Content, "function b()")
	assert.Less(t, ci, bi, "insertion lands before the following statement")
	assert.Equal(t, 3, res.AppliedLines)
}

func TestASTDeleteStatement(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -5,3 +5,0 @@\n-function b() {\n-  return 2;\n-}\n"

	res := a.ApplyDiff(jsTwoFunctions, diff, jsOpts("a.js"))

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.NotContains(t, res.Content, "function b()")
	assert.Contains(t, res.Content, "function a()")
}

func TestASTRejectsInvalidFragment(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return ((;\n"

	res := a.ApplyDiff(jsTwoFunctions, diff, jsOpts("a.js"))

	require.False(t, res.Success)
	assert.Equal(t, types.FailValidationFailed, res.Kind)
	require.NotEmpty(t, res.Conflicts)
	assert.Contains(t, res.Conflicts[0].Message, "syntax errors")
}

func TestASTRejectsUnparseableOriginal(t *testing.T) {
	a := NewASTAware(Config{})

	res := a.ApplyDiff("function broken( {\n", "@@ -1,1 +1,1 @@\n-x\n+y\n", jsOpts("a.js"))

	require.False(t, res.Success)
	assert.Equal(t, types.FailValidationFailed, res.Kind)
}

func TestASTLowSimilarityUpdateSkipped(t *testing.T) {
	// With the node threshold pushed above the candidate's score the update
	// is skipped with a warning; with nothing matched the result is a miss.
	a := NewASTAware(Config{NodeThreshold: 0.99})
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return 3;\n"

	res := a.ApplyDiff(jsTwoFunctions, diff, jsOpts("a.js"))

	require.False(t, res.Success)
	assert.Equal(t, types.FailNoMatch, res.Kind)
	require.NotEmpty(t, res.Conflicts)
	assert.Equal(t, "warning", res.Conflicts[0].Severity)
	assert.Contains(t, res.Conflicts[0].Message, "below threshold")
}

func TestASTTreeCacheHit(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return 3;\n"
	opts := &types.ApplyOptions{FileStats: &types.FileStats{Path: "a.js"}, CollectMetrics: true}

	first := a.ApplyDiff(jsTwoFunctions, diff, opts)
	second := a.ApplyDiff(jsTwoFunctions, diff, opts)

	require.True(t, first.Success)
	require.True(t, second.Success)
	require.NotNil(t, first.Metrics)
	require.NotNil(t, second.Metrics)
	assert.False(t, first.Metrics.CacheHit)
	assert.True(t, second.Metrics.CacheHit)
	assert.Equal(t, first.Content, second.Content)
}

func TestASTMetricsComplexity(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return 3;\n"
	opts := &types.ApplyOptions{FileStats: &types.FileStats{Path: "a.js"}, CollectMetrics: true}

	res := a.ApplyDiff(jsTwoFunctions, diff, opts)

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	require.NotNil(t, res.Metrics)
	// Two plain function declarations, weight 1 each.
	assert.Equal(t, 2, res.Metrics.Complexity)
	assert.InDelta(t, 1.0, res.Metrics.Accuracy, 1e-9)
}

func TestASTLanguageFieldOverridesExtension(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return 3;\n"
	opts := &types.ApplyOptions{FileStats: &types.FileStats{Path: "snippet.txt", Language: "js"}}

	res := a.ApplyDiff(jsTwoFunctions, diff, opts)

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.Contains(t, res.Content, "return 3;")
}

func TestASTUpdatePreservesCRLF(t *testing.T) {
	a := NewASTAware(Config{})
	original := "function a() {\r\n  return 1;\r\n}\r\n"
	diff := "@@ -2,1 +2,1 @@\n-  return 1;\n+  return 3;\n"

	res := a.ApplyDiff(original, diff, jsOpts("a.js"))

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.Equal(t, "function a() {\r\n  return 3;\r\n}\r\n", res.Content)
	assert.NotContains(t, strings.ReplaceAll(res.Content, "\r\n", ""), "\n",
		"no bare LF sneaks into a CRLF document")
}

func TestASTInsertPreservesCRLF(t *testing.T) {
	a := NewASTAware(Config{})
	original := "function a() {\r\n  return 1;\r\n}\r\n\r\nfunction b() {\r\n  return 2;\r\n}\r\n"
	diff := "@@ -4,0 +4,3 @@\n+function c() {\n+  return 0;\n+}\n"

	res := a.ApplyDiff(original, diff, jsOpts("a.js"))

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.Contains(t, res.Content, "function c() {\r\n  return 0;\r\n}")
	assert.NotContains(t, strings.ReplaceAll(res.Content, "\r\n", ""), "\n")
}

func TestASTUpdateGoFunction(t *testing.T) {
	a := NewASTAware(Config{})
	original := "package main\n\nfunc answer() int {\n\treturn 1\n}\n"
	diff := "@@ -4,1 +4,1 @@\n-\treturn 1\n+\treturn 42\n"

	res := a.ApplyDiff(original, diff, jsOpts("main.go"))

	require.True(t, res.Success, "error: %s / %s", res.Error, res.Details)
	assert.Contains(t, res.Content, "return 42")
	assert.Contains(t, res.Content, "package main")
}

func TestASTHunkSpanningStatementsRejected(t *testing.T) {
	a := NewASTAware(Config{})
	diff := "@@ -2,5 +2,5 @@\n-  return 1;\n+  return 3;\n }\n \n function b() {\n"

	res := a.ApplyDiff(jsTwoFunctions, diff, jsOpts("a.js"))

	require.False(t, res.Success)
	assert.Equal(t, types.FailValidationFailed, res.Kind)
	require.NotEmpty(t, res.Conflicts)
	assert.Contains(t, res.Conflicts[0].Message, "spans multiple top-level statements")
}
