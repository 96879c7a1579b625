// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package diffparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnified(t *testing.T) {
	diff := `--- a/main.go
+++ b/main.go
@@ -1,3 +1,3 @@
 func test() {
-	return true
+	return false
 }
@@ -10,2 +10,3 @@
 x := 1
+y := 2
 z := 3
`

	hunks, err := ParseUnified(diff)
	require.NoError(t, err)
	require.Len(t, hunks, 2)

	first := hunks[0]
	assert.Equal(t, 1, first.StartLine)
	assert.Equal(t, 3, first.EndLine)
	assert.Equal(t, []string{"\treturn true"}, first.Removed)
	assert.Equal(t, []string{"\treturn false"}, first.Added)
	assert.Equal(t, []string{"func test() {", "}"}, first.Context)
	require.Len(t, first.Lines, 4)
	assert.Equal(t, OpContext, first.Lines[0].Op)
	assert.Equal(t, OpRemove, first.Lines[1].Op)
	assert.Equal(t, OpAdd, first.Lines[2].Op)
	assert.Equal(t, OpContext, first.Lines[3].Op)

	second := hunks[1]
	assert.Equal(t, 10, second.StartLine)
	assert.Equal(t, 11, second.EndLine)
	assert.Equal(t, []string{"y := 2"}, second.Added)
}

func TestParseUnifiedHeaderWithoutCounts(t *testing.T) {
	hunks, err := ParseUnified("@@ -5 +5 @@\n-old\n+new\n")
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, 5, hunks[0].StartLine)
	assert.Equal(t, 5, hunks[0].EndLine)
}

func TestParseUnifiedErrors(t *testing.T) {
	tests := []struct {
		name string
		diff string
	}{
		{name: "no hunk header at all", diff: "just some text\nwith lines\n"},
		{name: "malformed header", diff: "@@ not a real header @@\n-x\n+y\n"},
		{name: "bad body prefix", diff: "@@ -1,1 +1,1 @@\n-x\n+y\n*boom\n"},
		{name: "empty diff", diff: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUnified(tt.diff)
			require.Error(t, err)
			var ferr *FormatError
			assert.ErrorAs(t, err, &ferr)
		})
	}
}

func TestParseUnifiedInvariantEndAfterStart(t *testing.T) {
	// A zero-count header still yields EndLine >= StartLine.
	hunks, err := ParseUnified("@@ -4,0 +4,1 @@\n+inserted\n")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, hunks[0].EndLine, hunks[0].StartLine)
}
