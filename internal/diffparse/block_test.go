// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package diffparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name        string
		diff        string
		wantSearch  []string
		wantReplace []string
		wantMissing []string
	}{
		{
			name:        "well formed block",
			diff:        "<<<<<<< SEARCH\nreturn true;\n=======\nreturn false;\n>>>>>>> REPLACE",
			wantSearch:  []string{"return true;"},
			wantReplace: []string{"return false;"},
		},
		{
			name:        "multi line sections",
			diff:        "<<<<<<< SEARCH\nfunc a() {\n\treturn 1\n}\n=======\nfunc a() {\n\treturn 2\n}\n>>>>>>> REPLACE",
			wantSearch:  []string{"func a() {", "\treturn 1", "}"},
			wantReplace: []string{"func a() {", "\treturn 2", "}"},
		},
		{
			name:        "empty search side",
			diff:        "<<<<<<< SEARCH\n=======\nnew line\n>>>>>>> REPLACE",
			wantSearch:  nil,
			wantReplace: []string{"new line"},
		},
		{
			name:        "empty replace side deletes",
			diff:        "<<<<<<< SEARCH\nold line\n=======\n>>>>>>> REPLACE",
			wantSearch:  []string{"old line"},
			wantReplace: nil,
		},
		{
			name:        "prose around the block is ignored",
			diff:        "Here is the change:\n\n<<<<<<< SEARCH\nx\n=======\ny\n>>>>>>> REPLACE\n\nDone.",
			wantSearch:  []string{"x"},
			wantReplace: []string{"y"},
		},
		{
			name:        "missing divider and replace markers",
			diff:        "<<<<<<< SEARCH\nx\n",
			wantMissing: []string{MarkerDivider, MarkerReplace},
		},
		{
			name:        "missing all markers",
			diff:        "no markers here",
			wantMissing: []string{MarkerSearch, MarkerDivider, MarkerReplace},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := ParseBlock(tt.diff)

			if len(tt.wantMissing) > 0 {
				var berr *BlockError
				require.Error(t, err)
				require.True(t, errors.As(err, &berr))
				assert.Equal(t, tt.wantMissing, berr.Missing)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSearch, block.Search)
			assert.Equal(t, tt.wantReplace, block.Replace)
		})
	}
}

func TestEveryLineNumbered(t *testing.T) {
	numbered := []string{"1 | func a() {", " 2 | \treturn 1", "3 | }"}
	plain := []string{"func a() {", "\treturn 1", "}"}

	assert.True(t, EveryLineNumbered(numbered))
	assert.False(t, EveryLineNumbered(plain))
	assert.False(t, EveryLineNumbered(numbered, plain), "all sections must be numbered")
	assert.False(t, EveryLineNumbered(nil), "no content means no prefixes to strip")
}

func TestStripLineNumbers(t *testing.T) {
	in := []string{"1 | func a() {", "12 | \treturn 1", "103 | }"}
	want := []string{"func a() {", "\treturn 1", "}"}
	assert.Equal(t, want, StripLineNumbers(in))
}
