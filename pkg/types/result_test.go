// Copyright (c) 2026 The roo-code authors. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSucceeded(t *testing.T) {
	res := Succeeded("new content\n", 3)

	assert.True(t, res.Success)
	assert.Equal(t, "new content\n", res.Content)
	assert.Equal(t, 3, res.AppliedLines)
	assert.Empty(t, res.Kind)
	assert.Empty(t, res.Error)
}

func TestFailed(t *testing.T) {
	res := Failed(FailNoMatch, "nothing matched")

	assert.False(t, res.Success)
	assert.Equal(t, FailNoMatch, res.Kind)
	assert.Equal(t, "nothing matched", res.Error)
	assert.Empty(t, res.Content)
}
