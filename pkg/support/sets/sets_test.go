// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := Make[string]()
	assert.Len(t, s, 0)
	assert.False(t, s.Has("windows"))

	s.Insert("windows", "plan9", "windows")
	assert.Len(t, s, 2)
	assert.True(t, s.Has("windows"))
	assert.True(t, s.Has("plan9"))

	s = MakeWith("clean", "build_ext")
	assert.Len(t, s, 2)
	assert.True(t, s.Has("clean"))
	assert.False(t, s.Has("install"))
}
