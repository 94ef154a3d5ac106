// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuiltFixturesMatchCheckedInJSON guards against the checked-in golden
// fixtures drifting from the Builder that documents how they were made.
// The Builder writes literal offsets rather than reading the v30 family's
// offset table, so a change to that table is caught by the walker's golden
// tests, not by this one.
func TestBuiltFixturesMatchCheckedInJSON(t *testing.T) {
	cases := []struct {
		name string
		got  *Fixture
		path string
	}{
		{"single thread", V30SingleThreadFixture(), "../../walker/testdata/v30_single_thread.json"},
		{"cyclic thread list", V30CyclicThreadListFixture(), "../../walker/testdata/v30_cyclic_thread_list.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			want, err := Load(tc.path)
			require.NoError(t, err)
			assert.Equal(t, want.Version, tc.got.Version)
			assert.Equal(t, want.RootAddr, tc.got.RootAddr)
			assert.Equal(t, want.Image, tc.got.Image)
		})
	}
}
