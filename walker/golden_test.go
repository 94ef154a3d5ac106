// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package walker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/rerr"
	"github.com/vmwalk/vmwalk/internal/testutil"
)

// TestGoldenSingleThreadFixture walks the golden single-thread fixture and
// checks it against its known-by-inspection result: a two-frame stack,
// outermost first.
func TestGoldenSingleThreadFixture(t *testing.T) {
	f, err := testutil.Load("testdata/v30_single_thread.json")
	require.NoError(t, err)

	r, err := f.Reader()
	require.NoError(t, err)
	entry, err := layout.Lookup(f.VMVersion())
	require.NoError(t, err)
	root, err := f.RootAddress()
	require.NoError(t, err)

	s, err := Snapshot(r, entry, root, 0, DefaultLimits())
	require.NoError(t, err)
	require.Len(t, s.Threads, 1)

	th := s.Threads[0]
	require.False(t, th.Dropped)
	require.Len(t, th.Stack.Frames, 2)
	assert.Equal(t, "do_work", th.Stack.Frames[0].MethodName)
	assert.Equal(t, "app.rb", th.Stack.Frames[0].Path)
	assert.Equal(t, CFunctionMethod, th.Stack.Frames[1].MethodName)
}

// TestGoldenSingleThreadFixtureIsIdempotent walks the same fixture twice
// and asserts the results are identical, since the underlying memory
// image never changes between the two reads: a quiescent target's
// repeated snapshots must agree.
func TestGoldenSingleThreadFixtureIsIdempotent(t *testing.T) {
	f, err := testutil.Load("testdata/v30_single_thread.json")
	require.NoError(t, err)
	r, err := f.Reader()
	require.NoError(t, err)
	entry, err := layout.Lookup(f.VMVersion())
	require.NoError(t, err)
	root, err := f.RootAddress()
	require.NoError(t, err)

	s1, err := Snapshot(r, entry, root, 1, DefaultLimits())
	require.NoError(t, err)
	s2, err := Snapshot(r, entry, root, 1, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, s1.Threads, s2.Threads)
}

// TestGoldenCyclicThreadListHitsCap walks a 2-node cyclic execution-context
// list and checks the walker gives up after a bounded number of visits
// instead of looping forever, surfacing rerr.ErrCorruptedThreadList.
func TestGoldenCyclicThreadListHitsCap(t *testing.T) {
	f, err := testutil.Load("testdata/v30_cyclic_thread_list.json")
	require.NoError(t, err)
	r, err := f.Reader()
	require.NoError(t, err)
	entry, err := layout.Lookup(f.VMVersion())
	require.NoError(t, err)
	root, err := f.RootAddress()
	require.NoError(t, err)

	limits := Limits{MaxThreads: 8, MaxFrameDepth: DefaultMaxFrameDepth}
	_, err = Snapshot(r, entry, root, 0, limits)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rerr.ErrCorruptedThreadList))
}
