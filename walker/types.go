// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package walker implements the Stack Walker: given a Reader, a LayoutEntry
// and a root Address, it produces a Sample describing every VM thread's
// call stack at one instant. It is the main driver of the extractor;
// everything else (memory reading, per-version layouts, root discovery,
// version identification) exists to feed it.
package walker

import "github.com/vmwalk/vmwalk/internal/layout"

// RunState classifies a VM thread's execution status at sample time.
type RunState = layout.RunState

const (
	Runnable = layout.Runnable
	Waiting  = layout.Waiting
	Other    = layout.Other
)

// Sentinels used for frames with no associated instruction sequence.
const (
	CFunctionMethod = "<c function>"
	UnknownPath     = "<unknown>"
)

// Frame is one activation record in a StackTrace: a method label, the
// source path it belongs to, and a line number (0 if unknown).
type Frame struct {
	MethodName string
	Path       string
	LineNo     uint32
}

// StackTrace is an ordered sequence of Frames, outermost first, innermost
// (top of stack) last. It may be empty but never contains partial frames.
type StackTrace struct {
	Frames    []Frame
	Truncated bool
}

// ThreadState is one VM thread's status and stack at sample time.
type ThreadState struct {
	ThreadID  uint64
	RunState  RunState
	Stack     StackTrace
	Dropped   bool // true if this thread's trace was discarded due to a read error
	DropError error
}

// Sample is the set of ThreadStates for all VM threads at one instant.
type Sample struct {
	Threads           []ThreadState
	TimestampUnixNano int64
}
