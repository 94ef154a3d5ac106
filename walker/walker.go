// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package walker

import (
	"fmt"

	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/rerr"
)

// DefaultMaxThreads bounds the number of thread records visited while
// walking the thread list, defending against a corrupted or cyclic list
// the same way RMR bounds a single read's length. Matches spec.md §4.5's
// example limit.
const DefaultMaxThreads = 10000

// DefaultMaxFrameDepth bounds the number of control frames walked per
// thread. A stack deeper than this is vanishingly unlikely in practice;
// hitting the cap truncates the trace rather than looping forever on a
// corrupted frame chain. Matches spec.md §4.5's example limit.
const DefaultMaxFrameDepth = 10000

// Limits bounds a Snapshot call's work, so a corrupted target cannot make
// the walker allocate or loop proportional to attacker-controlled data. The
// zero value is not usable directly; use DefaultLimits().
type Limits struct {
	MaxThreads    int
	MaxFrameDepth int
}

// DefaultLimits returns the spec's example caps.
func DefaultLimits() Limits {
	return Limits{MaxThreads: DefaultMaxThreads, MaxFrameDepth: DefaultMaxFrameDepth}
}

// Reader is the read capability the walker needs: reading the root, thread,
// and frame records themselves, and the further reads the LayoutEntry makes
// while decoding them. It is an alias of layout.Reader (which callers, e.g.
// *remote.Process, already satisfy).
type Reader = layout.Reader

// Snapshot walks every thread reachable from root under entry and returns
// the assembled Sample, implementing spec.md §4.5's algorithm. timestamp is
// the caller-supplied sample time (unix nanoseconds); the walker itself
// never calls a clock, so tests can supply a fixed value.
//
// An error reading the root record itself fails the entire snapshot. Any
// other RMR error encountered while decoding a single thread's frames
// discards that thread's trace (Dropped, with DropError set) without
// affecting the rest of the sample.
func Snapshot(r Reader, entry layout.LayoutEntry, root layout.Address, timestamp int64, limits Limits) (*Sample, error) {
	rootBytes, err := r.ReadN(root, entry.RootSize)
	if err != nil {
		return nil, fmt.Errorf("walker: reading root at %s: %w", root, err)
	}

	sample := &Sample{TimestampUnixNano: timestamp}

	threadAddr, ok := entry.ThreadListHead(rootBytes)
	visited := 0
	for ok && threadAddr != 0 {
		visited++
		if visited > limits.MaxThreads {
			return nil, fmt.Errorf("walker: %w: exceeded %d threads", rerr.ErrCorruptedThreadList, limits.MaxThreads)
		}

		threadBytes, err := r.ReadN(threadAddr, entry.ThreadSize)
		if err != nil {
			sample.Threads = append(sample.Threads, ThreadState{
				Dropped:   true,
				DropError: fmt.Errorf("reading thread at %s: %w", threadAddr, err),
			})
			break // can't find NextThread without the bytes we failed to read
		}

		ts := walkThread(r, entry, threadBytes, limits.MaxFrameDepth)
		sample.Threads = append(sample.Threads, ts)

		threadAddr, ok = entry.NextThread(threadBytes)
	}

	return sample, nil
}

// walkThread decodes one thread's status and stack. Any RMR error partway
// through the frame chain discards the trace built so far and reports the
// thread as Dropped, per spec.md §4.5's partial-failure policy.
func walkThread(r Reader, entry layout.LayoutEntry, threadBytes []byte, maxFrameDepth int) ThreadState {
	ts := ThreadState{
		ThreadID: entry.ThreadID(threadBytes),
		RunState: entry.ThreadStatus(threadBytes),
	}

	var frames []Frame
	truncated := false

	frameAddr, ok := entry.CurrentFramePtr(threadBytes)
	count := 0
	for ok && frameAddr != 0 {
		count++
		if count > maxFrameDepth {
			truncated = true
			break
		}

		frameBytes, err := r.ReadN(frameAddr, entry.FrameSize)
		if err != nil {
			ts.Dropped = true
			ts.DropError = fmt.Errorf("reading frame at %s: %w", frameAddr, err)
			ts.Stack = StackTrace{}
			return ts
		}

		f, err := decodeFrame(r, entry, frameBytes)
		if err != nil {
			ts.Dropped = true
			ts.DropError = err
			ts.Stack = StackTrace{}
			return ts
		}
		frames = append(frames, f)

		frameAddr, ok = entry.FrameAdvance(frameBytes)
	}

	// The VM stores the innermost frame at the lowest address and the
	// walk proceeds from there outward; reverse so the trace reads
	// outermost first, per spec.md §4.5's frame-ordering rule.
	reverseFrames(frames)

	ts.Stack = StackTrace{Frames: frames, Truncated: truncated}
	return ts
}

// decodeFrame decodes a single control frame's method label, path, and
// line number. A null iseq pointer (a native/C frame) yields the
// CFunctionMethod/UnknownPath sentinel pair rather than an error.
func decodeFrame(r Reader, entry layout.LayoutEntry, frameBytes []byte) (Frame, error) {
	iseqAddr, ok := entry.FrameISeqPtr(frameBytes)
	if !ok {
		return Frame{MethodName: CFunctionMethod, Path: UnknownPath}, nil
	}

	iseqBytes, err := r.ReadN(iseqAddr, entry.ISeqSize)
	if err != nil {
		return Frame{}, fmt.Errorf("reading iseq at %s: %w", iseqAddr, err)
	}

	label, err := entry.ISeqLabel(iseqBytes, r)
	if err != nil {
		return Frame{}, fmt.Errorf("decoding iseq label at %s: %w", iseqAddr, err)
	}
	path, err := entry.ISeqPath(iseqBytes, r)
	if err != nil {
		return Frame{}, fmt.Errorf("decoding iseq path at %s: %w", iseqAddr, err)
	}
	pc := entry.FramePC(frameBytes)
	line, err := entry.ISeqLineForPC(iseqBytes, pc, r)
	if err != nil {
		return Frame{}, fmt.Errorf("decoding line for pc %s: %w", pc, err)
	}

	return Frame{MethodName: label, Path: path, LineNo: line}, nil
}

func reverseFrames(f []Frame) {
	for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
		f[i], f[j] = f[j], f[i]
	}
}
