// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anchor

import (
	"encoding/binary"

	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/remote"
)

// pointerSize is the width of a candidate word during the data-segment
// scan. The VM this module targets is 64-bit only in its supported range.
const pointerSize = 8

// maxScanBytesPerMapping bounds how much of a single writable mapping the
// scan reads, so a spuriously huge anonymous mapping (e.g. a large heap
// arena mapped writable) cannot turn attach into a multi-second stall.
const maxScanBytesPerMapping = remote.MaxReadLen

// scanCandidates enumerates every writable mapping in the target, whether
// file-backed or anonymous (it does not restrict itself to the target
// binary or a statically linked runtime object), reads it in one shot, and
// yields each word-aligned uint64 found in it as a candidate anchor value.
// It never allocates more than maxScanBytesPerMapping per mapping,
// mirroring RMR's own read-length cap.
func scanCandidates(proc *remote.Process, yield func(remote.Address) bool) error {
	for _, m := range proc.Mappings() {
		if m.Perm()&remote.Write == 0 {
			continue
		}
		size := m.Size()
		if size > maxScanBytesPerMapping {
			size = maxScanBytesPerMapping
		}
		if size < pointerSize {
			continue
		}
		buf, err := proc.ReadN(m.Min(), int(size))
		if err != nil {
			// A single unreadable segment (e.g. swapped out, or raced
			// with a munmap) does not abort the scan.
			continue
		}
		for off := 0; off+pointerSize <= len(buf); off += pointerSize {
			word := binary.LittleEndian.Uint64(buf[off:])
			if word == 0 {
				continue
			}
			if !yield(remote.Address(word)) {
				return nil
			}
		}
	}
	return nil
}

// trialWalk reports whether candidate, interpreted as a root address under
// entry, produces at least one frame whose iseq path decodes to a non-empty
// string. This is the sole acceptance test for the data-segment scan
// strategy; per spec.md §4.3 the core never accepts an unvalidated guess.
func trialWalk(proc *remote.Process, entry layout.LayoutEntry, candidate remote.Address) bool {
	root, err := proc.ReadN(candidate, entry.RootSize)
	if err != nil {
		return false
	}
	threadAddr, ok := entry.ThreadListHead(root)
	if !ok {
		return false
	}

	const maxThreadsProbed = 64
	for i := 0; i < maxThreadsProbed && threadAddr != 0; i++ {
		thread, err := proc.ReadN(threadAddr, entry.ThreadSize)
		if err != nil {
			return false
		}
		if walkOneFrame(proc, entry, thread) {
			return true
		}
		next, ok := entry.NextThread(thread)
		if !ok {
			break
		}
		threadAddr = next
	}
	return false
}

// walkOneFrame walks a single thread's frame chain, stopping at the first
// frame with a decodable, non-empty path.
func walkOneFrame(proc *remote.Process, entry layout.LayoutEntry, thread []byte) bool {
	frameAddr, ok := entry.CurrentFramePtr(thread)
	if !ok {
		return false
	}

	const maxFramesProbed = 64
	for i := 0; i < maxFramesProbed && frameAddr != 0; i++ {
		frame, err := proc.ReadN(frameAddr, entry.FrameSize)
		if err != nil {
			return false
		}
		iseqAddr, ok := entry.FrameISeqPtr(frame)
		if ok {
			iseq, err := proc.ReadN(iseqAddr, entry.ISeqSize)
			if err == nil {
				if path, err := entry.ISeqPath(iseq, proc); err == nil && path != "" {
					return true
				}
			}
		}
		next, ok := entry.FrameAdvance(frame)
		if !ok {
			return false
		}
		frameAddr = next
	}
	return false
}
