// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout implements the Layout Registry: a closed, statically
// keyed family of LayoutEntry values, one per supported VM release, each a
// bundle of pure functions decoding that release's on-disk struct layout.
// Callers (the Stack Walker) never branch on version; they call the
// capability set uniformly and let the registered LayoutEntry do the
// version-specific work.
//
// Adding a new VMVersion means adding one LayoutEntry to registry.go. It
// never requires a change to this package's Reader interface or to the
// Stack Walker.
package layout

import (
	"fmt"

	"github.com/vmwalk/vmwalk/internal/remote"
)

// Address is re-exported from remote so callers of this package don't need
// to import both.
type Address = remote.Address

// Reader is the minimal read capability a LayoutEntry needs to chase
// pointers it cannot resolve from bytes alone (decoding an iseq's label or
// path, or looking up a line number, may require following child
// pointers). It is satisfied by *remote.Process.
type Reader interface {
	Read(addr Address, buf []byte) error
	ReadN(addr Address, n int) ([]byte, error)
	ReadUint8(addr Address) (uint8, error)
	ReadUint16(addr Address) (uint16, error)
	ReadUint32(addr Address) (uint32, error)
	ReadUint64(addr Address) (uint64, error)
	ReadPointer(addr Address) (Address, error)
}

// RunState classifies a VM thread's execution status.
type RunState uint8

const (
	Runnable RunState = iota
	Waiting
	Other
)

func (s RunState) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case Waiting:
		return "waiting"
	default:
		return "other"
	}
}

// VMVersion tags one supported release. Two versions with identical layout
// may share a LayoutEntry but remain distinct tags for diagnostics.
type VMVersion struct {
	Major, Minor, Patch int
}

func (v VMVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less orders versions by (major, minor, patch), for use in range tables.
func (v VMVersion) Less(o VMVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// LayoutEntry is a stateless, immutable bundle of pure functions decoding
// one VM version's byte layouts. Every function operates on bytes the
// caller has already read via a Reader; Reader is threaded through only
// where chasing a further pointer is unavoidable.
type LayoutEntry struct {
	Version VMVersion

	// RootSize is the number of bytes the caller must read at the root
	// address before calling ThreadListHead.
	RootSize int
	// ThreadSize is the number of bytes the caller must read at a thread
	// address before calling the other Thread* capabilities.
	ThreadSize int
	// FrameSize is the number of bytes the caller must read at a frame
	// address before calling the other Frame* capabilities.
	FrameSize int
	// ISeqSize is the number of bytes the caller must read at an iseq
	// address before calling ISeqLabel, ISeqPath, or ISeqLineForPC.
	ISeqSize int

	// ThreadListHead returns the address of the first thread record (or
	// the currently running execution context), given the root record's
	// bytes.
	ThreadListHead func(root []byte) (Address, bool)

	// NextThread returns the address of the next thread record, given
	// the current one's bytes.
	NextThread func(thread []byte) (Address, bool)

	// ThreadStatus classifies a thread record's run state.
	ThreadStatus func(thread []byte) RunState

	// ThreadID extracts a stable identifier for a thread record.
	ThreadID func(thread []byte) uint64

	// CurrentFramePtr returns the address of the topmost control frame
	// for a thread.
	CurrentFramePtr func(thread []byte) (Address, bool)

	// FrameAdvance returns the address of the caller's frame, or false
	// at the bottom of the stack.
	FrameAdvance func(frame []byte) (Address, bool)

	// FrameISeqPtr returns the address of the frame's instruction
	// sequence, or false for a native (C) frame.
	FrameISeqPtr func(frame []byte) (Address, bool)

	// FramePC returns the frame's program counter (may be the zero
	// Address).
	FramePC func(frame []byte) Address

	// ISeqLabel decodes an iseq's method label.
	ISeqLabel func(iseq []byte, r Reader) (string, error)

	// ISeqPath decodes an iseq's source path.
	ISeqPath func(iseq []byte, r Reader) (string, error)

	// ISeqLineForPC binary-searches the iseq's PC-to-line table.
	ISeqLineForPC func(iseq []byte, pc Address, r Reader) (uint32, error)

	// DecodeVMString decodes a VM string object at addr.
	DecodeVMString func(addr Address, r Reader) (string, error)
}
