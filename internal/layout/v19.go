// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "encoding/binary"

// The v19 family covers the VM's earliest supported series, where the
// thread list hangs off the VM root and is followed through each thread's
// next pointer until a null pointer ends it (there is no
// separate execution-context object yet: the thread record itself carries
// the current control-frame pointer).
//
// Offsets below are representative of the generated layout tables
// spec.md §9 describes as out-of-tree build tool output; this module hand
// writes one plausible offset set per version family rather than the full
// generated matrix (see DESIGN.md).
var v19Offsets = struct {
	rootFirstThread int64 // offset of rb_vm_t.living_threads / first thread in root bytes

	threadNext   int64 // offset of next thread in the ring
	threadStatus int64 // offset of status enum
	threadID     int64 // offset of a stable thread identifier
	threadCFP    int64 // offset of the current control frame pointer

	frameNext int64 // offset of the caller's control frame pointer (0 = bottom)
	frameISeq int64 // offset of the associated iseq pointer (0 = C frame)
	framePC   int64 // offset of the frame's program counter

	iseqLabel      int64 // offset of the label VALUE
	iseqPath       int64 // offset of the path VALUE
	iseqCodeStart  int64 // offset of the address of the iseq's first instruction
	iseqLineTabPtr int64 // offset of pointer to the PC->line table
	iseqLineTabLen int64 // offset of the PC->line table's entry count
}{
	rootFirstThread: 0x18,
	threadNext:      0x08,
	threadStatus:    0x10,
	threadID:        0x18,
	threadCFP:       0x20,
	frameNext:       0x00,
	frameISeq:       0x08,
	framePC:         0x10,
	iseqLabel:       0x20,
	iseqPath:        0x28,
	iseqCodeStart:   0x30,
	iseqLineTabPtr:  0x38,
	iseqLineTabLen:  0x40,
}

const (
	v19ThreadRunnable = 0
	v19ThreadStopped  = 1
	v19ThreadKilled   = 2
)

func v19Entry(v VMVersion) LayoutEntry {
	strHeader := stringHeaderLayout{
		flagsOffset:    0,
		embeddedFlag:   1 << 13,
		embeddedOffset: 0x18,
		embeddedCap:    24,
		heapPtrOffset:  0x20,
		heapLenOffset:  0x18,
	}
	o := v19Offsets
	return LayoutEntry{
		Version:    v,
		RootSize:   0x40,
		ThreadSize: 0x40,
		FrameSize:  0x20,
		ISeqSize:   0x48,

		ThreadListHead: func(root []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(root[o.rootFirstThread:]))
			return a, a != 0
		},
		NextThread: func(thread []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(thread[o.threadNext:]))
			return a, a != 0
		},
		ThreadStatus: func(thread []byte) RunState {
			switch binary.LittleEndian.Uint32(thread[o.threadStatus:]) {
			case v19ThreadRunnable:
				return Runnable
			case v19ThreadStopped:
				return Waiting
			default:
				return Other
			}
		},
		ThreadID: func(thread []byte) uint64 {
			return binary.LittleEndian.Uint64(thread[o.threadID:])
		},
		CurrentFramePtr: func(thread []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(thread[o.threadCFP:]))
			return a, a != 0
		},
		FrameAdvance: func(frame []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(frame[o.frameNext:]))
			return a, a != 0
		},
		FrameISeqPtr: func(frame []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(frame[o.frameISeq:]))
			return a, a != 0
		},
		FramePC: func(frame []byte) Address {
			return Address(binary.LittleEndian.Uint64(frame[o.framePC:]))
		},
		ISeqLabel: func(iseq []byte, r Reader) (string, error) {
			addr := Address(binary.LittleEndian.Uint64(iseq[o.iseqLabel:]))
			return decodeVMStringAt(addr, r, strHeader)
		},
		ISeqPath: func(iseq []byte, r Reader) (string, error) {
			addr := Address(binary.LittleEndian.Uint64(iseq[o.iseqPath:]))
			return decodeVMStringAt(addr, r, strHeader)
		},
		ISeqLineForPC: func(iseq []byte, pc Address, r Reader) (uint32, error) {
			codeStart := Address(binary.LittleEndian.Uint64(iseq[o.iseqCodeStart:]))
			ptr := Address(binary.LittleEndian.Uint64(iseq[o.iseqLineTabPtr:]))
			n := binary.LittleEndian.Uint64(iseq[o.iseqLineTabLen:])
			return lineForPCViaTable(ptr, n, pcOffset(pc, codeStart), r)
		},
		DecodeVMString: func(addr Address, r Reader) (string, error) {
			return decodeVMStringAt(addr, r, strHeader)
		},
	}
}
