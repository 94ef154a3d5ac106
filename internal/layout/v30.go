// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "encoding/binary"

// The v30 family covers the modern, Ractor-capable releases. The root
// record now reaches threads indirectly through the main Ractor; this
// module models that indirection as already resolved by the Anchor
// Locator (the anchor address for this family is the main Ractor's
// execution-context list head), so ThreadListHead's shape is unchanged
// from the caller's point of view.
var v30Offsets = struct {
	rootFirstEC int64

	ecNext   int64
	ecStatus int64
	ecID     int64
	ecCFP    int64

	frameNext int64
	frameISeq int64
	framePC   int64

	iseqLabel      int64
	iseqPath       int64
	iseqCodeStart  int64
	iseqLineTabPtr int64
	iseqLineTabLen int64
}{
	rootFirstEC:    0x10,
	ecNext:         0x00,
	ecStatus:       0x38,
	ecID:           0x40,
	ecCFP:          0x08,
	frameNext:      0x00,
	frameISeq:      0x10,
	framePC:        0x20,
	iseqLabel:      0x20,
	iseqPath:       0x28,
	iseqCodeStart:  0x30,
	iseqLineTabPtr: 0x48,
	iseqLineTabLen: 0x50,
}

const (
	v30ECRunnable = 0
	v30ECWaiting  = 1
	v30ECDead     = 2
)

func v30Entry(v VMVersion) LayoutEntry {
	strHeader := stringHeaderLayout{
		flagsOffset:    0,
		embeddedFlag:   1 << 14,
		embeddedOffset: 0x18,
		embeddedCap:    24,
		heapPtrOffset:  0x20,
		heapLenOffset:  0x18,
	}
	o := v30Offsets
	return LayoutEntry{
		Version:    v,
		RootSize:   0x18,
		ThreadSize: 0x60,
		FrameSize:  0x30,
		ISeqSize:   0x58,

		ThreadListHead: func(root []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(root[o.rootFirstEC:]))
			return a, a != 0
		},
		NextThread: func(thread []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(thread[o.ecNext:]))
			return a, a != 0
		},
		ThreadStatus: func(thread []byte) RunState {
			switch binary.LittleEndian.Uint32(thread[o.ecStatus:]) {
			case v30ECRunnable:
				return Runnable
			case v30ECWaiting:
				return Waiting
			default:
				return Other
			}
		},
		ThreadID: func(thread []byte) uint64 {
			return binary.LittleEndian.Uint64(thread[o.ecID:])
		},
		CurrentFramePtr: func(thread []byte) (Address, bool) {
			a := Address(binary.LittleEndian.Uint64(thread[o.ecCFP:]))
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
