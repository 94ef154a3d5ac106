// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "encoding/binary"

// The v23 family covers the mid-series releases, after the VM split its
// per-thread execution state into a separate execution-context record
// (still one per OS thread in this range, but a distinct allocation with
// its own offsets from the thread record that owns it).
var v23Offsets = struct {
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
	rootFirstEC:    0x20,
	ecNext:         0x00,
	ecStatus:       0x28,
	ecID:           0x30,
	ecCFP:          0x08,
	frameNext:      0x00,
	frameISeq:      0x10,
	framePC:        0x18,
	iseqLabel:      0x18,
	iseqPath:       0x20,
	iseqCodeStart:  0x28,
	iseqLineTabPtr: 0x40,
	iseqLineTabLen: 0x48,
}

const (
	v23ECRunnable = 0
	v23ECWaiting  = 1
	v23ECDead     = 2
)

func v23Entry(v VMVersion) LayoutEntry {
	strHeader := stringHeaderLayout{
		flagsOffset:    0,
		embeddedFlag:   1 << 12,
		embeddedOffset: 0x10,
		embeddedCap:    16,
		heapPtrOffset:  0x18,
		heapLenOffset:  0x10,
	}
	o := v23Offsets
	return LayoutEntry{
		Version:    v,
		RootSize:   0x30,
		ThreadSize: 0x50,
		FrameSize:  0x28,
		ISeqSize:   0x50,

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
			case v23ECRunnable:
				return Runnable
			case v23ECWaiting:
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
