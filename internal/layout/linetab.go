// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"encoding/binary"
	"sort"

	"github.com/vmwalk/vmwalk/internal/rerr"
)

// maxLineTableEntries caps the number of PC->line entries read for one
// iseq, defending against a corrupted count field the same way RMR caps
// read lengths.
const maxLineTableEntries = 1 << 20

// pcOffset converts an absolute program-counter Address into the
// iseq-relative offset iseq_line_for_pc expects, saturating at 0 if pc
// precedes the iseq's code (which happens transiently while a frame is
// being set up).
func pcOffset(pc, codeStart Address) uint32 {
	if pc < codeStart {
		return 0
	}
	d := pc.Sub(codeStart)
	if d > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(d)
}

// lineForPCViaTable reads an n-entry (start uint32, line uint32) table from
// ptr and looks up pcOffset in it.
func lineForPCViaTable(ptr Address, n uint64, pcOff uint32, r Reader) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	if n > maxLineTableEntries {
		return 0, rerr.ErrCorruptedFrame
	}
	buf, err := r.ReadN(ptr, int(n)*8)
	if err != nil {
		return 0, err
	}
	table := make([]lineEntry, n)
	for i := range table {
		table[i] = lineEntry{
			Start: binary.LittleEndian.Uint32(buf[i*8:]),
			Line:  binary.LittleEndian.Uint32(buf[i*8+4:]),
		}
	}
	return lineForOffset(table, pcOff), nil
}

// lineEntry maps a PC-offset range, starting at Start, to a source line.
// The table for one iseq is sorted by Start.
type lineEntry struct {
	Start uint32
	Line  uint32
}

// lineForOffset implements spec.md §4.2's iseq_line_for_pc binary search:
// "largest entry whose start <= pc_offset". If pc falls before every entry,
// it returns 0 (unknown) rather than erring.
func lineForOffset(table []lineEntry, pcOffset uint32) uint32 {
	i := sort.Search(len(table), func(i int) bool {
		return table[i].Start > pcOffset
	})
	if i == 0 {
		return 0
	}
	return table[i-1].Line
}
