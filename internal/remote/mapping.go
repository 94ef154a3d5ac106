// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

// A Mapping represents one contiguous region of the target's address space,
// as reported by the OS (on Linux, one /proc/<pid>/maps record).
type Mapping struct {
	min, max Address
	perm     Perm
	path     string // backing file, or "" for anonymous mappings
}

// Min returns the lowest virtual address of the mapping.
func (m *Mapping) Min() Address { return m.min }

// Max returns the virtual address of the byte just beyond the mapping.
func (m *Mapping) Max() Address { return m.max }

// Size returns Max-Min.
func (m *Mapping) Size() int64 { return m.max.Sub(m.min) }

// Perm returns the mapping's access permissions.
func (m *Mapping) Perm() Perm { return m.perm }

// Path returns the backing file for the mapping, or "" if anonymous.
func (m *Mapping) Path() string { return m.path }

// Contains reports whether a falls within the mapping.
func (m *Mapping) Contains(a Address) bool {
	return m.min <= a && a < m.max
}

// We assume every mapping starts and ends on a 4K boundary, and divide the
// remaining 64-12=52 bits into levels of a radix tree for fast lookup, the
// same shape the teacher uses for core-file mappings.
type pageTable0 [1 << 10]*Mapping
type pageTable1 [1 << 10]*pageTable0
type pageTable2 [1 << 10]*pageTable1
type pageTable3 [1 << 10]*pageTable2
type pageTable4 [1 << 12]*pageTable3

const pageShift = 12
const pageSize = 1 << pageShift

type mappingIndex struct {
	mappings []*Mapping
	table    pageTable4
}

func (idx *mappingIndex) find(a Address) *Mapping {
	t3 := idx.table[a>>52]
	if t3 == nil {
		return nil
	}
	t2 := t3[a>>42%(1<<10)]
	if t2 == nil {
		return nil
	}
	t1 := t2[a>>32%(1<<10)]
	if t1 == nil {
		return nil
	}
	t0 := t1[a>>22%(1<<10)]
	if t0 == nil {
		return nil
	}
	return t0[a>>12%(1<<10)]
}

// reset replaces the index's contents with a freshly captured mapping list.
// Called on every attach and whenever the caller wants to refresh the
// memory-map snapshot (the target is free to mmap/munmap between samples).
func (idx *mappingIndex) reset(mappings []*Mapping) {
	idx.mappings = mappings
	idx.table = pageTable4{}
	for _, m := range mappings {
		idx.add(m)
	}
}

func (idx *mappingIndex) add(m *Mapping) {
	min := m.min - m.min%pageSize
	max := m.max
	if max%pageSize != 0 {
		max += pageSize - max%pageSize
	}
	for a := min; a < max; a += pageSize {
		i3 := a >> 52
		t3 := idx.table[i3]
		if t3 == nil {
			t3 = new(pageTable3)
			idx.table[i3] = t3
		}
		i2 := a >> 42 % (1 << 10)
		t2 := t3[i2]
		if t2 == nil {
			t2 = new(pageTable2)
			t3[i2] = t2
		}
		i1 := a >> 32 % (1 << 10)
		t1 := t2[i1]
		if t1 == nil {
			t1 = new(pageTable1)
			t2[i1] = t1
		}
		i0 := a >> 22 % (1 << 10)
		t0 := t1[i0]
		if t0 == nil {
			t0 = new(pageTable0)
			t1[i0] = t0
		}
		t0[a>>12%(1<<10)] = m
	}
}
