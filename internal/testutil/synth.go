// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testutil

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Builder assembles a synthetic memory image byte-by-byte, in the v30
// family's field layout, the same role the teacher's testdata/testprogs
// source files play: a small known program (here, a small known set of
// interpreter records) whose expected walk result is obvious by
// inspection. walker/testdata/*.json were produced by a Builder like this
// one; it is kept in-tree so a fixture can be regenerated or a new one
// added without hand-computing byte offsets again.
type Builder struct {
	regions map[uint64][]byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{regions: map[uint64][]byte{}} }

// Region reserves a zeroed region of n bytes at addr and returns it for
// in-place field writes.
func (b *Builder) Region(addr uint64, n int) []byte {
	r := make([]byte, n)
	b.regions[addr] = r
	return r
}

// PutUint64 writes v as a little-endian uint64 into the region at addr,
// at the given byte offset.
func PutUint64(region []byte, offset int, v uint64) {
	binary.LittleEndian.PutUint64(region[offset:], v)
}

// PutUint32 writes v as a little-endian uint32 into the region at addr,
// at the given byte offset.
func PutUint32(region []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(region[offset:], v)
}

// PutCString copies s plus a trailing NUL into region at offset.
func PutCString(region []byte, offset int, s string) {
	copy(region[offset:], s)
	region[offset+len(s)] = 0
}

// Fixture assembles the Builder's regions into a Fixture with the given
// description, version and root address.
func (b *Builder) Fixture(description string, version fixtureVersion, rootAddr uint64) *Fixture {
	image := make(map[string]string, len(b.regions))
	for addr, data := range b.regions {
		image[hexAddr(addr)] = hex.EncodeToString(data)
	}
	return &Fixture{
		Description: description,
		Version:     version,
		RootAddr:    fixtureAddress(hexAddr(rootAddr)),
		Image:       image,
	}
}

func hexAddr(addr uint64) string {
	return fmt.Sprintf("0x%x", addr)
}

// V30SingleThreadFixture rebuilds the same image stored in
// walker/testdata/v30_single_thread.json: one thread with a Ruby frame
// (do_work at app.rb) calling into a C frame.
func V30SingleThreadFixture() *Fixture {
	b := NewBuilder()

	root := b.Region(0x1000, 0x18)
	PutUint64(root, 0x10, 0x2000) // rootFirstEC

	thread := b.Region(0x2000, 0x60)
	PutUint32(thread, 0x38, 0)       // ecStatus: runnable
	PutUint64(thread, 0x40, 42)      // ecID
	PutUint64(thread, 0x08, 0x3100)  // ecCFP: top of stack

	inner := b.Region(0x3100, 0x30) // C frame, top of stack
	PutUint64(inner, 0x00, 0x3000)  // frameNext
	PutUint64(inner, 0x10, 0)       // frameISeq: null

	outer := b.Region(0x3000, 0x30) // Ruby frame, bottom of stack
	PutUint64(outer, 0x00, 0)       // frameNext: bottom
	PutUint64(outer, 0x10, 0x4000)  // frameISeq
	PutUint64(outer, 0x20, 100)     // framePC

	iseq := b.Region(0x4000, 0x58)
	PutUint64(iseq, 0x20, 0x5000) // iseqLabel
	PutUint64(iseq, 0x28, 0x5100) // iseqPath

	label := b.Region(0x5000, 0x30)
	PutUint64(label, 0, 1<<14) // embedded flag
	PutCString(label, 0x18, "do_work")

	path := b.Region(0x5100, 0x30)
	PutUint64(path, 0, 1<<14)
	PutCString(path, 0x18, "app.rb")

	return b.Fixture(
		"one thread, one Ruby frame (do_work at app.rb) calling into a native/C frame, v30 family layout",
		fixtureVersion{Major: 3, Minor: 2, Patch: 0},
		0x1000,
	)
}

// V30CyclicThreadListFixture rebuilds the image stored in
// walker/testdata/v30_cyclic_thread_list.json: two execution contexts
// whose next-pointers form a 2-cycle and never reach a null terminator.
func V30CyclicThreadListFixture() *Fixture {
	b := NewBuilder()

	root := b.Region(0x1000, 0x18)
	PutUint64(root, 0x10, 0x2000)

	a := b.Region(0x2000, 0x60)
	PutUint64(a, 0x00, 0x2100) // ecNext -> B
	PutUint64(a, 0x40, 1)      // ecID

	bb := b.Region(0x2100, 0x60)
	PutUint64(bb, 0x00, 0x2000) // ecNext -> A
	PutUint64(bb, 0x40, 2)      // ecID

	return b.Fixture(
		"a 2-node cyclic execution-context list (A -> B -> A), used to exercise the walker's visited-thread cap rather than an unbounded loop",
		fixtureVersion{Major: 3, Minor: 2, Patch: 0},
		0x1000,
	)
}
