// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"encoding/binary"
	"testing"
)

// fakeReader is an in-memory Reader backed by a flat map of address to
// bytes, used to unit test LayoutEntry closures without a live process,
// per spec.md §4.2 ("permits unit testing each LayoutEntry against
// captured ... data with no live target").
type fakeReader struct {
	mem map[Address][]byte
}

func newFakeReader() *fakeReader {
	return &fakeReader{mem: map[Address][]byte{}}
}

func (f *fakeReader) put(addr Address, b []byte) {
	f.mem[addr] = b
}

func (f *fakeReader) find(addr Address, n int) ([]byte, bool) {
	for base, b := range f.mem {
		if addr >= base && int(addr.Sub(base))+n <= len(b) {
			off := addr.Sub(base)
			return b[off : off+int64(n)], true
		}
	}
	return nil, false
}

func (f *fakeReader) Read(addr Address, buf []byte) error {
	b, ok := f.find(addr, len(buf))
	if !ok {
		return errNotFound(addr)
	}
	copy(buf, b)
	return nil
}

func (f *fakeReader) ReadN(addr Address, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := f.Read(addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *fakeReader) ReadUint8(addr Address) (uint8, error) {
	buf, err := f.ReadN(addr, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (f *fakeReader) ReadUint16(addr Address) (uint16, error) {
	buf, err := f.ReadN(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (f *fakeReader) ReadUint32(addr Address) (uint32, error) {
	buf, err := f.ReadN(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (f *fakeReader) ReadUint64(addr Address) (uint64, error) {
	buf, err := f.ReadN(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (f *fakeReader) ReadPointer(addr Address) (Address, error) {
	v, err := f.ReadUint64(addr)
	return Address(v), err
}

type notFoundError struct{ addr Address }

func (e notFoundError) Error() string { return "not found: " + e.addr.String() }

func errNotFound(addr Address) error { return notFoundError{addr} }

func TestDecodeVMStringEmbedded(t *testing.T) {
	h := stringHeaderLayout{
		flagsOffset:    0,
		embeddedFlag:   1 << 13,
		embeddedOffset: 0x18,
		embeddedCap:    8,
		heapPtrOffset:  0x20,
		heapLenOffset:  0x18,
	}
	header := make([]byte, 0x20)
	binary.LittleEndian.PutUint64(header[0:], 1<<13)
	copy(header[0x18:], "hi\x00\x00\x00\x00\x00\x00")

	got, err := decodeVMString(header, 0x1000, nil, h)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestDecodeVMStringHeap(t *testing.T) {
	h := stringHeaderLayout{
		flagsOffset:    0,
		embeddedFlag:   1 << 13,
		embeddedOffset: 0x18,
		embeddedCap:    8,
		heapPtrOffset:  0x20,
		heapLenOffset:  0x18,
	}
	header := make([]byte, 0x28)
	binary.LittleEndian.PutUint64(header[0:], 0) // embedded flag not set: heap string
	binary.LittleEndian.PutUint64(header[0x18:], 5)
	binary.LittleEndian.PutUint64(header[0x20:], uint64(0x2000))

	r := newFakeReader()
	r.put(0x2000, []byte("hello"))

	got, err := decodeVMString(header, 0x1000, r, h)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestDecodeVMStringOversizedHeapRejected(t *testing.T) {
	h := stringHeaderLayout{
		embeddedFlag:  1 << 13,
		heapPtrOffset: 0x20,
		heapLenOffset: 0x18,
		embeddedOffset: 0x18,
		embeddedCap:    8,
	}
	header := make([]byte, 0x28)
	binary.LittleEndian.PutUint64(header[0x18:], maxStringLen+1)
	if _, err := decodeVMString(header, 0x1000, nil, h); err == nil {
		t.Fatal("expected error for oversized heap string length")
	}
}

func TestDecodeVMStringInvalidUTF8Substitutes(t *testing.T) {
	h := stringHeaderLayout{
		flagsOffset:    0,
		embeddedFlag:   1 << 13,
		embeddedOffset: 0x18,
		embeddedCap:    4,
		heapPtrOffset:  0x20,
		heapLenOffset:  0x18,
	}
	header := make([]byte, 0x1c)
	binary.LittleEndian.PutUint64(header[0:], 1<<13)
	copy(header[0x18:], []byte{0xff, 0xfe, 0x00, 0x00})

	got, err := decodeVMString(header, 0x1000, nil, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range got {
		if r != 0xFFFD {
			t.Fatalf("expected only replacement characters, got %q", got)
		}
	}
}

func TestLineForOffsetTieBreak(t *testing.T) {
	table := []lineEntry{
		{Start: 0, Line: 1},
		{Start: 10, Line: 2},
		{Start: 10, Line: 3}, // duplicate start: "largest entry whose start <= pc" picks the later one
		{Start: 20, Line: 4},
	}
	cases := []struct {
		pc   uint32
		line uint32
	}{
		{0, 1},
		{5, 1},
		{10, 3},
		{15, 3},
		{20, 4},
		{100, 4},
	}
	for _, c := range cases {
		if got := lineForOffset(table, c.pc); got != c.line {
			t.Errorf("lineForOffset(pc=%d) = %d, want %d", c.pc, got, c.line)
		}
	}
}

func TestLineForOffsetEmptyTable(t *testing.T) {
	if got := lineForOffset(nil, 42); got != 0 {
		t.Errorf("empty table: got %d, want 0", got)
	}
}

func TestRegistryLookupCoversSupportedRange(t *testing.T) {
	versions := []VMVersion{
		{Major: 1, Minor: 9, Patch: 3},
		{Major: 2, Minor: 5, Patch: 0},
		{Major: 2, Minor: 7, Patch: 6},
		{Major: 3, Minor: 4, Patch: 0},
	}
	for _, v := range versions {
		if !Supported(v) {
			t.Errorf("Supported(%s) = false, want true", v)
		}
		entry, err := Lookup(v)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", v, err)
		}
		if entry.Version != v {
			t.Errorf("Lookup(%s).Version = %s", v, entry.Version)
		}
	}
}

func TestRegistryLookupUnsupported(t *testing.T) {
	if Supported(VMVersion{Major: 0, Minor: 8, Patch: 7}) {
		t.Fatal("0.8.7 should not be supported")
	}
	if _, err := Lookup(VMVersion{Major: 0, Minor: 8, Patch: 7}); err == nil {
		t.Fatal("expected error looking up unsupported version")
	}
}

func TestV30EntryWalksASingleThreadOneFrame(t *testing.T) {
	entry := v30Entry(VMVersion{Major: 3, Minor: 2, Patch: 0})
	o := v30Offsets
	r := newFakeReader()

	root := make([]byte, entry.RootSize)
	binary.LittleEndian.PutUint64(root[o.rootFirstEC:], uint64(0x3000))
	r.put(0, root)

	ec := make([]byte, entry.ThreadSize)
	binary.LittleEndian.PutUint64(ec[o.ecNext:], 0)
	binary.LittleEndian.PutUint32(ec[o.ecStatus:], v30ECRunnable)
	binary.LittleEndian.PutUint64(ec[o.ecID:], 7)
	binary.LittleEndian.PutUint64(ec[o.ecCFP:], uint64(0x4000))
	r.put(0x3000, ec)

	frame := make([]byte, entry.FrameSize)
	binary.LittleEndian.PutUint64(frame[o.frameNext:], 0)
	binary.LittleEndian.PutUint64(frame[o.frameISeq:], 0) // C frame
	binary.LittleEndian.PutUint64(frame[o.framePC:], 0)
	r.put(0x4000, frame)

	head, ok := entry.ThreadListHead(root)
	if !ok || head != 0x3000 {
		t.Fatalf("ThreadListHead = %s, %v", head, ok)
	}
	if id := entry.ThreadID(ec); id != 7 {
		t.Errorf("ThreadID = %d, want 7", id)
	}
	if status := entry.ThreadStatus(ec); status != Runnable {
		t.Errorf("ThreadStatus = %v, want Runnable", status)
	}
	cfp, ok := entry.CurrentFramePtr(ec)
	if !ok || cfp != 0x4000 {
		t.Fatalf("CurrentFramePtr = %s, %v", cfp, ok)
	}
	if iseq, ok := entry.FrameISeqPtr(frame); ok || iseq != 0 {
		t.Fatalf("FrameISeqPtr = %s, %v, want 0, false", iseq, ok)
	}
	if _, ok := entry.FrameAdvance(frame); ok {
		t.Fatal("FrameAdvance should report bottom of stack")
	}
}
