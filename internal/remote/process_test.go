// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

import (
	"bufio"
	"strings"
	"testing"
)

func TestParseMapsLine(t *testing.T) {
	cases := []struct {
		line string
		ok   bool
		min  Address
		max  Address
		perm Perm
		path string
	}{
		{
			line: "00400000-00452000 r-xp 00000000 08:02 173521 /usr/bin/ruby",
			ok:   true, min: 0x400000, max: 0x452000, perm: Read | Exec, path: "/usr/bin/ruby",
		},
		{
			line: "7ffe1a2b3000-7ffe1a2d4000 rw-p 00000000 00:00 0 [stack]",
			ok:   true, min: 0x7ffe1a2b3000, max: 0x7ffe1a2d4000, perm: Read | Write, path: "[stack]",
		},
		{
			line: "not a maps line",
			ok:   false,
		},
	}
	for _, c := range cases {
		got, ok := parseMapsLine(c.line)
		if ok != c.ok {
			t.Fatalf("parseMapsLine(%q) ok = %v, want %v", c.line, ok, c.ok)
		}
		if !ok {
			continue
		}
		if got.min != c.min || got.max != c.max || got.perm != c.perm || got.path != c.path {
			t.Errorf("parseMapsLine(%q) = %+v, want min=%s max=%s perm=%s path=%s",
				c.line, got, c.min, c.max, c.perm, c.path)
		}
	}
}

func TestScanMapsDedupesObjects(t *testing.T) {
	data := strings.Join([]string{
		"00400000-00452000 r-xp 00000000 08:02 173521 /usr/bin/ruby",
		"00652000-00653000 rw-p 00052000 08:02 173521 /usr/bin/ruby",
		"7f0000000000-7f0000021000 r-xp 00000000 08:02 999 /lib/libruby.so.3.2.0",
		"7ffe00000000-7ffe00021000 rw-p 00000000 00:00 0",
	}, "\n")
	mappings, objects := scanMaps(bufio.NewScanner(strings.NewReader(data)))
	if len(mappings) != 4 {
		t.Fatalf("got %d mappings, want 4", len(mappings))
	}
	if len(objects) != 2 {
		t.Fatalf("got %d loaded objects, want 2 (deduped): %+v", len(objects), objects)
	}
}

func TestMappingIndexFind(t *testing.T) {
	var idx mappingIndex
	m1 := &Mapping{min: 0x1000, max: 0x2000, perm: Read}
	m2 := &Mapping{min: 0x5000, max: 0x6000, perm: Read | Write}
	idx.reset([]*Mapping{m1, m2})

	if got := idx.find(0x1500); got != m1 {
		t.Errorf("find(0x1500) = %v, want m1", got)
	}
	if got := idx.find(0x5800); got != m2 {
		t.Errorf("find(0x5800) = %v, want m2", got)
	}
	if got := idx.find(0x3000); got != nil {
		t.Errorf("find(0x3000) = %v, want nil", got)
	}
}
