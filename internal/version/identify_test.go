// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package version

import (
	"testing"

	"github.com/vmwalk/vmwalk/internal/layout"
)

func TestParseLibraryName(t *testing.T) {
	cases := []struct {
		path string
		want layout.VMVersion
		ok   bool
	}{
		{"/usr/lib/x86_64-linux-gnu/libruby.so.3.2", layout.VMVersion{Major: 3, Minor: 2, Patch: 0}, true},
		{"/usr/lib/x86_64-linux-gnu/libruby-3.2.2.so", layout.VMVersion{Major: 3, Minor: 2, Patch: 2}, true},
		{"/usr/lib/x86_64-linux-gnu/libc.so.6", layout.VMVersion{}, false},
	}
	for _, c := range cases {
		got, ok := parseLibraryName(c.path)
		if ok != c.ok {
			t.Errorf("parseLibraryName(%q) ok = %v, want %v", c.path, ok, c.ok)
			continue
		}
		if ok && got != c.want {
			t.Errorf("parseLibraryName(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestParseVersionString(t *testing.T) {
	got, ok := parseVersionString("ruby 3.2.2 (2023-03-30 revision e51014f9c0) [x86_64-linux]")
	if !ok {
		t.Fatal("expected a match")
	}
	want := layout.VMVersion{Major: 3, Minor: 2, Patch: 2}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, ok := parseVersionString("no version here"); ok {
		t.Error("expected no match")
	}
}

func TestParseLibraryNameRejectsUnrelatedLibraries(t *testing.T) {
	// Strategy 1 (loaded-object filename match) and strategy 3 (override)
	// both funnel through the same VMVersion type; a target with no
	// matching library name must fall through to the next strategy rather
	// than reporting a false match.
	if _, ok := parseLibraryName("/usr/lib/x86_64-linux-gnu/libpthread.so.0"); ok {
		t.Fatal("expected no match for an unrelated shared library")
	}
}
