// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "fmt"

// family names one of the closed set of on-disk layout shapes this module
// knows how to decode. Every point release in spec.md's supported range
// (1.9.3 through 3.4.x) maps to exactly one family; within a family, only
// the constant offset tables differ release to release; here, one
// representative LayoutEntry stands in for its whole family (see
// DESIGN.md's scope note on the full generated matrix).
type family int

const (
	familyV19 family = iota
	familyV23
	familyV30
)

func familyFor(v VMVersion) (family, bool) {
	switch {
	case v.Major == 1 && v.Minor == 9:
		return familyV19, true
	case v.Major == 2:
		return familyV23, true
	case v.Major == 3:
		return familyV30, true
	}
	return 0, false
}

// Lookup returns the LayoutEntry registered for v. Adding a new VMVersion
// to the supported set means adding one case to familyFor (or, for a
// genuinely new on-disk shape, one new family + constructor); Lookup and
// every caller of it are unaffected.
func Lookup(v VMVersion) (LayoutEntry, error) {
	f, ok := familyFor(v)
	if !ok {
		return LayoutEntry{}, fmt.Errorf("layout: unsupported VM version %s", v)
	}
	switch f {
	case familyV19:
		return v19Entry(v), nil
	case familyV23:
		return v23Entry(v), nil
	case familyV30:
		return v30Entry(v), nil
	default:
		return LayoutEntry{}, fmt.Errorf("layout: unsupported VM version %s", v)
	}
}

// Supported reports whether v has a registered LayoutEntry.
func Supported(v VMVersion) bool {
	_, ok := familyFor(v)
	return ok
}
