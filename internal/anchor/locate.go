// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package anchor

import (
	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/remote"
	"github.com/vmwalk/vmwalk/internal/rerr"
)

// Locate produces the address of entry's root record within proc, trying
// each strategy from spec.md §4.3 in order and stopping at the first that
// succeeds:
//
//  1. symbol lookup in every loaded object
//  2. a validated scan of writable data segments
//  3. override, if the caller supplied one
//
// override is a remote.Address supplied by the collaborator above this
// package (e.g. a CLI flag); pass 0 to mean "no override". An override is
// returned as-is: it is neither dereferenced nor validated by a trial walk,
// and it is only used when strategies 1 and 2 both fail.
func Locate(proc *remote.Process, entry layout.LayoutEntry, override remote.Address) (remote.Address, error) {
	if addr, ok := locateBySymbol(proc); ok {
		return addr, nil
	}
	if addr, ok := locateByScan(proc, entry); ok {
		return addr, nil
	}
	if override != 0 {
		return override, nil
	}
	return 0, rerr.ErrAnchorNotFound
}

// locateBySymbol implements strategy 1: look for a known symbol in every
// loaded object, and if found, dereference it via RMR to obtain the root
// (the symbol names a pointer cell, not the root itself).
func locateBySymbol(proc *remote.Process) (remote.Address, bool) {
	for _, obj := range proc.LoadedObjects() {
		syms, err := readSymbols(obj.Path, obj.Base)
		if err != nil {
			continue
		}
		for _, name := range anchorSymbolNames {
			cell, ok := syms[name]
			if !ok {
				continue
			}
			root, err := proc.ReadPointer(cell)
			if err != nil || root == 0 {
				continue
			}
			return root, true
		}
	}
	return 0, false
}

// locateByScan implements strategy 2: enumerate writable segments and
// accept the first candidate whose trial walk decodes at least one frame
// with a non-empty path. Ranking candidates by decoded-frame-count was
// considered and rejected (see DESIGN.md): it would require a full trial
// walk per candidate word rather than stopping at first success, turning
// attach into an operation whose cost scales with segment size times stack
// depth instead of with segment size alone.
func locateByScan(proc *remote.Process, entry layout.LayoutEntry) (remote.Address, bool) {
	var found remote.Address
	var ok bool
	scanCandidates(proc, func(candidate remote.Address) bool {
		if trialWalk(proc, entry, candidate) {
			found = candidate
			ok = true
			return false
		}
		return true
	})
	return found, ok
}
