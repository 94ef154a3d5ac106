// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package version implements the Version Identifier: it names the exact
// VMVersion of a target, so the caller can select the matching LayoutEntry
// from the Layout Registry.
package version

import (
	"debug/elf"
	"os"
	"regexp"
	"strconv"

	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/remote"
	"github.com/vmwalk/vmwalk/internal/rerr"
)

// libraryNamePattern matches the VM's shared-library naming convention,
// e.g. "libruby.so.3.2" or "libruby-3.2.2.so", capturing major/minor/patch
// (patch optional, defaulting to 0).
var libraryNamePattern = regexp.MustCompile(`libruby(?:-|\.so\.)(\d+)\.(\d+)(?:\.(\d+))?`)

// versionSymbolNames lists candidate symbol names carrying the VM's
// human-readable version string, tried in order against the target binary
// when the loaded-object filename scan (strategy 1) finds nothing.
var versionSymbolNames = []string{
	"ruby_version",
	"ruby_release_date",
}

// versionStringPattern extracts a dotted version number from a symbol's
// decoded bytes, e.g. "3.2.2" out of "ruby 3.2.2 (2023-03-30 ...)".
var versionStringPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)

// Identify produces the VMVersion of the target described by proc, per
// spec.md §4.4's strategy order: loaded-object filename match, then a
// version-string symbol read from the target binary, then override, else
// VersionUnknown.
//
// override is a non-zero-value layout.VMVersion supplied by the
// collaborator above this package (e.g. a CLI flag); pass the zero value
// to mean "no override".
func Identify(proc *remote.Process, override layout.VMVersion) (layout.VMVersion, error) {
	if v, ok := identifyByLoadedObjectName(proc); ok {
		return v, nil
	}
	if v, ok := identifyBySymbol(proc); ok {
		return v, nil
	}
	if override != (layout.VMVersion{}) {
		return override, nil
	}
	return layout.VMVersion{}, rerr.ErrVersionUnknown
}

// identifyByLoadedObjectName implements strategy 1.
func identifyByLoadedObjectName(proc *remote.Process) (layout.VMVersion, bool) {
	for _, obj := range proc.LoadedObjects() {
		if v, ok := parseLibraryName(obj.Path); ok {
			return v, true
		}
	}
	return layout.VMVersion{}, false
}

func parseLibraryName(path string) (layout.VMVersion, bool) {
	m := libraryNamePattern.FindStringSubmatch(path)
	if m == nil {
		return layout.VMVersion{}, false
	}
	return layout.VMVersion{
		Major: atoiOrZero(m[1]),
		Minor: atoiOrZero(m[2]),
		Patch: atoiOrZero(m[3]),
	}, true
}

// identifyBySymbol implements strategy 2: locate a version-string symbol in
// the target's main executable (the first loaded object) and read its bytes
// via RMR.
func identifyBySymbol(proc *remote.Process) (layout.VMVersion, bool) {
	objs := proc.LoadedObjects()
	if len(objs) == 0 {
		return layout.VMVersion{}, false
	}
	main := objs[0]

	f, err := os.Open(main.Path)
	if err != nil {
		return layout.VMVersion{}, false
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return layout.VMVersion{}, false
	}

	syms, symErr := ef.Symbols()
	dynSyms, dynErr := ef.DynamicSymbols()
	if symErr != nil && dynErr != nil {
		return layout.VMVersion{}, false
	}
	byName := map[string]elf.Symbol{}
	for _, s := range syms {
		byName[s.Name] = s
	}
	for _, s := range dynSyms {
		if _, ok := byName[s.Name]; !ok {
			byName[s.Name] = s
		}
	}

	for _, name := range versionSymbolNames {
		s, ok := byName[name]
		if !ok || s.Size == 0 {
			continue
		}
		size := s.Size
		const maxVersionSymbolSize = 256
		if size > maxVersionSymbolSize {
			size = maxVersionSymbolSize
		}
		buf, err := proc.ReadN(main.Base.Add(int64(s.Value)), int(size))
		if err != nil {
			continue
		}
		if v, ok := parseVersionString(string(buf)); ok {
			return v, true
		}
	}
	return layout.VMVersion{}, false
}

func parseVersionString(s string) (layout.VMVersion, bool) {
	m := versionStringPattern.FindStringSubmatch(s)
	if m == nil {
		return layout.VMVersion{}, false
	}
	return layout.VMVersion{
		Major: atoiOrZero(m[1]),
		Minor: atoiOrZero(m[2]),
		Patch: atoiOrZero(m[3]),
	}, true
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
