// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testutil loads the golden-corpus fixtures used by the walker's
// end-to-end tests. spec.md §8 describes the golden corpus as a gzipped
// interpreter core dump plus a JSON file of expected results; this module
// cannot ship real interpreter core dumps, so fixtures here are a small
// JSON encoding of a synthetic memory image (see synth.go) that exercises
// the same LayoutEntry code paths against known input bytes, the same role
// the teacher's internal/gocore/testdata/testprogs/*.go programs play for
// gocore's golden tests.
package testutil

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vmwalk/vmwalk/internal/layout"
)

// Fixture is one golden-corpus entry: a memory image, the version it was
// captured under (per its LayoutEntry family), the root address to start
// walking from, and a human-readable description of what the fixture is
// meant to demonstrate.
type Fixture struct {
	Description string          `json:"description"`
	Version     fixtureVersion  `json:"version"`
	RootAddr    fixtureAddress  `json:"root_addr"`
	Image       map[string]string `json:"image"` // hex address -> hex bytes
}

type fixtureVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v fixtureVersion) toVMVersion() layout.VMVersion {
	return layout.VMVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

type fixtureAddress string

func (a fixtureAddress) toAddress() (layout.Address, error) {
	var n uint64
	_, err := fmt.Sscanf(string(a), "0x%x", &n)
	if err != nil {
		return 0, fmt.Errorf("testutil: malformed address %q: %w", a, err)
	}
	return layout.Address(n), nil
}

// Load reads a Fixture from a JSON file at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("testutil: parsing %s: %w", path, err)
	}
	if len(f.Image) == 0 {
		return nil, errors.New("testutil: fixture has an empty memory image")
	}
	return &f, nil
}

// VMVersion returns the fixture's captured VMVersion.
func (f *Fixture) VMVersion() layout.VMVersion { return f.Version.toVMVersion() }

// RootAddress returns the fixture's root Address.
func (f *Fixture) RootAddress() (layout.Address, error) { return f.RootAddr.toAddress() }

// Reader returns a layout.Reader backed by the fixture's memory image.
func (f *Fixture) Reader() (*ImageReader, error) {
	r := &ImageReader{mem: map[layout.Address][]byte{}}
	for addrHex, dataHex := range f.Image {
		var fa fixtureAddress = fixtureAddress(addrHex)
		addr, err := fa.toAddress()
		if err != nil {
			return nil, err
		}
		b, err := hex.DecodeString(dataHex)
		if err != nil {
			return nil, fmt.Errorf("testutil: malformed bytes at %s: %w", addrHex, err)
		}
		r.mem[addr] = b
	}
	return r, nil
}
