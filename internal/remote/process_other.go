// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package remote

import (
	"os"

	"github.com/vmwalk/vmwalk/internal/rerr"
)

// The extractor's memory-reading primitives are Linux-specific
// (process_vm_readv, /proc/pid/maps). Other platforms are left as a stub
// returning ErrAttach, matching the teacher's own per-GOOS split in
// core/mapping.go's page table (amd64/Linux-shaped from the start) and the
// pack's boottime/stoptheworld packages, which follow the same "supported
// platform vs. explicit stub" split.
func readMaps(pid int) ([]*Mapping, []LoadedObject, error) {
	return nil, nil, unsupportedPlatform()
}

func openMem(pid int) (*os.File, error) {
	return nil, unsupportedPlatform()
}

func (p *Process) readBytes(addr Address, buf []byte) error {
	return unsupportedPlatform()
}

func unsupportedPlatform() error {
	return rerr.ErrAttach
}
