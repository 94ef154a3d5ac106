// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testutil

import (
	"encoding/binary"
	"fmt"

	"github.com/vmwalk/vmwalk/internal/layout"
)

// ImageReader is a layout.Reader backed by a flat, exact-address byte-slice
// map, the same shape as the walker package's own memReader test double.
// It never synthesizes bytes: a read that doesn't land exactly on a region
// boundary recorded in the fixture fails, so fixtures must lay out every
// address a LayoutEntry will actually touch.
type ImageReader struct {
	mem map[layout.Address][]byte
}

func (r *ImageReader) Read(addr layout.Address, buf []byte) error {
	b, err := r.ReadN(addr, len(buf))
	if err != nil {
		return err
	}
	copy(buf, b)
	return nil
}

func (r *ImageReader) ReadN(addr layout.Address, n int) ([]byte, error) {
	b, ok := r.mem[addr]
	if !ok || len(b) < n {
		return nil, fmt.Errorf("testutil: no fixture data at %s for %d bytes", addr, n)
	}
	return b[:n], nil
}

func (r *ImageReader) ReadUint8(addr layout.Address) (uint8, error) {
	b, err := r.ReadN(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *ImageReader) ReadUint16(addr layout.Address) (uint16, error) {
	b, err := r.ReadN(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *ImageReader) ReadUint32(addr layout.Address) (uint32, error) {
	b, err := r.ReadN(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *ImageReader) ReadUint64(addr layout.Address) (uint64, error) {
	b, err := r.ReadN(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *ImageReader) ReadPointer(addr layout.Address) (layout.Address, error) {
	v, err := r.ReadUint64(addr)
	return layout.Address(v), err
}
