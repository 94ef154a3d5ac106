// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package remote

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vmwalk/vmwalk/internal/rerr"
)

// MaxReadLen caps any single Read call, defending against corrupted length
// fields the caller may have read out of the target (spec: "MUST cap len at
// an implementation-chosen sanity limit (>= 1 MiB)").
const MaxReadLen = 16 << 20

// A LoadedObject describes one file mapped into the target's address space:
// the main executable or a shared library.
type LoadedObject struct {
	Path         string
	Base         Address
	HasRuntimeSymbols bool
}

// A Process is a read-only handle onto a foreign process's virtual memory.
// It never stops the target, never signals it, and never writes to it.
type Process struct {
	pid   int
	memFile *os.File
	idx   mappingIndex
	objects []LoadedObject
}

// Open attaches to pid for reading. It does not stop, signal, or otherwise
// instrument the target; it merely opens the OS handles needed to read its
// memory.
func Open(pid int) (*Process, error) {
	p := &Process{pid: pid}
	if err := p.Refresh(); err != nil {
		return nil, err
	}
	mem, err := openMem(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rerr.ErrPermission, err)
	}
	p.memFile = mem
	return p, nil
}

// Close releases OS handles held for reading the target. It has no effect
// on the target process itself.
func (p *Process) Close() error {
	if p.memFile != nil {
		return p.memFile.Close()
	}
	return nil
}

// PID returns the target's process id.
func (p *Process) PID() int { return p.pid }

// Mappings returns the most recently captured memory-map snapshot.
func (p *Process) Mappings() []*Mapping {
	return p.idx.mappings
}

// LoadedObjects returns the executable and shared libraries mapped into the
// target, deduplicated by path.
func (p *Process) LoadedObjects() []LoadedObject {
	return p.objects
}

// Refresh re-reads the target's memory map. The target is free to mmap and
// munmap between samples; Open captures the first snapshot, and
// Target.Snapshot calls this again before every walk.
func (p *Process) Refresh() error {
	mappings, objects, err := readMaps(p.pid)
	if err != nil {
		return err
	}
	p.idx.reset(mappings)
	p.objects = objects
	return nil
}

// Readable reports whether a is inside a mapping with read permission.
func (p *Process) Readable(a Address) bool {
	m := p.idx.find(a)
	return m != nil && m.perm&Read != 0
}

// Read reads len(buf) bytes starting at addr. It never writes to the
// target and is not atomic with respect to the target's own mutator: the
// caller must assume the bytes may be torn by a concurrent write.
func (p *Process) Read(addr Address, buf []byte) error {
	if len(buf) == 0 {
		panic("remote: Read called with zero-length buffer")
	}
	if len(buf) > MaxReadLen {
		return fmt.Errorf("%w: requested %d bytes, cap is %d", rerr.ErrTransient, len(buf), MaxReadLen)
	}
	m := p.idx.find(addr)
	if m == nil {
		return fmt.Errorf("%w: %s", rerr.ErrUnmapped, addr)
	}
	if m.perm&Read == 0 {
		return fmt.Errorf("%w: %s is not readable", rerr.ErrPermission, addr)
	}
	return p.readBytes(addr, buf)
}

// ReadN is a convenience wrapper around Read that allocates the buffer.
func (p *Process) ReadN(addr Address, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := p.Read(addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint8, ReadUint16, ReadUint32, and ReadUint64 read fixed-width
// little-endian integers. They classify short/failed reads the same way
// Read does.
func (p *Process) ReadUint8(addr Address) (uint8, error) {
	var buf [1]byte
	if err := p.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (p *Process) ReadUint16(addr Address) (uint16, error) {
	var buf [2]byte
	if err := p.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (p *Process) ReadUint32(addr Address) (uint32, error) {
	var buf [4]byte
	if err := p.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (p *Process) ReadUint64(addr Address) (uint64, error) {
	var buf [8]byte
	if err := p.Read(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadPointer reads a pointer-sized (8-byte) value and returns it as an
// Address, without dereferencing it.
func (p *Process) ReadPointer(addr Address) (Address, error) {
	v, err := p.ReadUint64(addr)
	if err != nil {
		return 0, err
	}
	return Address(v), nil
}

// readMapsLine is exposed for tests of the /proc/pid/maps parser.
type readMapsLine struct {
	min, max Address
	perm     Perm
	path     string
}

func parseMapsLine(line string) (readMapsLine, bool) {
	// Format: "min-max perm offset dev inode path"
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return readMapsLine{}, false
	}
	rangeParts := strings.SplitN(fields[0], "-", 2)
	if len(rangeParts) != 2 {
		return readMapsLine{}, false
	}
	min, err1 := strconv.ParseUint(rangeParts[0], 16, 64)
	max, err2 := strconv.ParseUint(rangeParts[1], 16, 64)
	if err1 != nil || err2 != nil {
		return readMapsLine{}, false
	}
	permStr := fields[1]
	var perm Perm
	if len(permStr) >= 3 {
		if permStr[0] == 'r' {
			perm |= Read
		}
		if permStr[1] == 'w' {
			perm |= Write
		}
		if permStr[2] == 'x' {
			perm |= Exec
		}
	}
	path := ""
	if len(fields) >= 6 {
		path = fields[5]
	}
	return readMapsLine{min: Address(min), max: Address(max), perm: perm, path: path}, true
}

func scanMaps(r *bufio.Scanner) ([]*Mapping, []LoadedObject) {
	var mappings []*Mapping
	seen := map[string]bool{}
	var objects []LoadedObject
	for r.Scan() {
		l, ok := parseMapsLine(r.Text())
		if !ok {
			continue
		}
		mappings = append(mappings, &Mapping{min: l.min, max: l.max, perm: l.perm, path: l.path})
		if l.path == "" || strings.HasPrefix(l.path, "[") {
			continue
		}
		if seen[l.path] {
			continue
		}
		seen[l.path] = true
		objects = append(objects, LoadedObject{Path: l.path, Base: l.min})
	}
	return mappings, objects
}
