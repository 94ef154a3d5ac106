// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package remote

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/vmwalk/vmwalk/internal/rerr"
)

func readMaps(pid int) ([]*Mapping, []LoadedObject, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: pid %d: %v", rerr.ErrGone, pid, err)
		}
		return nil, nil, fmt.Errorf("%w: %v", rerr.ErrPermission, err)
	}
	defer f.Close()
	mappings, objects := scanMaps(bufio.NewScanner(f))
	return mappings, objects, nil
}

func openMem(pid int) (*os.File, error) {
	f, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", pid), os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %v", rerr.ErrGone, err)
		}
		return nil, err
	}
	return f, nil
}

// readBytes performs the actual cross-process copy. process_vm_readv is a
// single syscall that copies directly between address spaces (the "bulk
// cross-process copy" primitive spec.md §4.1 calls for); if it is
// unavailable (denied by seccomp, or the kernel predates it) we fall back
// to pread on /proc/pid/mem, which the kernel serves page-by-page.
func (p *Process) readBytes(addr Address, buf []byte) error {
	local := []unix.Iovec{{Base: &buf[0], Len: uint64(len(buf))}}
	remoteIov := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(buf)}}
	n, err := unix.ProcessVMReadv(p.pid, local, remoteIov, 0)
	if err == nil && n == len(buf) {
		return nil
	}
	if err != nil && err != unix.ENOSYS && err != unix.EPERM {
		if err == unix.ESRCH {
			return fmt.Errorf("%w: %v", rerr.ErrGone, err)
		}
		return fmt.Errorf("%w: process_vm_readv: %v", rerr.ErrTransient, err)
	}

	// Fallback: pread from /proc/pid/mem.
	n, err = p.memFile.ReadAt(buf, int64(addr))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %v", rerr.ErrGone, err)
		}
		return fmt.Errorf("%w: pread mem: %v", rerr.ErrTransient, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short read (%d of %d bytes)", rerr.ErrTransient, n, len(buf))
	}
	return nil
}
