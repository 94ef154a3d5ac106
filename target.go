// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vmwalk reads call stacks out of a live, unmodified interpreter
// process by reading its memory directly, without pausing it, injecting
// code into it, or otherwise instrumenting it. See Attach.
package vmwalk

import (
	"fmt"
	"time"

	"github.com/vmwalk/vmwalk/internal/anchor"
	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/remote"
	"github.com/vmwalk/vmwalk/internal/rerr"
	"github.com/vmwalk/vmwalk/internal/version"
	"github.com/vmwalk/vmwalk/log"
	"github.com/vmwalk/vmwalk/walker"
)

// Re-exported data-model types, so callers of this package's top-level API
// never need to import the internal packages that define them.
type (
	Address     = remote.Address
	VMVersion   = layout.VMVersion
	Sample      = walker.Sample
	Frame       = walker.Frame
	StackTrace  = walker.StackTrace
	ThreadState = walker.ThreadState
	RunState    = walker.RunState
)

const (
	Runnable = walker.Runnable
	Waiting  = walker.Waiting
	Other    = walker.Other
)

// Target is an attached VM process: its identified VMVersion, its resolved
// LayoutEntry, and the anchor address to walk from. A Target's VMVersion
// and anchor are frozen at Attach time and never re-derived, per spec.md
// §4.4's mismatch policy — a Target that starts producing implausible
// samples reports that as a persistent per-sample error, not a trigger to
// re-identify.
type Target struct {
	pid    int
	proc   *remote.Process
	entry  layout.LayoutEntry
	anchor remote.Address
	limits walker.Limits
	log    log.Logger
}

// Attach opens pid for reading and runs the Version Identifier and Anchor
// Locator against it. It never stops, signals, or otherwise instruments
// the target process.
func Attach(pid int, opts ...AttachOption) (*Target, error) {
	cfg := defaultAttachConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	proc, err := remote.Open(pid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rerr.ErrAttach, err)
	}

	v, err := version.Identify(proc, cfg.overrideVersion)
	if err != nil {
		proc.Close()
		return nil, err
	}

	entry, err := layout.Lookup(v)
	if err != nil {
		proc.Close()
		return nil, fmt.Errorf("%w: %v", rerr.ErrVersionUnknown, err)
	}

	root, err := anchor.Locate(proc, entry, cfg.overrideAnchor)
	if err != nil {
		proc.Close()
		return nil, err
	}

	limits := walker.DefaultLimits()
	if cfg.maxThreads > 0 {
		limits.MaxThreads = cfg.maxThreads
	}
	if cfg.maxFrameDepth > 0 {
		limits.MaxFrameDepth = cfg.maxFrameDepth
	}

	cfg.logger.Debugf("attached to pid %d: VM version %s, anchor %s", pid, v, root)

	return &Target{
		pid:    pid,
		proc:   proc,
		entry:  entry,
		anchor: root,
		limits: limits,
		log:    cfg.logger,
	}, nil
}

// PID returns the attached process's id.
func (t *Target) PID() int { return t.pid }

// Version returns the VMVersion identified at Attach time.
func (t *Target) Version() VMVersion { return t.entry.Version }

// Snapshot captures every VM thread's call stack at the current instant.
// It refreshes the target's memory-map snapshot first (the target is free
// to mmap/munmap between samples) and never modifies target state.
func (t *Target) Snapshot(opts ...SnapshotOption) (*Sample, error) {
	cfg := snapshotConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := t.proc.Refresh(); err != nil {
		return nil, err
	}

	sample, err := walker.Snapshot(t.proc, t.entry, t.anchor, time.Now().UnixNano(), t.limits)
	if err != nil {
		t.log.Errorf("snapshot of pid %d failed: %v", t.pid, err)
		return nil, err
	}
	for _, ts := range sample.Threads {
		if ts.Dropped {
			t.log.Warnf("pid %d: dropped thread %d: %v", t.pid, ts.ThreadID, ts.DropError)
		}
	}
	return sample, nil
}

// Detach releases the OS handles Attach opened. It has no effect on the
// target process itself: there is nothing to undo, since Attach never
// stopped or instrumented it.
func (t *Target) Detach() error {
	return t.proc.Close()
}
