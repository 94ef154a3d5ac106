// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vmwalk

import (
	"github.com/vmwalk/vmwalk/internal/layout"
	"github.com/vmwalk/vmwalk/internal/remote"
	"github.com/vmwalk/vmwalk/log"
)

// attachConfig collects the values AttachOption functions populate. It is
// unexported; callers only ever see the functional-option constructors
// below, matching the pack's sideeye.Option/optionFunc pattern.
type attachConfig struct {
	overrideVersion layout.VMVersion
	overrideAnchor  remote.Address
	logger          log.Logger
	maxThreads      int
	maxFrameDepth   int
}

func defaultAttachConfig() attachConfig {
	return attachConfig{logger: log.Nop}
}

// AttachOption configures an Attach call.
type AttachOption func(*attachConfig)

// OverrideVersion supplies a VM version that the Version Identifier falls
// back to when neither the loaded-object name scan nor the version-string
// symbol identifies the target; an automatically identified version takes
// precedence over it. Passing 0, 0, 0 is the same as passing no override.
func OverrideVersion(major, minor, patch int) AttachOption {
	return func(c *attachConfig) {
		c.overrideVersion = layout.VMVersion{Major: major, Minor: minor, Patch: patch}
	}
}

// OverrideAnchor supplies a root address that the Anchor Locator falls back
// to, without validation, when neither symbol lookup nor the data-segment
// scan finds the root, matching spec.md §4.3's strategy 3.
func OverrideAnchor(addr uint64) AttachOption {
	return func(c *attachConfig) {
		c.overrideAnchor = remote.Address(addr)
	}
}

// Logger supplies a Logger for this Target's lifetime. The default is a
// no-op logger.
func Logger(l log.Logger) AttachOption {
	return func(c *attachConfig) {
		c.logger = l
	}
}

// MaxThreads overrides the Stack Walker's visited-thread-list cap for this
// Target. The default (10000) matches spec.md §4.5's example limit.
func MaxThreads(n int) AttachOption {
	return func(c *attachConfig) {
		c.maxThreads = n
	}
}

// MaxFrameDepth overrides the Stack Walker's per-thread frame cap for this
// Target. The default (10000) matches spec.md §4.5's example limit.
func MaxFrameDepth(n int) AttachOption {
	return func(c *attachConfig) {
		c.maxFrameDepth = n
	}
}

// snapshotConfig collects per-call SnapshotOption values. Currently empty;
// it exists so SnapshotOption has a stable functional-option shape to grow
// into (e.g. a future per-call timeout) without an API break.
type snapshotConfig struct{}

// SnapshotOption configures a single Snapshot call.
type SnapshotOption func(*snapshotConfig)
