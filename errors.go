// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vmwalk

import "github.com/vmwalk/vmwalk/internal/rerr"

// The error taxonomy from spec.md §7, re-exported here as the public
// sentinels callers match against with errors.Is. Internal packages return
// wrapped forms of these same sentinels (defined once in internal/rerr, to
// avoid an import cycle between the leaf packages that need to classify
// errors and this root package); re-exporting them keeps the public API
// surface at the vmwalk package root, matching spec.md §6's error taxonomy
// being part of the core's external interface.
var (
	// ErrUnmapped means an address fell outside every known mapping.
	ErrUnmapped = rerr.ErrUnmapped
	// ErrPermission means a mapping exists but denies the requested access.
	ErrPermission = rerr.ErrPermission
	// ErrGone means the target process no longer exists.
	ErrGone = rerr.ErrGone
	// ErrTransient means a read failed for a reason that may not recur.
	ErrTransient = rerr.ErrTransient
	// ErrCorruptedThreadList means the thread list exceeded the visited cap
	// or otherwise could not be trusted.
	ErrCorruptedThreadList = rerr.ErrCorruptedThreadList
	// ErrCorruptedFrame means a control frame's contents failed a sanity
	// check the walker could not recover from.
	ErrCorruptedFrame = rerr.ErrCorruptedFrame
	// ErrVersionUnknown means the Version Identifier could not name the
	// target's VMVersion and none was overridden.
	ErrVersionUnknown = rerr.ErrVersionUnknown
	// ErrAnchorNotFound means no Anchor Locator strategy located the root.
	ErrAnchorNotFound = rerr.ErrAnchorNotFound
	// ErrAttach means Attach itself failed: the pid does not exist, is not
	// permitted, or its memory map could not be read.
	ErrAttach = rerr.ErrAttach
)
