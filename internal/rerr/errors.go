// Package rerr holds the error taxonomy shared by every layer of the
// extractor (remote memory reads, anchor location, version identification,
// and stack walking), so that internal/remote, internal/anchor,
// internal/version, walker, and the root package can all classify and wrap
// errors the same way without importing each other.
package rerr

import "errors"

// Sentinel error kinds, per the taxonomy in SPEC_FULL.md §7.
var (
	// ErrUnmapped means an address was not found in any mapping.
	ErrUnmapped = errors.New("address not mapped in target")
	// ErrPermission means a mapping exists but is not readable, or the
	// reader lost read access mid-operation.
	ErrPermission = errors.New("permission denied reading target memory")
	// ErrGone means the target process exited.
	ErrGone = errors.New("target process exited")
	// ErrTransient means a single read failed (short read, EIO, partial
	// copy) in a way that may succeed on a later attempt at the caller's
	// own cadence. The core never retries internally.
	ErrTransient = errors.New("transient read failure")

	// ErrCorruptedThreadList means thread-list traversal exceeded the
	// visited-count cap, indicating a cycle or other corruption.
	ErrCorruptedThreadList = errors.New("corrupted or cyclic thread list")
	// ErrCorruptedFrame means a control frame decoded to an impossible
	// value (negative length, out-of-mapping pointer).
	ErrCorruptedFrame = errors.New("corrupted control frame")

	// ErrVersionUnknown means no Version Identifier strategy identified
	// the target's VM version.
	ErrVersionUnknown = errors.New("could not identify VM version")
	// ErrAnchorNotFound means no Anchor Locator strategy located the root.
	ErrAnchorNotFound = errors.New("could not locate VM anchor")

	// ErrAttach covers process-missing, permission-denied, and
	// unsupported-architecture failures during attach.
	ErrAttach = errors.New("attach failed")
)

// Truncated is not an error; it is an advisory tag callers may check on a
// StackTrace produced by a capped walk.
