// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config binds the reference CLI's flags to a Config struct, using
// spf13/pflag the way the teacher's cobra-based commands read their flags
// (cmd.Flags().GetFloat64/GetBool in cmd/viewcore/objref.go).
package config

import (
	"github.com/spf13/pflag"
)

// Config holds the reference collaborator's command-line configuration:
// which process to sample, how, and how often.
type Config struct {
	PID int

	// OverrideVersionMajor/Minor/Patch, if OverrideVersionMajor is
	// non-negative, give the version the Version Identifier falls back to
	// when it cannot identify the target by itself.
	OverrideVersionMajor int
	OverrideVersionMinor int
	OverrideVersionPatch int

	// OverrideAnchor, if non-zero, is the root address the Anchor Locator
	// falls back to when symbol lookup and the data-segment scan both fail.
	OverrideAnchor uint64

	// RateHz is the sampling rate in Hertz.
	RateHz float64

	MaxThreads    int
	MaxFrameDepth int
}

// RegisterFlags binds fs to a new Config's fields and returns it. The flags
// are --pid, --override-version-major, --override-version-minor,
// --override-version-patch, --override-anchor, --rate, --max-threads and
// --max-depth.
func RegisterFlags(fs *pflag.FlagSet) *Config {
	c := &Config{OverrideVersionMajor: -1}
	fs.IntVar(&c.PID, "pid", 0, "process id to sample (required)")
	fs.IntVar(&c.OverrideVersionMajor, "override-version-major", -1, "fallback if version identification fails; VM major version")
	fs.IntVar(&c.OverrideVersionMinor, "override-version-minor", 0, "fallback if version identification fails; VM minor version")
	fs.IntVar(&c.OverrideVersionPatch, "override-version-patch", 0, "fallback if version identification fails; VM patch version")
	fs.Uint64Var(&c.OverrideAnchor, "override-anchor", 0, "fallback if anchor location fails; use this address without validation")
	fs.Float64Var(&c.RateHz, "rate", 100, "sampling rate in Hz")
	fs.IntVar(&c.MaxThreads, "max-threads", 0, "override the walker's visited-thread cap (0: use the default)")
	fs.IntVar(&c.MaxFrameDepth, "max-depth", 0, "override the walker's per-thread frame cap (0: use the default)")
	return c
}

// HasVersionOverride reports whether the caller requested a version
// override on the command line.
func (c *Config) HasVersionOverride() bool {
	return c.OverrideVersionMajor >= 0
}
