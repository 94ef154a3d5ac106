// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vmwalk/vmwalk"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "vmwalk",
		Short: "Sample call stacks from a live interpreter process without instrumenting it",
	}
	root.AddCommand(newSnapshotCommand())
	return root
}

// exitCodeFor maps the core's error taxonomy to spec.md §6's exit codes.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, vmwalk.ErrGone):
		return 1
	case errors.Is(err, vmwalk.ErrVersionUnknown):
		return 2
	case errors.Is(err, vmwalk.ErrAnchorNotFound):
		return 3
	case errors.Is(err, vmwalk.ErrPermission):
		return 4
	default:
		return 1
	}
}
