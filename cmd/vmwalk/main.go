// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The vmwalk command is a reference collaborator for the vmwalk core: it
// attaches to a target process by pid, samples its call stacks at a fixed
// rate, and prints them in newline-delimited folded-stack form.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
