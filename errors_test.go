// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vmwalk

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorSentinelsMatchThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("reading thread list: %w", ErrCorruptedThreadList)
	if !errors.Is(wrapped, ErrCorruptedThreadList) {
		t.Fatal("expected errors.Is to see through the wrap")
	}
	if errors.Is(wrapped, ErrAnchorNotFound) {
		t.Fatal("expected distinct sentinels not to match")
	}
}
