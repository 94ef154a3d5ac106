// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxStringLen caps decode_vm_string's heap-string length field, per
// spec.md §4.2 step 5 ("validate length against an implementation sanity
// cap; reject oversized").
const maxStringLen = 1 << 20

// stringHeaderLayout describes where, within a VM string object's header,
// the embedded/heap discriminant, embedded bytes, and heap (pointer,
// length) pair live. Every version family shares this shape (a tagged
// small-string/heap-string representation); only the byte offsets differ,
// so the family-specific LayoutEntry.DecodeVMString closures all delegate
// to decodeVMString with their own stringHeaderLayout.
type stringHeaderLayout struct {
	flagsOffset    int64
	embeddedFlag   uint64
	embeddedOffset int64
	embeddedCap    int64
	heapPtrOffset  int64
	heapLenOffset  int64
}

// decodeVMString implements spec.md §4.2's decode_vm_string algorithm: read
// the header, branch on the embedded/heap flag, copy out the bytes, and
// return them as UTF-8 with the standard library's replacement-character
// substitution for anything invalid rather than failing.
func decodeVMString(headerBytes []byte, addr Address, r Reader, h stringHeaderLayout) (string, error) {
	if int64(len(headerBytes)) < h.embeddedOffset+h.embeddedCap {
		return "", fmt.Errorf("layout: string header too short (%d bytes)", len(headerBytes))
	}
	flags := u64(headerBytes, h.flagsOffset)
	var raw []byte
	if flags&h.embeddedFlag != 0 {
		buf := headerBytes[h.embeddedOffset : h.embeddedOffset+h.embeddedCap]
		if i := bytes.IndexByte(buf, 0); i >= 0 {
			buf = buf[:i]
		}
		raw = buf
	} else {
		ptr := Address(u64(headerBytes, h.heapPtrOffset))
		length := u64(headerBytes, h.heapLenOffset)
		if length > maxStringLen {
			return "", fmt.Errorf("layout: string length %d exceeds sanity cap", length)
		}
		if length == 0 {
			return "", nil
		}
		buf, err := r.ReadN(ptr, int(length))
		if err != nil {
			return "", err
		}
		raw = buf
	}
	return toValidUTF8(raw), nil
}

// toValidUTF8 returns s decoded as UTF-8, substituting the replacement
// character for any invalid byte sequence instead of failing, per
// spec.md §4.2 step 6.
func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

func u64(b []byte, off int64) uint64 {
	return binary.LittleEndian.Uint64(b[off : off+8])
}

// decodeVMStringAt reads a VM string object's header at addr and decodes
// it per h. Every version family's ISeqLabel/ISeqPath/DecodeVMString
// capability delegates here.
func decodeVMStringAt(addr Address, r Reader, h stringHeaderLayout) (string, error) {
	if addr == 0 {
		return "", nil
	}
	headerLen := h.embeddedOffset + h.embeddedCap
	if h.heapLenOffset+8 > headerLen {
		headerLen = h.heapLenOffset + 8
	}
	if h.heapPtrOffset+8 > headerLen {
		headerLen = h.heapPtrOffset + 8
	}
	header, err := r.ReadN(addr, int(headerLen))
	if err != nil {
		return "", err
	}
	return decodeVMString(header, addr, r, h)
}
