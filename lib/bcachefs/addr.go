// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import "fmt"

// SectorSize is the fixed block size bcachefs measures offsets in
// before scaling to bytes.
const SectorSize = 512

// ByteOffset is a byte position within the image (or within a node
// buffer, depending on context).
type ByteOffset int64

// SectorOffset is a position measured in 512-byte sectors, as stored
// on disk in btree pointers and the superblock's own location.
type SectorOffset int64

// Bytes converts a sector offset to a byte offset.
func (s SectorOffset) Bytes() ByteOffset { return ByteOffset(s) * SectorSize }

// fmtStateString reconstructs the printf verb string that produced a
// given fmt.State, so addr types can re-dispatch through fmt.Fprintf
// with a different underlying value.
func fmtStateString(st fmt.State, verb rune) string {
	ret := []byte{'%'}
	for _, flag := range []int{'-', '+', '#', ' ', '0'} {
		if st.Flag(flag) {
			ret = append(ret, byte(flag))
		}
	}
	if width, ok := st.Width(); ok {
		ret = append(ret, []byte(fmt.Sprintf("%d", width))...)
	}
	if prec, ok := st.Precision(); ok {
		ret = append(ret, '.')
		if prec != 0 {
			ret = append(ret, []byte(fmt.Sprintf("%d", prec))...)
		}
	}
	ret = append(ret, byte(verb))
	return string(ret)
}

func (a ByteOffset) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's', 'q':
		fmt.Fprintf(f, fmtStateString(f, verb), fmt.Sprintf("%#x", int64(a)))
	default:
		fmt.Fprintf(f, fmtStateString(f, verb), int64(a))
	}
}

func (a ByteOffset) Add(n int) ByteOffset { return a + ByteOffset(n) }
func (a ByteOffset) Sub(b ByteOffset) int64 {
	return int64(a) - int64(b)
}
