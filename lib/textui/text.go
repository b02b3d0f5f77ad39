// Copyright (C) 2022-2024  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

// Package textui implements utilities for emitting human-friendly
// text on stdout and stderr.
package textui

import (
	"fmt"
	"io"
)

// Fprintf is like `fmt.Fprintf`, but is useful for marking when a
// print call is part of the UI, rather than something internal.
func Fprintf(w io.Writer, format string, a ...any) (n int, err error) {
	return fmt.Fprintf(w, format, a...)
}

// Sprintf is like `fmt.Sprintf`, but is useful for marking when a
// sprint call is part of the UI, rather than something internal.
func Sprintf(format string, a ...any) string {
	return fmt.Sprintf(format, a...)
}

////////////////////////////////////////////////////////////////////////////////

// Integer is the set of built-in integer types Portion can be
// parameterized over.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Portion renders a fraction N/D as both a percentage and
// parenthetically as the exact fractional value.
//
// For example:
//
//	fmt.Sprint(Portion[int]{N: 1, D: 12345}) ⇒ "0% (1/12345)"
type Portion[T Integer] struct {
	N, D T
}

var _ fmt.Stringer = Portion[int]{}

// String implements fmt.Stringer.
func (p Portion[T]) String() string {
	pct := uint64(100)
	if p.D > 0 {
		pct = (uint64(p.N) * 100) / uint64(p.D)
	}
	return fmt.Sprintf("%d%% (%d/%d)", pct, uint64(p.N), uint64(p.D))
}
