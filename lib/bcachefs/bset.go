// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// bsetHeaderSize is the byte length of a bset's own header: a single
// 8-byte u64s field (spec.md §3, §4.F: "L = 8 + u64s*8").
const bsetHeaderSize = 8

// bsetCsumTrailerSize is the fixed-size checksum trailer skipped after
// each block-aligned bset (spec.md §4.F). The core never validates
// checksums (spec.md §1 non-goals), so only its length matters here.
const bsetCsumTrailerSize = 16

// bsetIterator walks the bsets within one node buffer, skipping
// block-aligned checksum trailers (spec.md §4.F). All cursor
// arithmetic is in integer byte offsets relative to the node base, per
// the canonical resolution of the "pointer-arithmetic quirks" in
// spec.md §9.
type bsetIterator struct {
	node      *Node
	blockSize int
	pos       int
}

func newBsetIterator(node *Node, blockSizeBytes int) *bsetIterator {
	return &bsetIterator{node: node, blockSize: blockSizeBytes, pos: NodeHeaderSize}
}

// Next returns the byte span of the next non-empty bset's bkey stream
// (its header stripped) and that span's absolute byte offset within
// the node buffer, or io.EOF once the cursor reaches or exceeds the
// node's end. Bsets with u64s == 0 are padding and are skipped
// silently, per spec.md §4.F.
func (it *bsetIterator) Next() (payload []byte, offset int, err error) {
	for {
		// Terminate before fetching the header once the cursor has
		// reached the node's end: the canonical resolution of the
		// "this does not get executed, why" ambiguity in spec.md §9.
		if it.pos >= len(it.node.buf) {
			return nil, 0, io.EOF
		}
		if it.pos+bsetHeaderSize > len(it.node.buf) {
			return nil, 0, fmt.Errorf("%w: bset header at %d", errShortField, it.pos)
		}

		recordStart := it.pos
		u64s := binary.LittleEndian.Uint64(it.node.buf[recordStart:])
		payloadLen := int(u64s) * 8
		length := bsetHeaderSize + payloadLen
		if length < 0 || recordStart+length > len(it.node.buf) {
			return nil, 0, fmt.Errorf("%w: bset at %d", errStrideOOB, recordStart)
		}

		afterRecord := recordStart + length
		nextBoundary := afterRecord
		if rem := afterRecord % it.blockSize; rem != 0 {
			nextBoundary = afterRecord + (it.blockSize - rem)
		}
		it.pos = nextBoundary + bsetCsumTrailerSize

		if u64s == 0 {
			continue
		}
		payloadOff := recordStart + bsetHeaderSize
		return it.node.buf[payloadOff : payloadOff+payloadLen], payloadOff, nil
	}
}
