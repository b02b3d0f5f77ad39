// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import (
	"encoding/binary"
	"fmt"

	"github.com/benzina/bcachefs-ro/lib/bcachefsio"
)

// bkeyFormatOnDisk is the on-disk shape of a node's BkeyFormat
// descriptor: a one-byte key_u64s, a one-byte field count (not
// decoded), six one-byte field widths, then six eight-byte field
// offsets.
const (
	formatOffKeyU64s      = 0
	formatOffBitsPerField = 2
	formatOffFieldOffset  = formatOffBitsPerField + int(numPackedFields)
	bkeyFormatOnDiskSize  = formatOffFieldOffset + int(numPackedFields)*8 // 56 bytes
)

func decodeBkeyFormat(buf []byte) BkeyFormat {
	var f BkeyFormat
	f.KeyU64s = buf[formatOffKeyU64s]
	copy(f.BitsPerField[:], buf[formatOffBitsPerField:formatOffBitsPerField+numPackedFields])
	for i := 0; i < int(numPackedFields); i++ {
		off := formatOffFieldOffset + i*8
		f.FieldOffset[i] = binary.LittleEndian.Uint64(buf[off : off+8])
	}
	return f
}

// Node header layout: a 16-byte checksum (never validated, per spec.md
// §1's non-goals), an 8-byte flags word, then the format descriptor.
// The first bset begins immediately after the header, at a fixed
// offset — matching original_source's `BSetIterator` construction from
// `&node->keys`, a struct member laid out right after the header
// fields.
const (
	nodeHdrOffCsum   = 0
	nodeHdrCsumSize  = 16
	nodeHdrOffFlags  = nodeHdrOffCsum + nodeHdrCsumSize
	nodeHdrOffFormat = nodeHdrOffFlags + 8
	NodeHeaderSize   = nodeHdrOffFormat + bkeyFormatOnDiskSize
)

// Node is one loaded btree node blob: the header (format descriptor)
// plus the raw bytes of the whole node (spec.md §3, §4.E).
type Node struct {
	Flags  uint64
	Format BkeyFormat
	buf    []byte
}

func decodeNodeHeader(buf []byte) (flags uint64, format BkeyFormat) {
	flags = binary.LittleEndian.Uint64(buf[nodeHdrOffFlags:])
	format = decodeBkeyFormat(buf[nodeHdrOffFormat : nodeHdrOffFormat+bkeyFormatOnDiskSize])
	return flags, format
}

// loadNode implements the Node loader (spec.md §4.E): seek to
// ptr.Offset*512 and read nodeSize bytes into buf, or into a freshly
// allocated buffer when len(buf) is not nodeSize.
func loadNode(blob bcachefsio.Blob, ptr SectorOffset, nodeSize int, buf []byte) (*Node, error) {
	if len(buf) != nodeSize {
		buf = make([]byte, nodeSize)
	}
	if err := blob.ReadAt(int64(ptr.Bytes()), buf); err != nil {
		return nil, newIterError(IterErrorNodeReadFailed, err)
	}
	if len(buf) < NodeHeaderSize {
		return nil, newIterError(IterErrorNodeReadFailed, fmt.Errorf("node smaller than header (%d bytes)", len(buf)))
	}
	flags, format := decodeNodeHeader(buf)
	return &Node{Flags: flags, Format: format, buf: buf}, nil
}
