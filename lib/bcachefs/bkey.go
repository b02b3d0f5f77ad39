// Copyright (C) 2022-2023  Luke Shumaker <lukeshu@lukeshu.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package bcachefs

import "encoding/binary"

// BKeyU64s is the fixed key_u64s for an unpacked (KEY_FORMAT_CURRENT)
// bkey, and for the well-known "short" local format (spec.md §3,
// §4.H): 5 u64 units, 40 bytes.
const BKeyU64s = 5

// bkeyHeaderSize is the 8-byte fixed front shared by every bkey,
// current or local: u64s, format, needs_whiteout, type, pad[3].
const bkeyHeaderSize = 8

const (
	bkeyOffU64s          = 0
	bkeyOffFormat        = 2
	bkeyOffNeedsWhiteout = 3
	bkeyOffType          = 4
)

// Unpacked field offsets within the 32-byte fixed region that follows
// the 8-byte header for a CURRENT bkey, and for a LOCAL bkey in the
// well-known short format (spec.md §4.H step 2): the two formats are
// struct-compatible, this layout is exactly what the general backward
// bitfield walk (step 3) produces when applied to that format, chosen
// so the "short format" fast path is a verbatim struct cast.
const (
	curOffVersionLo = bkeyHeaderSize + 0
	curOffVersionHi = bkeyHeaderSize + 4
	curOffSize      = bkeyHeaderSize + 8
	curOffSnapshot  = bkeyHeaderSize + 12
	curOffOffset    = bkeyHeaderSize + 16
	curOffInode     = bkeyHeaderSize + 24
)

// packedFieldIndex enumerates the six fields a local bkey's format
// descriptor packs, in the processing order spec.md §4.H step 3 walks
// them (inode, offset, snapshot, size, version_hi, version_lo).
type packedFieldIndex int

const (
	fieldInode packedFieldIndex = iota
	fieldOffset
	fieldSnapshot
	fieldSize
	fieldVersionHi
	fieldVersionLo

	numPackedFields
)

// BkeyFormat is a btree node's field-packing descriptor (spec.md §3,
// §4.H): the width, in bits, of each of the six packed fields, and a
// per-field offset bias. Only all-zero FieldOffset is supported.
type BkeyFormat struct {
	KeyU64s      uint8
	BitsPerField [numPackedFields]uint8
	FieldOffset  [numPackedFields]uint64
}

// shortBkeyFormat is the well-known compact local format referenced
// by original_source's BTreeValue aliasing: bit widths identical to
// the unpacked layout's field widths, all offsets zero.
var shortBkeyFormat = BkeyFormat{
	KeyU64s:      BKeyU64s,
	BitsPerField: [numPackedFields]uint8{64, 64, 32, 32, 32, 32},
	FieldOffset:  [numPackedFields]uint64{},
}

func (f BkeyFormat) isShort() bool {
	return f.KeyU64s == BKeyU64s &&
		f.BitsPerField == shortBkeyFormat.BitsPerField &&
		f.FieldOffset == shortBkeyFormat.FieldOffset
}

func (f BkeyFormat) allFieldOffsetsZero() bool {
	for _, off := range f.FieldOffset {
		if off != 0 {
			return false
		}
	}
	return true
}

// Bkey is the canonical, unpacked form of a bkey, produced by
// unpackBkey regardless of the record's on-disk physical layout
// (spec.md §4.H).
type Bkey struct {
	U64s          uint16
	Format        BkeyFormatTag
	NeedsWhiteout bool
	Type          BkeyType
	Inode         uint64
	Offset        uint64
	Snapshot      uint32
	Size          uint32
	VersionHi     uint32
	VersionLo     uint32

	// KeyU64s is the length, in u64 units, of the key region
	// (header + fixed/packed fields); the value blob starts at
	// byte offset KeyU64s*8 within the record.
	KeyU64s int
}

// peekBkeyFormatTag and peekBkeyType read the two fields every bkey
// carries at a fixed offset regardless of physical layout, without
// requiring the enclosing node's format descriptor.
func peekBkeyFormatTag(rec []byte) BkeyFormatTag { return BkeyFormatTag(rec[bkeyOffFormat]) }
func peekBkeyType(rec []byte) BkeyType           { return BkeyType(rec[bkeyOffType]) }
func peekBkeyU64s(rec []byte) uint16             { return binary.LittleEndian.Uint16(rec[bkeyOffU64s:]) }
